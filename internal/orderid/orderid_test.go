package orderid

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	codeFormat := regexp.MustCompile(`^1DS[A-Z]{2}[0-9A-Z]{2}$`)

	for i := 0; i < 100; i++ {
		code := Generate("Mobile Games")
		require.True(t, codeFormat.MatchString(code), "unexpected code %q", code)
	}
}

func TestGenerate_TypeCodes(t *testing.T) {
	tests := []struct {
		name        string
		productType string
		wantPrefix  string
	}{
		{
			name:        "mapped_type_mobile_games",
			productType: "Mobile Games",
			wantPrefix:  "1DSMG",
		},
		{
			name:        "mapped_type_gift_cards",
			productType: "Gift Cards",
			wantPrefix:  "1DSGC",
		},
		{
			name:        "unmapped_type_uses_default",
			productType: "Cloud Gaming",
			wantPrefix:  "1DS" + DefaultTypeCode,
		},
		{
			name:        "empty_type_uses_default",
			productType: "",
			wantPrefix:  "1DS" + DefaultTypeCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Generate(tt.productType)
			assert.True(t, strings.HasPrefix(code, tt.wantPrefix), "code %q, want prefix %q", code, tt.wantPrefix)
			assert.Len(t, code, 7)
		})
	}
}

func TestTypeCode(t *testing.T) {
	assert.Equal(t, "MG", TypeCode("Mobile Games"))
	assert.Equal(t, DefaultTypeCode, TypeCode("something else"))
}
