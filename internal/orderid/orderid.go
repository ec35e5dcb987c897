// Package orderid generates the short human-readable order codes operators
// read back to customers over chat. A code is seven characters: the fixed
// tenant prefix, a two-letter product-type code and two random characters
// from [0-9A-Z].
package orderid

import "math/rand"

// TenantPrefix is the fixed storefront prefix on every order code.
const TenantPrefix = "1DS"

// DefaultTypeCode is used for product types missing from the lookup table.
const DefaultTypeCode = "GN"

const randAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// typeCodes maps a product type to its two-letter code.
var typeCodes = map[string]string{
	"Mobile Games":   "MG",
	"PC Games":       "PC",
	"Game Vouchers":  "GV",
	"Gift Cards":     "GC",
	"Streaming Apps": "SA",
	"Premium Apps":   "PA",
	"Top Up":         "TU",
}

// TypeCode returns the two-letter code for a product type, or
// DefaultTypeCode when the type is not in the table.
func TypeCode(productType string) string {
	if code, ok := typeCodes[productType]; ok {
		return code
	}
	return DefaultTypeCode
}

// Generate produces an order code for the given product type. The random
// tail gives 36^2 combinations per tenant+type pair; uniqueness is verified
// against the store by the caller, not here.
func Generate(productType string) string {
	buf := make([]byte, 0, len(TenantPrefix)+4)
	buf = append(buf, TenantPrefix...)
	buf = append(buf, TypeCode(productType)...)
	buf = append(buf, randAlphabet[rand.Intn(len(randAlphabet))])
	buf = append(buf, randAlphabet[rand.Intn(len(randAlphabet))])
	return string(buf)
}
