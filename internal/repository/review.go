package repository

import (
	"context"
	"time"

	"github.com/onedream/storefront/internal/repository/postgres"
)

const (
	insertPromptQuery = `
						INSERT INTO review_prompts (order_code, user_id, shown_at)
						VALUES ($1, $2, $3)
						ON CONFLICT (order_code) DO NOTHING
`
	selectPromptsByUserQuery = `
						SELECT order_code FROM review_prompts
						WHERE user_id = $1
`
)

// ReviewPromptRepository persists which orders have already triggered a
// review prompt, so prompts survive restarts and sessions
type ReviewPromptRepository struct {
	db *postgres.DB
}

// NewReviewPromptRepository creates new ReviewPromptRepository instance
func NewReviewPromptRepository(db *postgres.DB) *ReviewPromptRepository {
	return &ReviewPromptRepository{db: db}
}

// MarkPromptShown records that the prompt for an order was presented.
// Recording twice is harmless.
func (rr *ReviewPromptRepository) MarkPromptShown(ctx context.Context, orderCode, userID string, shownAt time.Time) error {
	if _, err := rr.db.Exec(ctx, insertPromptQuery, orderCode, userID, shownAt); err != nil {
		return storeErr(err)
	}
	return nil
}

// PromptedOrderCodes returns the codes of every order for which the user
// has already been shown a prompt
func (rr *ReviewPromptRepository) PromptedOrderCodes(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := rr.db.Query(ctx, selectPromptsByUserQuery, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	codes := map[string]struct{}{}

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			continue
		}
		codes[code] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	return codes, nil
}
