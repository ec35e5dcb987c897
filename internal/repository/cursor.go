package repository

import (
	"context"

	"github.com/onedream/storefront/internal/models"
	"github.com/onedream/storefront/internal/repository/postgres"
)

const (
	selectCursorQuery = `
						SELECT last_created_at, last_order_code FROM watcher_cursor
						WHERE id = 1
`
	upsertCursorQuery = `
						INSERT INTO watcher_cursor (id, last_created_at, last_order_code)
						VALUES (1, $1, $2)
						ON CONFLICT (id) DO UPDATE
						SET last_created_at = EXCLUDED.last_created_at,
							last_order_code = EXCLUDED.last_order_code
`
)

// CursorRepository persists the notification watcher's high-water mark so a
// restarted watcher does not re-announce orders it already saw
type CursorRepository struct {
	db *postgres.DB
}

// NewCursorRepository creates new CursorRepository instance
func NewCursorRepository(db *postgres.DB) *CursorRepository {
	return &CursorRepository{db: db}
}

// LoadCursor returns the stored cursor, or nil when none has been saved yet
func (cr *CursorRepository) LoadCursor(ctx context.Context) (*models.WatcherCursor, error) {
	cursor := models.WatcherCursor{}
	err := cr.db.QueryRow(ctx, selectCursorQuery).Scan(&cursor.LastCreatedAt, &cursor.LastOrderID)
	if err != nil {
		if cr.db.IsNoRows(err) {
			return nil, nil
		}
		return nil, storeErr(err)
	}

	return &cursor, nil
}

// SaveCursor stores the cursor, replacing any previous value
func (cr *CursorRepository) SaveCursor(ctx context.Context, cursor models.WatcherCursor) error {
	if _, err := cr.db.Exec(ctx, upsertCursorQuery, cursor.LastCreatedAt, cursor.LastOrderID); err != nil {
		return storeErr(err)
	}
	return nil
}
