package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/facturador/internal/database"
	"github.com/MrJamesThe3rd/facturador/internal/numbering"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) LastValue(ctx context.Context, tenantID, pos string) (int64, error) {
	query := `SELECT last_value FROM invoice_counters WHERE tenant_id = $1 AND pos = $2`

	var last int64

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query, tenantID, pos).Scan(&last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("getting counter: %w", err)
	}

	return last, nil
}

// Increment creates the counter at 1 or bumps it in a single statement. The
// upsert holds the row lock until the surrounding transaction ends, so
// concurrent callers for the same pos are serialized.
func (s *Store) Increment(ctx context.Context, tenantID, pos string) (int64, error) {
	query := `
		INSERT INTO invoice_counters (tenant_id, pos, last_value, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (tenant_id, pos)
		DO UPDATE SET last_value = invoice_counters.last_value + 1, updated_at = NOW()
		RETURNING last_value
	`

	var next int64

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query, tenantID, pos).Scan(&next)
	if err != nil {
		if database.IsConflict(err) {
			return 0, fmt.Errorf("incrementing counter: %w: %w", numbering.ErrConflict, err)
		}

		return 0, fmt.Errorf("incrementing counter: %w", err)
	}

	return next, nil
}
