package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/facturador/internal/database"
)

func TestErrorClassification(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantConfl  bool
		wantUnique bool
		wantCheck  bool
	}

	tests := []testCase{
		{
			name:      "SerializationFailure",
			err:       &pgconn.PgError{Code: "40001"},
			wantConfl: true,
		},
		{
			name:      "DeadlockWrapped",
			err:       fmt.Errorf("incrementing counter: %w", &pgconn.PgError{Code: "40P01"}),
			wantConfl: true,
		},
		{
			name:       "UniqueViolation",
			err:        &pgconn.PgError{Code: "23505"},
			wantUnique: true,
		},
		{
			name:      "CheckViolation",
			err:       &pgconn.PgError{Code: "23514"},
			wantCheck: true,
		},
		{
			name: "PlainError",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantConfl, database.IsConflict(tt.err))
			assert.Equal(t, tt.wantUnique, database.IsUniqueViolation(tt.err))
			assert.Equal(t, tt.wantCheck, database.IsCheckViolation(tt.err))
		})
	}
}
