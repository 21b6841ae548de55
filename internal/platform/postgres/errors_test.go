package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlift/adlift-api/internal/store"
)

// fakeResult implements sql.Result for CheckRowsAffected tests.
type fakeResult struct {
	rows    int64
	rowsErr error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.rowsErr }

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		ConstraintName: "some_constraint",
		ColumnName:     "some_column",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "no rows maps to not found",
			err:      sql.ErrNoRows,
			sentinel: store.ErrNotFound,
		},
		{
			name:     "wrapped no rows maps to not found",
			err:      fmt.Errorf("query failed: %w", sql.ErrNoRows),
			sentinel: store.ErrNotFound,
		},
		{
			name:     "unique violation maps to duplicate",
			err:      pgError(uniqueViolationCode),
			sentinel: store.ErrDuplicate,
		},
		{
			name:     "foreign key violation maps to invalid entity",
			err:      pgError(foreignKeyViolationCode),
			sentinel: store.ErrInvalidEntity,
		},
		{
			name:     "check violation maps to invalid entity",
			err:      pgError(checkViolationCode),
			sentinel: store.ErrInvalidEntity,
		},
		{
			name:     "not null violation maps to invalid entity",
			err:      pgError(notNullViolationCode),
			sentinel: store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.sentinel)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, MapError(nil))
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		t.Parallel()

		original := errors.New("connection refused")
		assert.Equal(t, original, MapError(original))
	})
}

func TestViolationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode)))
	assert.False(t, IsUniqueViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, IsUniqueViolation(errors.New("plain error")))

	assert.True(t, IsForeignKeyViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, IsForeignKeyViolation(pgError(uniqueViolationCode)))

	// Wrapped pg errors are still recognized.
	wrapped := fmt.Errorf("insert failed: %w", pgError(uniqueViolationCode))
	assert.True(t, IsUniqueViolation(wrapped))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	t.Run("rows affected passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, "user"))
	})

	t.Run("zero rows returns not found with entity name", func(t *testing.T) {
		t.Parallel()

		err := CheckRowsAffected(fakeResult{rows: 0}, "campaign")
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Contains(t, err.Error(), "campaign")
	})

	t.Run("zero rows without entity name returns bare sentinel", func(t *testing.T) {
		t.Parallel()

		err := CheckRowsAffected(fakeResult{rows: 0}, "")
		assert.Equal(t, store.ErrNotFound, err)
	})

	t.Run("rows affected error is wrapped", func(t *testing.T) {
		t.Parallel()

		driverErr := errors.New("driver does not support RowsAffected")
		err := CheckRowsAffected(fakeResult{rowsErr: driverErr}, "user")
		require.Error(t, err)
		assert.ErrorIs(t, err, driverErr)
	})

	t.Run("nil result is an error", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, CheckRowsAffected(nil, "user"))
	})
}
