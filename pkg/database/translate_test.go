package database

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

func TestTranslateError(t *testing.T) {
	constraints := Constraints{
		"todo_items_owner_title_key": errs.ReasonTitleExists,
		"user_roles_role_id_fkey":    errs.ReasonRoleInUse,
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, TranslateError(nil, constraints))
	})

	t.Run("unique violation", func(t *testing.T) {
		err := TranslateError(&pgconn.PgError{Code: UniqueViolation, ConstraintName: "todo_items_owner_title_key"}, constraints)
		assert.True(t, errs.IsCode(err, errs.ErrCodeConflict))
		assert.True(t, errs.IsReason(err, errs.ReasonTitleExists))
	})

	t.Run("foreign key violation", func(t *testing.T) {
		err := TranslateError(fmt.Errorf("delete: %w", &pgconn.PgError{Code: ForeignKeyViolation, ConstraintName: "user_roles_role_id_fkey"}), constraints)
		assert.True(t, errs.IsCode(err, errs.ErrCodeReferentialViolation))
		assert.True(t, errs.IsReason(err, errs.ReasonRoleInUse))
	})

	t.Run("no rows", func(t *testing.T) {
		assert.True(t, errs.IsCode(TranslateError(pgx.ErrNoRows, nil), errs.ErrCodeNotFound))
	})

	t.Run("already structured", func(t *testing.T) {
		in := errs.NotFound(errs.ReasonItemNotFound, "missing")
		assert.Same(t, in, TranslateError(in, nil))
	})

	t.Run("anything else", func(t *testing.T) {
		err := TranslateError(fmt.Errorf("connection refused"), nil)
		assert.True(t, errs.IsCode(err, errs.ErrCodeStoreUnavailable))
	})
}
