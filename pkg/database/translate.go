package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

// PostgreSQL SQLSTATE codes the repositories care about.
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
)

// Constraints maps a constraint or index name to the reason reported when it is violated.
type Constraints map[string]errs.Reason

// TranslateError maps a pgx error to a structured error. Unique and foreign
// key violations become CONFLICT and REFERENTIAL_VIOLATION, carrying the reason
// registered for the violated constraint. ErrNoRows becomes NOT_FOUND.
// Anything else is reported as STORE_UNAVAILABLE.
func TranslateError(err error, constraints Constraints) error {
	if err == nil {
		return nil
	}

	var structured *errs.Error
	if errors.As(err, &structured) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(err, errs.ErrCodeNotFound, "record not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		reason := constraints[pgErr.ConstraintName]
		switch pgErr.Code {
		case UniqueViolation:
			e := errs.Conflict(reason, conflictMessage(reason))
			e.Err = err
			return e.WithDetail("constraint", pgErr.ConstraintName)
		case ForeignKeyViolation:
			e := errs.ReferentialViolation(reason, "referenced record does not exist or is still referenced")
			e.Err = err
			return e.WithDetail("constraint", pgErr.ConstraintName)
		case CheckViolation:
			return errs.ValidationFailed(map[string]interface{}{"constraint": pgErr.ConstraintName})
		}
	}

	return errs.StoreUnavailable(err)
}

func conflictMessage(reason errs.Reason) string {
	if reason == "" {
		return "record already exists"
	}
	return strings.ToLower(string(reason[0])) + string(reason[1:])
}
