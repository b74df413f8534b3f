package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"qna/pkg/errs"
)

// PostgreSQL condition codes the repository cares about.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// uniqueConstraints maps store-reported constraint names to stable conflict
// reasons. Keyed by name, not by message text.
var uniqueConstraints = map[string]string{
	"accounts_email_key": "email already registered",
}

// translate maps a store-native error into the closed taxonomy. Errors it
// does not recognize pass through unchanged for the caller to wrap.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeForeignKeyViolation:
		return &errs.ForeignKeyError{Constraint: pgErr.ConstraintName}
	case codeUniqueViolation:
		if reason, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return &errs.ConflictError{Reason: reason}
		}
		return &errs.ConflictError{Reason: "duplicate value for " + pgErr.ConstraintName}
	}

	return err
}
