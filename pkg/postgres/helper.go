package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState()
	}
	return ""
}

// IsForeignKeyViolation reports SQLSTATE 23503 anywhere in the error chain.
func IsForeignKeyViolation(err error) bool {
	return err != nil && sqlState(err) == codeForeignKeyViolation
}

// IsUniqueViolation reports SQLSTATE 23505 anywhere in the error chain.
func IsUniqueViolation(err error) bool {
	return err != nil && sqlState(err) == codeUniqueViolation
}
