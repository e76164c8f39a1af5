package db

import (
	stdErrors "errors"
	"strings"

	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgUndefinedColumn     = "42703"
	pgNumericOutOfRange   = "22003"
)

// IsUniqueViolation reports whether the provided error references a unique
// constraint. When constraintName is provided, the helper looks for the
// constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if constraintName != "" && !strings.Contains(err.Error(), constraintName) {
		return false
	}
	return sqlState(err) == pgUniqueViolation
}

// ClassifyError maps a storage failure onto the API error taxonomy. Errors
// that already carry a code are returned unchanged.
func ClassifyError(err error, message string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, message)
	}

	switch sqlState(err) {
	case pgUniqueViolation:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a record with these values already exists")
	case pgForeignKeyViolation:
		return pkgerrors.Wrap(pkgerrors.CodeBadReference, err, "referenced record does not exist")
	case pgNumericOutOfRange:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "value out of range")
	case pgNotNullViolation, pgCheckViolation, pgUndefinedColumn:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "record is missing required values")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}

// sqlState extracts a Postgres SQLSTATE from driver errors and falls back
// to matching sqlite constraint messages.
func sqlState(err error) string {
	if pg := pkgerrors.PostgresOf(err); pg != nil {
		return pg.Code
	}
	if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
		return pgUniqueViolation
	}
	if stdErrors.Is(err, gorm.ErrForeignKeyViolated) {
		return pgForeignKeyViolation
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "duplicate key value"):
		return pgUniqueViolation
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return pgForeignKeyViolation
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return pgNotNullViolation
	case strings.Contains(msg, "CHECK constraint failed"):
		return pgCheckViolation
	case strings.Contains(msg, "no such column"):
		return pgUndefinedColumn
	}
	return ""
}
