package database

import (
	"errors"
	"strings"

	"portfolio-backend/internal/domain"

	"gorm.io/gorm"
)

// TranslateError maps storage-level constraint failures to the typed
// domain errors. Errors that are already domain errors pass through. The
// driver error is kept as the violation's Cause, never in its message.
func TranslateError(err error, table string) error {
	if err == nil {
		return nil
	}
	var cv *domain.ConstraintViolation
	if errors.As(err, &cv) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "SQLSTATE 23505"):
		return withCause(domain.NewUnique(table, ""), err)
	case errors.Is(err, gorm.ErrForeignKeyViolated),
		strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "SQLSTATE 23503"):
		return withCause(domain.NewForeignKey(table, ""), err)
	case strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "SQLSTATE 23502"):
		return withCause(domain.NewNotNull(table, ""), err)
	}
	return err
}

func withCause(cv *domain.ConstraintViolation, err error) *domain.ConstraintViolation {
	cv.Cause = err
	return cv
}
