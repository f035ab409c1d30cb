package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoTenantContext      = errors.New("No tenant context")
	ErrNotFound             = errors.New("Not found")
	ErrCrossTenantReference = errors.New("Referenced account or asset does not belong to the holding's user")
	ErrReadOnlyView         = errors.New("base_holdings is a read-only view")
	ErrInvalidCredentials   = errors.New("Invalid username or password")
	ErrInvalidUsername      = errors.New("Invalid username.")
	ErrInvalidPassword      = errors.New("Invalid password.")
	ErrConstraintViolation  = errors.New("Constraint violation")
)

// ConstraintKind names the column-level rule a write broke.
type ConstraintKind string

const (
	UniqueConflict      ConstraintKind = "unique_conflict"
	NotNullViolation    ConstraintKind = "not_null_violation"
	ForeignKeyViolation ConstraintKind = "foreign_key_violation"
	CheckViolation      ConstraintKind = "check_violation"
)

// ConstraintViolation is returned when a create or update breaks a
// uniqueness, NOT NULL, foreign key or value-format rule. Prior state is
// left unchanged.
type ConstraintViolation struct {
	Kind   ConstraintKind
	Table  string
	Column string
	Msg    string
	// Cause is the driver error, if any. It is not part of Error().
	Cause error
}

func (e *ConstraintViolation) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s on %s.%s: %s", e.Kind, e.Table, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s on %s.%s", e.Kind, e.Table, e.Column)
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Cause
}

// Is lets callers match any constraint failure with ErrConstraintViolation.
func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraintViolation
}

func NewNotNull(table, column string) *ConstraintViolation {
	return &ConstraintViolation{Kind: NotNullViolation, Table: table, Column: column, Msg: "value is required"}
}

func NewUnique(table, column string) *ConstraintViolation {
	return &ConstraintViolation{Kind: UniqueConflict, Table: table, Column: column, Msg: "value already exists"}
}

func NewCheck(table, column, msg string) *ConstraintViolation {
	return &ConstraintViolation{Kind: CheckViolation, Table: table, Column: column, Msg: msg}
}

func NewForeignKey(table, column string) *ConstraintViolation {
	return &ConstraintViolation{Kind: ForeignKeyViolation, Table: table, Column: column, Msg: "referenced row does not exist"}
}

// IsConstraint reports whether err is a constraint violation of the given kind.
func IsConstraint(err error, kind ConstraintKind) bool {
	var cv *ConstraintViolation
	return errors.As(err, &cv) && cv.Kind == kind
}
