package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrMissingRequiredField is returned before any database round trip when a required
	// attribute is absent.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidField covers present but unacceptable values (negative stock, bad currency code).
	ErrInvalidField = errors.New("invalid field")

	// ErrConstraintViolation is returned when the database rejects a row because of a unique
	// or foreign key constraint.
	ErrConstraintViolation = errors.New("constraint violation")

	ErrNotFound = errors.New("not found")
)

// FieldError names the offending attribute of one entity.
type FieldError struct {
	Entity string
	Field  string
	Rule   string
}

func (e *FieldError) Error() string {
	if e.Rule == "required" {
		return fmt.Sprintf("%s: %s is required", e.Entity, e.Field)
	}
	return fmt.Sprintf("%s: %s failed %q", e.Entity, e.Field, e.Rule)
}

func (e *FieldError) Is(target error) bool {
	if e.Rule == "required" {
		return target == ErrMissingRequiredField
	}
	return target == ErrInvalidField
}

// Constraint kinds reported by ConstraintError.
const (
	ConstraintUnique     = "unique"
	ConstraintForeignKey = "foreign_key"
)

// ConstraintError describes a rejected write. Constraint is the index or key name when the
// driver reports it; Detail is the raw driver message.
type ConstraintError struct {
	Entity     string
	Kind       string
	Constraint string
	Detail     string
	Err        error
}

func (e *ConstraintError) Error() string {
	name := e.Constraint
	if name == "" {
		name = e.Kind
	}
	return fmt.Sprintf("%s: %s constraint %s violated: %s", e.Entity, e.Kind, name, e.Detail)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraintViolation }

func (e *ConstraintError) Unwrap() error { return e.Err }

// TranslateError converts driver specific constraint failures into *ConstraintError and
// gorm.ErrRecordNotFound into ErrNotFound. Other errors are returned unchanged.
func TranslateError(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return &ConstraintError{Entity: entity, Kind: ConstraintUnique, Constraint: mysqlKeyName(mysqlErr.Message), Detail: mysqlErr.Message, Err: err}
		case 1216, 1217, 1451, 1452:
			return &ConstraintError{Entity: entity, Kind: ConstraintForeignKey, Constraint: mysqlFKName(mysqlErr.Message), Detail: mysqlErr.Message, Err: err}
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &ConstraintError{Entity: entity, Kind: ConstraintUnique, Constraint: pgErr.ConstraintName, Detail: pgErr.Message, Err: err}
		case "23503":
			return &ConstraintError{Entity: entity, Kind: ConstraintForeignKey, Constraint: pgErr.ConstraintName, Detail: pgErr.Message, Err: err}
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &ConstraintError{Entity: entity, Kind: ConstraintUnique, Detail: liteErr.Error(), Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &ConstraintError{Entity: entity, Kind: ConstraintForeignKey, Detail: liteErr.Error(), Err: err}
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConstraintError{Entity: entity, Kind: ConstraintUnique, Detail: err.Error(), Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ConstraintError{Entity: entity, Kind: ConstraintForeignKey, Detail: err.Error(), Err: err}
	}
	return err
}

// validationError turns validator output into a *FieldError for the first failing field.
func validationError(entity string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Entity: entity, Field: verrs[0].Field(), Rule: verrs[0].Tag()}
	}
	return err
}

// "Duplicate entry 'a@b.com-101' for key 'customer.uq_customer_email_shop'"
func mysqlKeyName(msg string) string {
	i := strings.LastIndex(msg, "for key '")
	if i < 0 {
		return ""
	}
	name := strings.TrimSuffix(msg[i+len("for key '"):], "'")
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		name = name[dot+1:]
	}
	return name
}

// "... CONSTRAINT `fk_order_customer` FOREIGN KEY ..."
func mysqlFKName(msg string) string {
	i := strings.Index(msg, "CONSTRAINT `")
	if i < 0 {
		return ""
	}
	rest := msg[i+len("CONSTRAINT `"):]
	if j := strings.Index(rest, "`"); j >= 0 {
		return rest[:j]
	}
	return ""
}
