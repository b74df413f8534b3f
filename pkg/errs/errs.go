// Package errs defines the closed error taxonomy shared by the repository,
// pool, and API layers. Store-native errors never cross the repository
// boundary; they are mapped into these types first.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolTimeout is returned when no connection becomes available
	// before the acquire deadline expires.
	ErrPoolTimeout = errors.New("pool: acquire timed out")

	// ErrPoolClosed is returned by acquisitions against a closed pool.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrStoreUnavailable indicates the store cannot be reached at all.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports malformed or out-of-range input. It is always
// detected before any store interaction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an absent entity.
type NotFoundError struct {
	Entity string
	ID     int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ForeignKeyError reports a referential-integrity breach on write, keyed by
// the store-reported constraint name.
type ForeignKeyError struct {
	Constraint string
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("foreign key violation on %s", e.Constraint)
}

// ConflictError reports an operation that would violate a dependent-data
// policy, e.g. deleting a question that still has answers.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// MigrationError reports an aborted schema migration run. Version names the
// migration that failed; the run stops at the last committed version.
type MigrationError struct {
	Version string
	Err     error
}

func (e *MigrationError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("migration failed: %v", e.Err)
	}
	return fmt.Sprintf("migration %s failed: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound builds a NotFoundError.
func NotFound(entity string, id int32) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsForeignKey reports whether err is a ForeignKeyError.
func IsForeignKey(err error) bool {
	var fk *ForeignKeyError
	return errors.As(err, &fk)
}
