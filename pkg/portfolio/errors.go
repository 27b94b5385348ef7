package portfolio

import (
	"errors"
	"fmt"
	"strings"
)

// Error types
var (
	// ErrNotFound indicates the referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique constraint would be violated
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates malformed input
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID indicates an identifier that can never exist
	ErrInvalidID = errors.New("invalid id")

	// ErrAssetsDisabled indicates no asset store is configured
	ErrAssetsDisabled = errors.New("asset storage not configured")
)

// NotFoundError reports a missing record by entity and id.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError reports a unique constraint collision.
type ConflictError struct {
	Entity string
	Field  string
	Value  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// ValidationError reports one malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidationErrors collects every field failure of a request.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Fields returns field -> message, suitable for error details.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.Field] = e.Message
	}
	return out
}

// StoreError wraps a storage failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrapStore leaves typed domain errors alone and wraps everything else.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	var ce *ConflictError
	var se *StoreError
	if errors.As(err, &nf) || errors.As(err, &ce) || errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
