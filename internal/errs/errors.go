package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
	// ErrInvalidAmount marks monetary validation failures (non-positive or
	// more than two fractional digits).
	ErrInvalidAmount = errors.New("invalid_amount")
	// ErrImmutable indicates an attempt to change immutable fields
	ErrImmutable = errors.New("immutable")
	// ErrStorageUnavailable indicates a backend I/O failure. It is never
	// collapsed into ErrNotFound; an absent row and a broken backend are
	// distinct conditions.
	ErrStorageUnavailable = errors.New("storage_unavailable")
)

// FieldError names the client-supplied field that failed validation.
// It unwraps to ErrInvalid so callers can match the class with errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

func (e *FieldError) Unwrap() error { return ErrInvalid }

// Field constructs a FieldError.
func Field(field, reason string) error { return &FieldError{Field: field, Reason: reason} }
