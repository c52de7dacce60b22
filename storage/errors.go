package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// Kind is a member of the provider error taxonomy.
type Kind int

const (
	KindUnhandled Kind = iota
	KindNotFound
	KindUniqueViolation
	KindModelViolation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUniqueViolation:
		return "unique_violation"
	case KindModelViolation:
		return "model_violation"
	default:
		return "unhandled"
	}
}

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound        = errors.New("not found")
	ErrUniqueViolation = errors.New("unique violation")
	ErrModelViolation  = errors.New("model violation")
	ErrUnhandled       = errors.New("unhandled")
)

// Error is the only error shape that leaves a storage driver.
type Error struct {
	Kind    Kind
	Details string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return "entity does not exist"
	case KindUniqueViolation:
		return "operation violates uniqueness constraint: " + e.Details
	case KindModelViolation:
		return "operation violates model: " + e.Details
	default:
		if e.Err == nil {
			return "unhandled error"
		}

		return fmt.Sprintf("unhandled error: %s", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match on the taxonomy with the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrUniqueViolation:
		return e.Kind == KindUniqueViolation
	case ErrModelViolation:
		return e.Kind == KindModelViolation
	case ErrUnhandled:
		return e.Kind == KindUnhandled
	}

	return false
}

// KindOf reports the taxonomy member of err, or KindUnhandled if err was never classified.
func KindOf(err error) Kind {
	var storageErr *Error
	if errors.As(err, &storageErr) {
		return storageErr.Kind
	}

	return KindUnhandled
}

// CodeTable recognises backend specific failure codes.
// It returns false when the error carries no code it understands.
type CodeTable func(err error) (Kind, string, bool)

// Classify maps any backend failure onto exactly one member of the taxonomy.
func Classify(err error, codes CodeTable) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: KindNotFound, Err: err}
	}

	if codes != nil {
		kind, details, ok := codes(err)
		if ok && kind != KindUnhandled {
			return &Error{Kind: kind, Details: details, Err: err}
		}
	}

	return &Error{Kind: KindUnhandled, Err: err}
}

func NewNotFound() *Error {
	return &Error{Kind: KindNotFound}
}

func NewUniqueViolation(details string) *Error {
	return &Error{Kind: KindUniqueViolation, Details: details}
}

func NewModelViolation(details string) *Error {
	return &Error{Kind: KindModelViolation, Details: details}
}
