package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnauthenticated means the operation was called without a principal
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the principal is known but the role or ownership rule denies it
	ErrForbidden = errors.New("access denied")
	// ErrNotFound means the referenced complaint does not exist
	ErrNotFound = errors.New("complaint not found")
	// ErrInvalidState means the complaint's current status does not allow the operation
	ErrInvalidState = errors.New("complaint is no longer pending")
	// ErrConflict means a unique value (the account e-mail) is already taken
	ErrConflict = errors.New("already exists")
	// ErrInternal marks persistence or infrastructure failures
	ErrInternal = errors.New("internal error")
)

// ValidationError lists the input fields that were missing or invalid
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// orNil returns nil when nothing was recorded so callers can return it directly
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// fromValidator converts go-playground validation failures into a ValidationError
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.add(fe.Field(), describeTag(fe))
	}
	return out.orNil()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "category":
		return "must be one of: " + joinValues(models.Categories)
	case "status":
		return "must be one of: " + joinValues(models.Statuses)
	default:
		return "is invalid"
	}
}

func joinValues[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}

// internal wraps a store failure so the transport can tell it apart from domain errors
func internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}
