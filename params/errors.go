package params

import (
	"errors"
	"fmt"
)

// ErrUnknownKind reports a parameter_type discriminator outside the
// closed variant set. Registries treat it as a skip signal rather than
// a failure.
var ErrUnknownKind = errors.New("params: unknown parameter kind")

// MissingFieldError reports a required configuration field that is
// absent and has no default to fall back to.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("params: missing required field %q", e.Field)
}

// WrongFieldTypeError reports a value that is present but of an
// incompatible kind, with no default to fall back to.
type WrongFieldTypeError struct {
	Field    string
	Expected string
	Got      string
}

func (e *WrongFieldTypeError) Error() string {
	return fmt.Sprintf("params: field %q must be of type %s, got %s",
		e.Field, e.Expected, e.Got)
}
