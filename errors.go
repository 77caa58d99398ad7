package htmlform

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrShapeMismatch     = errors.New("element shape mismatch")
	ErrUnknownField      = errors.New("unknown field")
	ErrImmutableField    = errors.New("immutable field")
	ErrUnknownSubmission = errors.New("unknown submission")
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// ShapeMismatchError is returned when a parser is handed an element of the
// wrong tag.
type ShapeMismatchError struct {
	Want string
	Got  string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("expected <%s> element, got <%s>", e.Want, e.Got)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// UnknownFieldError lists every override name missing from the form.
type UnknownFieldError struct {
	Names []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field names: %s", strings.Join(e.Names, ", "))
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

type ImmutableFieldError struct {
	Name string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("can't change value of submit field '%s'", e.Name)
}

func (e *ImmutableFieldError) Unwrap() error { return ErrImmutableField }

// UnknownSubmissionError carries the submit names that would have been accepted.
type UnknownSubmissionError struct {
	Name  string
	Valid []string
}

func (e *UnknownSubmissionError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("unknown submission name '%s': form has no submit fields", e.Name)
	}
	return fmt.Sprintf("unknown submission name '%s', possible values: %s", e.Name, strings.Join(e.Valid, ", "))
}

func (e *UnknownSubmissionError) Unwrap() error { return ErrUnknownSubmission }

type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method: %s", e.Method)
}

func (e *UnsupportedMethodError) Unwrap() error { return ErrUnsupportedMethod }

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}
