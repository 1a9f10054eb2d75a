package analysis

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a fatal analysis failure.
type Kind string

const (
	KindMalformedInput   Kind = "MalformedInput"
	KindInsufficientData Kind = "InsufficientData"
	KindConfiguration    Kind = "ConfigurationError"
)

var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrInsufficientData = errors.New("insufficient data")
	ErrConfiguration    = errors.New("configuration error")
)

// Error is the tagged failure returned by Analyze.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the sentinel error matching the kind, so errors.Is works on it.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindMalformedInput:
		return ErrMalformedInput
	case KindInsufficientData:
		return ErrInsufficientData
	case KindConfiguration:
		return ErrConfiguration
	default:
		return nil
	}
}

// NewError returns an *Error of the given kind.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of the first *Error found in the chain of err, or "" if there is none.
func KindOf(err error) Kind {
	var aErr *Error
	if errors.As(err, &aErr) {
		return aErr.Kind
	}

	return ""
}
