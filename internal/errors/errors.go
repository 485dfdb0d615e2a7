// README: Error taxonomy shared by the quote engine, the config sources and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Match with errors.Is.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrConfiguration = errors.New("configuration error")
	ErrUpstream      = errors.New("upstream error")

	// ErrStructural is a malformed condition tree. It is also a configuration error.
	ErrStructural = fmt.Errorf("structural %w", ErrConfiguration)
)

// Error carries a kind, the request field it concerns (if any) and an optional cause.
type Error struct {
	Kind  error
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// InvalidInput reports a client error on the named request field.
func InvalidInput(field, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidInput, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func Configuration(format string, args ...any) *Error {
	return &Error{Kind: ErrConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// WrapConfiguration marks cause as a configuration problem, keeping it in the chain.
func WrapConfiguration(cause error, format string, args ...any) *Error {
	return &Error{Kind: ErrConfiguration, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func Structural(format string, args ...any) *Error {
	return &Error{Kind: ErrStructural, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a collaborator failure, preserving its detail.
func Upstream(cause error, format string, args ...any) *Error {
	return &Error{Kind: ErrUpstream, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// FieldOf returns the request field named by the first *Error in err's chain.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// MessageOf returns the message of the first *Error in err's chain, without kind or cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
