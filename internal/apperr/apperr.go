// Package apperr defines the typed, context-carrying errors shared by the
// GitHub adapter and the comment parser.
package apperr

import (
	"errors"
	"fmt"
)

// Kind selects the message template of an Error.
type Kind int

const (
	// KindApp is the generic application failure.
	KindApp Kind = iota
	// KindParsing marks malformed or missing local input (empty comment body,
	// unparseable PR URL, unparseable remote URL).
	KindParsing
	// KindService marks a failed remote call, including "no PR found".
	KindService
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindParsing:
		return "parsing"
	case KindService:
		return "service"
	default:
		return "app"
	}
}

// template returns the two-slot message template for the kind. The first slot
// receives the error type, the second the serialized context.
func (k Kind) template() string {
	switch k {
	case KindParsing:
		return "Cannot parse %s using %s"
	case KindService:
		return "%s using %s"
	default:
		return "Can not parse %s using %s"
	}
}

// Error is the tagged error variant used across the core.
type Error struct {
	Kind    Kind
	Type    string
	Context map[string]any
	Cause   error

	msg string
}

// New builds an Error and renders its message immediately, so later mutation
// of ctx does not change the message.
func New(kind Kind, errorType string, ctx map[string]any, cause error) *Error {
	if ctx == nil {
		ctx = map[string]any{}
	}
	return &Error{
		Kind:    kind,
		Type:    errorType,
		Context: ctx,
		Cause:   cause,
		msg:     FormatMessage(kind, errorType, ctx),
	}
}

// Parsing builds a KindParsing error.
func Parsing(errorType string, ctx map[string]any, cause error) *Error {
	return New(KindParsing, errorType, ctx, cause)
}

// Service builds a KindService error.
func Service(errorType string, ctx map[string]any, cause error) *Error {
	return New(KindService, errorType, ctx, cause)
}

func (e *Error) Error() string {
	return e.msg
}

// Unwrap exposes the original cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// FormatMessage renders the message for kind with errorType and the safe
// serialization of ctx substituted into the kind's template.
func FormatMessage(kind Kind, errorType string, ctx map[string]any) string {
	return fmt.Sprintf(kind.template(), errorType, SerializeContext(ctx))
}

// As reports whether err is, or wraps, an *Error and returns it.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
