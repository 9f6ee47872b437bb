// Package apperr defines the tagged fault kinds used across service
// boundaries and the single normalization point that converts them to the
// external GraphQL error shape.
package apperr

import "errors"

// Kind tags a fault category. Services return *Error values carrying a
// Kind; nothing downstream inspects error strings.
type Kind string

const (
	KindValidation         Kind = "VALIDATION"
	KindDuplicateEmail     Kind = "DUPLICATE_EMAIL"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindForbidden          Kind = "FORBIDDEN"
	KindUnexpected         Kind = "UNEXPECTED"
)

// Error is a tagged fault. Fields is populated for KindValidation only and
// maps a field name to every message recorded against it.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string { return e.Message }

// New returns a tagged fault with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns a KindValidation fault aggregating every violation.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// KindOf returns the Kind of err, or KindUnexpected for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Normalized is the uniform external error shape. Its Extensions method is
// picked up by graphql-go and serialized under errors[].extensions.
type Normalized struct {
	Message string
	Ext     map[string]interface{}
}

func (n *Normalized) Error() string { return n.Message }

// Extensions implements the graphql-go resolver-error extension hook.
func (n *Normalized) Extensions() map[string]interface{} { return n.Ext }

// Normalize is the chokepoint every fault passes through before reaching
// the client. Validation faults keep their per-field detail; everything
// else collapses to a generic message with the kind and details attached.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return &Normalized{
			Message: "Validation failed.",
			Ext:     map[string]interface{}{"validationErrors": e.Fields},
		}
	}
	return &Normalized{
		Message: "Unexpected error occurred.",
		Ext: map[string]interface{}{
			"errorType": string(KindOf(err)),
			"details":   err.Error(),
		},
	}
}
