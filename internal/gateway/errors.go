package gateway

import (
	"errors"
	"net/http"
)

// Kind classifies a gateway failure. Each kind maps to exactly one HTTP status.
type Kind int

const (
	KindMissingIdentity Kind = iota + 1
	KindInvalidFilename
	KindMissingParameter
	KindInvalidParameter
	KindQuotaExceeded
	KindObjectNotFound
	KindRouteNotFound
	KindBackendError
)

var kindNames = map[Kind]string{
	KindMissingIdentity:  "MissingIdentity",
	KindInvalidFilename:  "InvalidFilename",
	KindMissingParameter: "MissingParameter",
	KindInvalidParameter: "InvalidParameter",
	KindQuotaExceeded:    "QuotaExceeded",
	KindObjectNotFound:   "ObjectNotFound",
	KindRouteNotFound:    "RouteNotFound",
	KindBackendError:     "BackendError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// StatusCode returns the HTTP status for the kind.
// Unknown kinds are treated as backend failures.
func (k Kind) StatusCode() int {
	switch k {
	case KindMissingIdentity:
		return http.StatusUnauthorized
	case KindInvalidFilename, KindMissingParameter, KindInvalidParameter:
		return http.StatusBadRequest
	case KindQuotaExceeded:
		return http.StatusForbidden
	case KindObjectNotFound, KindRouteNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified gateway failure carrying the user-facing message.
type Error struct {
	// Err is the underlying cause (for logging and errors.Is).
	Err error

	// Message is returned to the caller in the "error" field.
	Message string

	Kind Kind
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// Is matches another *Error by kind, so sentinel comparisons work:
//
//	errors.Is(err, gateway.ErrQuotaExceeded)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks. Do not return them directly; the
// constructors below attach messages and causes.
var (
	ErrMissingIdentity = &Error{Kind: KindMissingIdentity, Message: "Unauthorized"}
	ErrInvalidFilename = &Error{Kind: KindInvalidFilename, Message: "Invalid filename"}
	ErrQuotaExceeded   = &Error{Kind: KindQuotaExceeded, Message: "Storage quota exceeded"}
	ErrObjectNotFound  = &Error{Kind: KindObjectNotFound, Message: "File not found"}
	ErrRouteNotFound   = &Error{Kind: KindRouteNotFound, Message: "Route not found"}
)

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func missingIdentity() *Error {
	return newError(KindMissingIdentity, ErrMissingIdentity.Message, nil)
}

func invalidFilename(cause error) *Error {
	return newError(KindInvalidFilename, ErrInvalidFilename.Message, cause)
}

func missingParameter(name string) *Error {
	return newError(KindMissingParameter, "Missing "+name, nil)
}

func invalidParameter(name string, cause error) *Error {
	return newError(KindInvalidParameter, "Invalid "+name, cause)
}

func quotaExceeded() *Error {
	return newError(KindQuotaExceeded, ErrQuotaExceeded.Message, nil)
}

func objectNotFound() *Error {
	return newError(KindObjectNotFound, ErrObjectNotFound.Message, nil)
}

func routeNotFound() *Error {
	return newError(KindRouteNotFound, ErrRouteNotFound.Message, nil)
}

// backendError keeps the backend's own message for diagnostics.
func backendError(cause error) *Error {
	return newError(KindBackendError, cause.Error(), cause)
}

// AsError extracts the *Error from err.
// Any other non-nil error is reported as a backend failure.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}
	return backendError(err)
}
