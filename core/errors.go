package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthenticated is returned when there is no session token at call time.
	// It never reaches the network.
	ErrUnauthenticated = errors.New("Token topilmadi. Iltimos, qayta login qiling.")

	// ErrUnsupported is returned by resources the backend has no endpoint for.
	ErrUnsupported = errors.New("Bu amal qo'llab-quvvatlanmaydi")

	unauthorizedText = "Ruxsat berilmadi. Iltimos, qayta login qiling."
	networkText      = "Server bilan aloqa yo'q. Iltimos keyinroq urinib ko'ring."
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return fmt.Sprintf("%s: %s", err.Fields[0].Field, err.Fields[0].Error)
		}
		return ""
	}
	return err.Err.Error()
}

// UnauthorizedError means the backend rejected the token (401/403).
// Callers should prompt for a new login rather than a retry.
type UnauthorizedError struct {
	Status  int
	Message string
}

func NewUnauthorizedError(status int, msg string) error {
	if msg == "" {
		msg = unauthorizedText
	}
	return &UnauthorizedError{Status: status, Message: msg}
}

func (err UnauthorizedError) Error() string {
	return err.Message
}

// RemoteError is a non-2xx backend answer other than 401/403.
// Message is the backend's `message`, verbatim, or an operation fallback.
type RemoteError struct {
	Status  int
	Message string
}

func NewRemoteError(status int, msg string) error {
	return &RemoteError{Status: status, Message: msg}
}

func (err RemoteError) Error() string {
	return err.Message
}

// NetworkError means the request could not complete (DNS, timeout, reset, unreadable body).
type NetworkError struct {
	Err error
}

func NewNetworkError(err error) error {
	return &NetworkError{Err: err}
}

func (err NetworkError) Error() string {
	return networkText
}

func (err NetworkError) Unwrap() error {
	return err.Err
}

// IsAuthError reports whether err asks the user to log in again.
func IsAuthError(err error) bool {
	switch errors.Cause(err).(type) {
	case *UnauthorizedError:
		return true
	}
	return errors.Cause(err) == ErrUnauthenticated
}

// StatusOf returns the HTTP status matching err's kind.
func StatusOf(err error) int {
	switch origErr := errors.Cause(err).(type) {
	case *UnauthorizedError:
		return origErr.Status
	case *ValidationError:
		return http.StatusBadRequest
	case *RemoteError:
		if origErr.Status >= http.StatusInternalServerError || origErr.Status < http.StatusBadRequest {
			return http.StatusBadGateway
		}
		return origErr.Status
	case *NetworkError:
		return http.StatusGatewayTimeout
	}
	switch errors.Cause(err) {
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrUnsupported:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
