package upload

import (
	"errors"
	"fmt"
)

// ErrUploadInFlight is returned by Submit when another upload has not finished yet.
var ErrUploadInFlight = errors.New("an upload is already in progress")

// ValidationError represents a local failure detected before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ServerError represents a failure reported by the parsing service in the
// "error" field of an otherwise successful response.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Message)
}

// TransportError represents a network failure, a non-2xx status or a body
// that could not be understood.
type TransportError struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upload error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("upload error for %s: %s", e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ErrorKind names the class an upload error belongs to.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindServer     ErrorKind = "server"
	KindTransport  ErrorKind = "transport"
	KindInFlight   ErrorKind = "in_flight"
)

// Classify maps err onto its ErrorKind. Unknown errors count as transport failures.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var validationErr *ValidationError
	var serverErr *ServerError
	switch {
	case errors.Is(err, ErrUploadInFlight):
		return KindInFlight
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &serverErr):
		return KindServer
	default:
		return KindTransport
	}
}
