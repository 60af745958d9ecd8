package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	// ErrMethodNotAllowed returned when the HTTP verb is not POST
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrMissingBody returned when the request has no body
	ErrMissingBody = errors.New("missing request body")

	// ErrInvalidJSON returned when the body does not decode into a JSON object
	ErrInvalidJSON = errors.New("invalid JSON body")

	// ErrMissingField returned when a required field is absent or empty
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField returned when a field has the wrong JSON type
	ErrInvalidField = errors.New("invalid field")

	// ErrMissingAPIKey returned when the provider secret is not configured
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrUpstreamStatus returned when the provider answers with a non-2xx status
	ErrUpstreamStatus = errors.New("upstream returned an error status")

	// ErrUpstreamBody returned when the provider answers with a non-JSON body
	ErrUpstreamBody = errors.New("upstream returned a non-JSON body")

	// ErrTransport returned when the provider could not be reached
	ErrTransport = errors.New("upstream request failed")
)

// Kind classifies an error by how it is surfaced to callers
type Kind string

const (
	KindMethodNotAllowed Kind = "method_not_allowed"
	KindBadRequest       Kind = "bad_request"
	KindConfiguration    Kind = "configuration"
	KindUpstream         Kind = "upstream"
	KindTransport        Kind = "transport"
)

// Error is the typed error every pipeline stage returns.
// Message is safe to show to callers; Details is optional diagnostic data.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the handler should answer with
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewMethodNotAllowed rejects a non-POST invocation
func NewMethodNotAllowed() *Error {
	return &Error{
		Kind:    KindMethodNotAllowed,
		Status:  http.StatusMethodNotAllowed,
		Message: "Method Not Allowed",
		Err:     ErrMethodNotAllowed,
	}
}

// NewBadRequest rejects an invocation with an unusable body
func NewBadRequest(message string, cause error) *Error {
	return &Error{
		Kind:    KindBadRequest,
		Status:  http.StatusBadRequest,
		Message: message,
		Err:     cause,
	}
}

// NewMissingField names the first required field that failed the check
func NewMissingField(name string) *Error {
	return NewBadRequest(
		fmt.Sprintf("Missing %q in request body.", name),
		fmt.Errorf("%w: %s", ErrMissingField, name),
	)
}

// NewConfigurationError reports an absent secret
func NewConfigurationError(envVar string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("%s is not set. Configure it in the function's environment variables.", envVar),
		Err:     fmt.Errorf("%w: %s", ErrMissingAPIKey, envVar),
	}
}

// NewUpstreamError passes a provider failure through. A zero status becomes 500.
func NewUpstreamError(status int, message string) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{
		Kind:    KindUpstream,
		Status:  status,
		Message: message,
		Err:     fmt.Errorf("%w: %d", ErrUpstreamStatus, status),
	}
}

// NewTransportError reports a failed outbound call. The cause's message is
// exposed as details for diagnostics.
func NewTransportError(cause error) *Error {
	var details interface{}
	if cause != nil {
		details = cause.Error()
	}
	return &Error{
		Kind:    KindTransport,
		Status:  http.StatusInternalServerError,
		Message: "Internal Server Error.",
		Details: details,
		Err:     cause,
	}
}

// AsError converts any error into a *Error. Unknown errors become a transport-class 500.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewTransportError(err)
}
