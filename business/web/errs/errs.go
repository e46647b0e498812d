// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
	"github.com/ardanlabs/forkchain/foundation/blockchain/state"
	"github.com/ardanlabs/forkchain/foundation/validate"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (re *Trusted) Unwrap() error {
	return re.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

// =============================================================================

// Classify converts an error into the response and status code that should
// be sent to the client. The second return is false when the error is not
// safe to show, in which case a generic 500 is returned.
func Classify(err error) (Response, int, bool) {
	switch {
	case validate.IsFieldErrors(err):
		fe := validate.GetFieldErrors(err)
		return Response{Error: "data validation error", Fields: fe.Fields()}, http.StatusBadRequest, true

	case IsTrusted(err):
		re := GetTrusted(err)
		return Response{Error: re.Error()}, re.Status, true

	case signature.IsAuthenticationError(err):
		return Response{Error: err.Error()}, http.StatusUnauthorized, true

	case signature.IsDecodingError(err),
		errors.Is(err, database.ErrInvalidTransaction):
		return Response{Error: err.Error()}, http.StatusBadRequest, true

	case errors.Is(err, database.ErrUnknownParent):
		return Response{Error: err.Error()}, http.StatusNotFound, true

	case errors.Is(err, state.ErrDuplicateBlock), errors.Is(err, state.ErrDuplicateTransaction):
		return Response{Error: err.Error()}, http.StatusConflict, true
	}

	return Response{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError, false
}
