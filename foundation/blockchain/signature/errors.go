package signature

import (
	"errors"
	"fmt"
)

// AuthenticationError is returned when a signature or fingerprint does not
// match the data it was produced for.
type AuthenticationError struct {
	msg string
}

// Error implements the error interface.
func (ae *AuthenticationError) Error() string {
	return "authentication: " + ae.msg
}

// NewAuthenticationError constructs an AuthenticationError with the
// specified message.
func NewAuthenticationError(msg string) error {
	return &AuthenticationError{msg: msg}
}

// IsAuthenticationError checks if an error of type AuthenticationError exists.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// =============================================================================

// DecodingError is returned when an envelope, identity or signature can't be
// decoded.
type DecodingError struct {
	Err error
}

// Error implements the error interface.
func (de *DecodingError) Error() string {
	return fmt.Sprintf("decoding: %s", de.Err)
}

// Unwrap provides access to the underlying error.
func (de *DecodingError) Unwrap() error {
	return de.Err
}

// IsDecodingError checks if an error of type DecodingError exists.
func IsDecodingError(err error) bool {
	var de *DecodingError
	return errors.As(err, &de)
}
