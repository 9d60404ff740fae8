package udap

import (
	"errors"
	"fmt"
)

var (
	// ErrMetadata marks a well-known discovery or trust-anchor validation
	// failure. Never retried automatically.
	ErrMetadata = errors.New("udap metadata validation failed")

	// ErrTransport marks a network failure on any external round trip.
	ErrTransport = errors.New("udap transport error")
)

// TokenEndpointError is a non-success response from a token endpoint. It is
// surfaced so callers can report the status and body verbatim.
type TokenEndpointError struct {
	Status int
	Body   string
}

func (e *TokenEndpointError) Error() string {
	return fmt.Sprintf("token endpoint returned %d: %s", e.Status, e.Body)
}
