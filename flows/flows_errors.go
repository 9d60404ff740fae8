package flows

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/udap-tools/udap-client-app/udap"
)

var (
	// ErrNoServerSelected is returned when an action needs a selected server
	// and the registry is empty or points at nothing.
	ErrNoServerSelected = errors.New("no server is selected")

	// ErrNotRegistered is returned when a token is requested for a flow that
	// has not completed dynamic client registration.
	ErrNotRegistered = errors.New("client is not registered with the selected server")

	// ErrStateMismatch is terminal for one authorization attempt: the
	// callback state did not match the session's stored value, so no token
	// exchange is attempted.
	ErrStateMismatch = errors.New("an invalid authorization code state was sent")
)

// RegistrationError is a non-success outcome from dynamic registration. The
// client identifier stays empty so the next attempt retries from scratch.
type RegistrationError struct {
	Status int
	Body   string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("Error Code: %d Error Message: %s", e.Status, e.Body)
}

// TokenError is a structured token-endpoint failure surfaced to the session.
// It never clears a previously obtained token.
type TokenError struct {
	Code    string
	Message string
}

func (e *TokenError) Error() string {
	return e.Code + " - " + e.Message
}

func tokenErrorFrom(err error) *TokenError {
	var endpointErr *udap.TokenEndpointError
	if errors.As(err, &endpointErr) {
		return &TokenError{Code: strconv.Itoa(endpointErr.Status), Message: endpointErr.Body}
	}
	if errors.Is(err, udap.ErrTransport) {
		return &TokenError{Code: "transport", Message: err.Error()}
	}
	return &TokenError{Code: "error", Message: err.Error()}
}
