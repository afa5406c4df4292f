package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the acting user is not permitted to touch
	// the request.
	ErrUnauthorized = errors.New("actor is not authorized for this request")
	// ErrInvalidTransition indicates the request is not in a state from
	// which the attempted transition is defined.
	ErrInvalidTransition = errors.New("invalid request state transition")
)

// ValidationError reports a malformed or missing input field. The message is
// safe to surface to callers verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
