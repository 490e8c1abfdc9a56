package services

import "errors"

// Operation error taxonomy. Handlers map these onto transport status codes;
// nothing here is retryable server-side. A rejected operation never mutates
// the record and never emits a broadcast.
var (
	// ErrNotFound: unknown SOS or volunteer id.
	ErrNotFound = errors.New("record not found")

	// ErrConflict: another volunteer already holds the assignment. The
	// losing caller should re-fetch current state, not retry.
	ErrConflict = errors.New("request already assigned to another volunteer")

	// ErrForbidden: valid credential, wrong identity or role for this
	// operation.
	ErrForbidden = errors.New("not authorized for this operation")

	// ErrInvalidTransition: mutation attempted against a terminal record or
	// outside the state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidCredentials: login failure. Deliberately vague.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotApproved: volunteer exists but has not been approved by an admin.
	ErrNotApproved = errors.New("account not approved yet")
)

// ValidationError reports a bad request payload (missing location, unknown
// status value). Always recoverable client-side.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}
