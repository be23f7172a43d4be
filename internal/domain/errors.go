package domain

import "errors"

// --- Domain Specific Errors ---

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrUnauthorized indicates missing, expired or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates that the user is not allowed to perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrConflict indicates a uniqueness violation, e.g. an already registered email.
	ErrConflict = errors.New("entity already exists")
	// ErrUnavailable indicates a transient failure of a collaborator.
	ErrUnavailable = errors.New("service unavailable")
)

// UserMessage converts any collaborator failure into a message suitable for
// showing to the user. Unknown errors collapse into a generic retry hint.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested item was not found."
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to perform this action."
	case errors.Is(err, ErrInvalidInput):
		return "Some of the entered data is invalid: " + err.Error()
	case errors.Is(err, ErrConflict):
		return "Such an entry already exists."
	default:
		return "Something went wrong. Please try again later."
	}
}
