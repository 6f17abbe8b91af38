package services

import (
	"errors"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrUserNotFound       = newError(ErrNotFound, "User not found")
	ErrDiscussionNotFound = newError(ErrNotFound, "Discussion not found")
	ErrCommentNotFound    = newError(ErrNotFound, "Comment not found")
	ErrEmailRegistered    = newError(ErrConflict, "Email already registered")
	ErrMobileRegistered   = newError(ErrConflict, "Mobile number already registered")
	ErrAlreadyRegistered  = newError(ErrConflict, "User already registered")
	ErrBadCredentials     = newError(ErrUnauthenticated, "Incorrect username or password")
	ErrInvalidCredentials = newError(ErrUnauthenticated, "Could not validate credentials")
	ErrLoginLocked        = newError(ErrTooManyAttempts, "Too many failed login attempts")
	ErrSelfFollow         = newError(ErrInvalidInput, "Cannot follow yourself")
	ErrEmptyText          = newError(ErrInvalidInput, "Text must not be empty")
	ErrImageTooLong       = newError(ErrInvalidInput, "Image must be at most 255 characters")
)
