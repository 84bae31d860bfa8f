package domain

import "errors"

var (
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when an authenticated user lacks the admin role.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation marks a malformed submission; nothing is persisted.
	ErrValidation = errors.New("invalid submission data")
	// ErrUserNotFound indicates a user id could not be resolved.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned on registration with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials is returned when a login does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound is returned when a session token is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)
