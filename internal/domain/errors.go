package domain

import "errors"

// Domain errors returned by the store, the adapters and the server.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTaskNotFound indicates the specified task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound indicates the specified user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")
)

// Validation errors.
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title must be 255 characters or less")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")
)

// Authentication errors.
var (
	// ErrUnauthorized indicates a missing, invalid or rejected credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates an email/password pair that does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken indicates a registration for an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidAPIKeyFormat indicates a bearer token that is not a GoDaily API key.
	ErrInvalidAPIKeyFormat = errors.New("invalid API key format")
)

// ErrRemoteFailure indicates the remote service answered with a non-success status
// (other than an authentication failure) or could not be reached.
var ErrRemoteFailure = errors.New("remote request failed")
