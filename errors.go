package folio

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoFile is returned when an upload carries no file
	ErrNoFile = errors.New("no file")
	// ErrUnauthorized is returned when a session token is missing or unknown
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when an authenticated user may not touch a resource
	ErrForbidden = errors.New("forbidden")
	// ErrUsernameTaken is returned when registering an existing username
	ErrUsernameTaken = errors.New("username taken")
	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStorageDegraded is returned when a remote upload failed but the local copy was kept
	ErrStorageDegraded = errors.New("storage degraded")
	// ErrPersistence is returned when the document cannot be written
	ErrPersistence = errors.New("persistence error")
	// ErrCorruptData is returned when the persisted document cannot be parsed
	ErrCorruptData = errors.New("corrupt data")
)
