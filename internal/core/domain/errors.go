package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidEndpoint indicates an endpoint URL could not be parsed.
	ErrInvalidEndpoint = errors.New("invalid endpoint url")

	// ErrControllerDisposed indicates a list controller was used after Dispose.
	ErrControllerDisposed = errors.New("list controller disposed")

	// ErrSnapshotExpired indicates a stored list snapshot is older than its TTL.
	ErrSnapshotExpired = errors.New("snapshot expired")

	// Authentication Errors.

	// ErrAuthRequired indicates the operation needs a signed-in session.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the stored session token has expired.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the session cookie or token is malformed.
	ErrAuthInvalid = errors.New("authentication invalid")
)
