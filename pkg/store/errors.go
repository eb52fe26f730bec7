package store

import "errors"

// Error taxonomy shared by every backend. Callers branch with errors.Is; the
// concrete host error stays wrapped underneath for logging.
var (
	// ErrNotFound: referenced path, branch or workflow does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: optimistic-concurrency revision mismatch on write, or
	// branch already exists on create. Retrying requires a fresh read; the
	// store layer never retries these itself.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument: the host rejected the request parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRemoteUnavailable: transport failure or 5xx from the host.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrNotSupported: the backend does not implement this operation.
	ErrNotSupported = errors.New("not supported by this backend")
)
