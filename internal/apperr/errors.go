package apperr

import "errors"

// Sentinel errors for the core services. Call sites wrap them with
// fmt.Errorf("%w: ...") and the HTTP layer matches with errors.Is to pick a
// status code.
var (
	// ErrValidation marks malformed input the caller can correct.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an entity the caller has no authority over.
	ErrForbidden = errors.New("access denied")

	// ErrConflict marks a uniqueness violation reported by the metadata store.
	ErrConflict = errors.New("already exists")

	// ErrIntegrity marks a tree-traversal bound being exceeded. This is a
	// corruption signal, not a user error.
	ErrIntegrity = errors.New("tree integrity violation")

	// ErrStorage marks a blob backend failure.
	ErrStorage = errors.New("storage backend failure")

	// ErrExpired marks a share link past its expiry. Presented to the public
	// as not-found so a probing caller cannot confirm the token ever existed.
	ErrExpired = errors.New("share link expired")
)
