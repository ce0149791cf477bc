package blob

import "errors"

var (
	// ErrStorageUnavailable means the store has not finished initializing.
	// Fatal for the request, not for the process.
	ErrStorageUnavailable = errors.New("blob storage unavailable")

	// ErrNotFound means no blob exists under the given id.
	ErrNotFound = errors.New("blob not found")

	// ErrInvalidID means the caller-supplied id is not a well-formed identifier.
	ErrInvalidID = errors.New("invalid blob id")

	// ErrUploadFailed means an I/O error occurred before the blob became durable.
	ErrUploadFailed = errors.New("blob upload failed")

	// ErrUploadClosed means the upload handle was already finalized or aborted.
	ErrUploadClosed = errors.New("upload already closed")
)
