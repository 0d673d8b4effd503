package session

import "errors"

// Validation sentinels. These fail before any network call is issued.
var (
	// ErrNoFiles indicates Scan was called with an empty upload queue.
	ErrNoFiles = errors.New("no files queued for upload")

	// ErrNoSession indicates an operation that needs a backend session ran
	// before a successful scan established one.
	ErrNoSession = errors.New("no active session")

	// ErrBusy indicates another workflow operation is still in flight.
	ErrBusy = errors.New("another operation is in flight")

	// ErrEditMode indicates DownloadModified ran without edit mode enabled.
	ErrEditMode = errors.New("edit mode is not enabled")
)

// ErrConversionFailed indicates the backend reported the conversion as
// unsuccessful, including a 200 response with an explicit failure flag.
var ErrConversionFailed = errors.New("conversion failed")

// ErrStale indicates the session was reset while the operation was in
// flight; its result was discarded.
var ErrStale = errors.New("session was reset during operation")
