// Package apperr defines the sentinel errors of a sync run.
package apperr

import "errors"

var (
	// ErrRemoteUnavailable marks a transport or HTTP failure talking to the
	// content API. Fatal for the whole run: a partial remote snapshot must
	// never drive deletions.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrCorruptFrontMatter marks a local file whose front matter cannot be
	// parsed. The file is skipped and the scan continues.
	ErrCorruptFrontMatter = errors.New("corrupt front matter")

	// ErrEmptyDocument marks a remote page with no content blocks. Nothing
	// is written for it and it does not count as a failure.
	ErrEmptyDocument = errors.New("empty document")

	// ErrWriteFailure marks a filesystem error on a single plan item. Other
	// items keep going.
	ErrWriteFailure = errors.New("write failure")
)
