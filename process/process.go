// Package process provides the portable types and interfaces of the toolkit.
// The platform implementation lives in process_windows.
package process

import "errors"

var (
	// ErrNotAttached is returned when an operation requiring an attached process
	// is attempted before Attach has succeeded or after Detach.
	ErrNotAttached = errors.New("process not attached")

	// ErrExportNotFound is returned when a named export cannot be resolved in
	// the target process.
	ErrExportNotFound = errors.New("export not found")

	// ErrPrivilegeNotAssigned is returned when a privilege adjustment call
	// succeeds at the API level but the privilege was not actually granted.
	ErrPrivilegeNotAssigned = errors.New("privilege not assigned")

	// ErrEnvironmentNotReady is returned when the remote execution environment
	// is used before CreateEnvironment.
	ErrEnvironmentNotReady = errors.New("remote execution environment not created")
)
