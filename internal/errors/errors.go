package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrNotFound - a platform resource (agent, thread, run) does not exist
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied - credential rejected or subscription key invalid
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput - the platform rejected the request payload
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict - request conflicts with current run/thread state
	ErrConflict = errors.New("conflict")

	// ErrTransient - transient failure, safe to retry the poll
	ErrTransient = errors.New("transient error")

	// ErrRunFailed - the run reached the failed terminal status
	ErrRunFailed = errors.New("run failed")

	// ErrInternal - anything the taxonomy cannot classify
	ErrInternal = errors.New("internal error")
)
