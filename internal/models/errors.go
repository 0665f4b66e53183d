package models

import (
	"errors"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrOwnerNotFound  = errors.New("owner not found")
	ErrUserConflict   = errors.New("user conflict")
	ErrThreadConflict = errors.New("thread conflict")
	ErrPostNotFound   = errors.New("post not found")

	ErrPermissionDenied    = errors.New("permission denied")
	ErrEmptyDestination    = errors.New("destination thread has no posts")
	ErrInvalidMergeRequest = errors.New("invalid merge request")
	ErrMergeNotification   = errors.New("merge committed but notification failed")
)

type MergePhase string

const (
	PhaseMerging  MergePhase = "merging"
	PhaseUpdating MergePhase = "updating"
	PhaseDeleting MergePhase = "deleting"
)

// MergeCommitError is what callers see when the commit transaction fails.
// Error() carries only the localized message; the cause stays reachable for
// logging through Unwrap.
type MergeCommitError struct {
	Phase   MergePhase
	Message string
	cause   error
}

func NewMergeCommitError(phase MergePhase, message string, cause error) *MergeCommitError {
	return &MergeCommitError{Phase: phase, Message: message, cause: cause}
}

func (e *MergeCommitError) Error() string {
	return e.Message
}

func (e *MergeCommitError) Unwrap() error {
	return e.cause
}
