package checkin

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed      = errors.New("malformed code")
	ErrEventMismatch  = errors.New("code does not belong to this event")
	ErrGuestNotFound  = errors.New("guest not found")
	ErrGuestDeclined  = errors.New("guest declined the invitation")
	ErrDirectoryRead  = errors.New("guest directory unavailable")
	ErrDirectoryWrite = errors.New("guest directory write failed")
)

// DirectoryWriteError is returned when the check-in could not be persisted.
// The guest's state is unchanged and the operator may retry.
type DirectoryWriteError struct {
	EventID string
	GuestID string
	Err     error
}

func (e *DirectoryWriteError) Error() string {
	return fmt.Sprintf("record check-in for guest %s in event %s: %v", e.GuestID, e.EventID, e.Err)
}

func (e *DirectoryWriteError) Unwrap() []error {
	return []error{ErrDirectoryWrite, e.Err}
}

// OperatorMessage is the short text shown at the check-in desk for a result or error.
func OperatorMessage(outcome Outcome, err error) string {
	switch {
	case err == nil && outcome == OutcomeAlreadyCheckedIn:
		return "guest already checked in"
	case err == nil:
		return "guest checked in"
	case errors.Is(err, ErrMalformed):
		return "invalid code"
	case errors.Is(err, ErrEventMismatch):
		return "code does not belong to this event"
	case errors.Is(err, ErrGuestNotFound):
		return "guest not found"
	case errors.Is(err, ErrGuestDeclined):
		return "guest declined the invitation"
	default:
		return "check-in failed, please retry"
	}
}

// Label is a stable, low-cardinality name for a result, used in metrics and activity records.
func Label(outcome Outcome, err error) string {
	switch {
	case err == nil && outcome != "":
		return string(outcome)
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrEventMismatch):
		return "event_mismatch"
	case errors.Is(err, ErrGuestNotFound):
		return "guest_not_found"
	case errors.Is(err, ErrGuestDeclined):
		return "guest_declined"
	case errors.Is(err, ErrDirectoryWrite):
		return "write_failed"
	default:
		return "lookup_failed"
	}
}
