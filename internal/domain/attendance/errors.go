package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Attendance domain errors
var (
	// Check-in / check-out state conflicts
	ErrAlreadyCheckedIn  = errors.New("already checked in")
	ErrNotCheckedIn      = errors.New("please check in first before checking out")
	ErrAlreadyCheckedOut = errors.New("already checked out")

	// General errors
	ErrAttendanceNotFound    = errors.New("attendance record not found")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time must be after check-in time")
)

// ConflictError reports a check-in/check-out state conflict together with the
// time of the earlier action, e.g. "already checked in at 09:15:00".
type ConflictError struct {
	Err error
	At  time.Time
}

func NewConflictError(err error, at time.Time) *ConflictError {
	return &ConflictError{Err: err, At: at}
}

func (e *ConflictError) Error() string {
	if e.At.IsZero() {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s at %s", e.Err.Error(), e.At.Format("15:04:05"))
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is one of the check-in/check-out state conflicts.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyCheckedIn) ||
		errors.Is(err, ErrAlreadyCheckedOut) ||
		errors.Is(err, ErrNotCheckedIn)
}
