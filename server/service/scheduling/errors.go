package scheduling

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/oratio/oratio/store"
)

// Scheduling errors that can be checked with errors.Is.
var (
	// ErrScheduleConflict is returned when one or more target dates already
	// hold an active assignment.
	ErrScheduleConflict = errors.New("schedule conflicts detected")

	// ErrEmptyPool is returned when the planner is handed zero items for a
	// non-empty date list.
	ErrEmptyPool = errors.New("empty content pool")

	// ErrStorageUnavailable is returned when a persistence call fails.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned when a schedule assignment does not exist.
	ErrNotFound = errors.New("schedule not found")
)

// ValidationError rejects a request before any I/O happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError carries the full list of conflicting dates so the caller can
// adjust the range or clear existing schedules first.
type ConflictError struct {
	ContentType store.ContentType
	Dates       []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%ss are already scheduled for: %s", e.ContentType, strings.Join(e.Dates, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}

// StorageError reports a persistence failure, including how far a batch got
// before stopping. Nothing is retried; remediation is manual.
type StorageError struct {
	Op      string
	Written int
	Total   int
	Err     error
}

func (e *StorageError) Error() string {
	if e.Total > 0 {
		return fmt.Sprintf("%s: %d of %d scheduled, then failed: %v", e.Op, e.Written, e.Total, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}
