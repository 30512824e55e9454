package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ScheduleStatus is the lifecycle status of a schedule assignment.
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusPublished ScheduleStatus = "published"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

func (s ScheduleStatus) String() string {
	return string(s)
}

// ScheduleDateLayout is the storage format for scheduled dates.
// Time-of-day is not modeled.
const ScheduleDateLayout = "2006-01-02"

// ScheduledContent is a single assignment of a content item to a calendar
// date. Display fields are a snapshot captured at schedule time and do not
// track later edits of the source item.
type ScheduledContent struct {
	// ID is a deterministic composite key:
	// {contentID}_{scheduledDate}_{creationTimestampMillis}.
	// The format is stable; external tooling may parse it for debugging.
	ID            string
	ContentID     string
	ContentType   ContentType
	Title         string
	Author        string
	Verse         string
	ScheduledDate string
	Status        ScheduleStatus
	// RecurringType records which recurrence rule produced this record
	// ("daily", "weekly", "monthly"). Display/audit only; nil for one-off
	// and bulk writes tag the bulk rule instead.
	RecurringType  *string
	RecurringIndex int
	BulkScheduled  bool
	CreatedTs      int64
}

// NewScheduleID builds the composite schedule id for a content item, an ISO
// date and a creation instant.
func NewScheduleID(contentID, scheduledDate string, createdAt time.Time) string {
	return fmt.Sprintf("%s_%s_%d", contentID, scheduledDate, createdAt.UnixMilli())
}

// ParseScheduleID splits a composite schedule id back into its parts.
func ParseScheduleID(id string) (contentID, scheduledDate string, createdMillis int64, err error) {
	idx := strings.LastIndex(id, "_")
	if idx < 0 {
		return "", "", 0, errors.Errorf("malformed schedule id %q", id)
	}
	createdMillis, err = strconv.ParseInt(id[idx+1:], 10, 64)
	if err != nil {
		return "", "", 0, errors.Wrapf(err, "malformed schedule id %q", id)
	}
	rest := id[:idx]
	idx = strings.LastIndex(rest, "_")
	if idx < 0 {
		return "", "", 0, errors.Errorf("malformed schedule id %q", id)
	}
	contentID, scheduledDate = rest[:idx], rest[idx+1:]
	if _, err := time.Parse(ScheduleDateLayout, scheduledDate); err != nil {
		return "", "", 0, errors.Wrapf(err, "malformed schedule id %q", id)
	}
	return contentID, scheduledDate, createdMillis, nil
}

// FindScheduledContent is the find condition for schedule assignments.
// Results are always ordered by scheduled date ascending.
type FindScheduledContent struct {
	ID          *string
	ContentID   *string
	ContentType *ContentType

	// ScheduledDate matches an exact date (conflict checks).
	ScheduledDate *string
	// ScheduledDateStart/End bound a date range, inclusive (calendar view).
	ScheduledDateStart *string
	ScheduledDateEnd   *string

	Status *ScheduleStatus
	// ExcludeCancelled drops soft-cancelled assignments from the result.
	ExcludeCancelled bool

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateScheduledContent is the update request for a schedule assignment.
// Only the status may change after creation.
type UpdateScheduledContent struct {
	ID     string
	Status *ScheduleStatus
}

// DeleteScheduledContent is the delete request for a schedule assignment.
type DeleteScheduledContent struct {
	ID string
}

// CreateScheduledContent creates a new schedule assignment. IDs are always
// freshly generated, so creates are additive-only.
func (s *Store) CreateScheduledContent(ctx context.Context, create *ScheduledContent) (*ScheduledContent, error) {
	return s.driver.CreateScheduledContent(ctx, create)
}

// ListScheduledContent lists schedule assignments with filter.
func (s *Store) ListScheduledContent(ctx context.Context, find *FindScheduledContent) ([]*ScheduledContent, error) {
	return s.driver.ListScheduledContent(ctx, find)
}

// GetScheduledContent gets a single schedule assignment, or nil when not found.
func (s *Store) GetScheduledContent(ctx context.Context, find *FindScheduledContent) (*ScheduledContent, error) {
	list, err := s.driver.ListScheduledContent(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateScheduledContent updates a schedule assignment.
func (s *Store) UpdateScheduledContent(ctx context.Context, update *UpdateScheduledContent) error {
	return s.driver.UpdateScheduledContent(ctx, update)
}

// DeleteScheduledContent deletes a schedule assignment outright. The
// lifecycle cancel action is a soft status transition; this remains for
// operator purges.
func (s *Store) DeleteScheduledContent(ctx context.Context, delete *DeleteScheduledContent) error {
	return s.driver.DeleteScheduledContent(ctx, delete)
}

// ParseScheduledDate parses the assignment's date into a time.Time at
// midnight UTC.
func (c *ScheduledContent) ParseScheduledDate() (time.Time, error) {
	t, err := time.Parse(ScheduleDateLayout, c.ScheduledDate)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid scheduled date %q", c.ScheduledDate)
	}
	return t, nil
}

// IsActive reports whether the assignment still occupies its date
// (i.e. it has not been cancelled).
func (c *ScheduledContent) IsActive() bool {
	return c.Status != ScheduleStatusCancelled
}
