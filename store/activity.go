package store

import (
	"context"
)

// Activity action values written by the scheduling engine.
const (
	ActivityActionScheduled     = "scheduled"
	ActivityActionBulkScheduled = "bulk_scheduled"
	ActivityActionStatusChanged = "schedule_status_changed"
	ActivityActionCancelled     = "schedule_cancelled"
)

// Activity is an audit log entry. The acting operator is recorded
// explicitly; there is no ambient current-user state.
type Activity struct {
	ID          string
	ActorName   string
	ActorEmail  string
	Action      string
	ContentType ContentType
	// ContentTitle names the affected item for single-item actions.
	ContentTitle string
	// ScheduledDate is set for single-item actions, DateRange for bulk runs.
	ScheduledDate  string
	DateRange      string
	ScheduledCount int
	CreatedTs      int64
}

// FindActivity is the find condition for activities.
// Results are ordered by creation time descending.
type FindActivity struct {
	Action      *string
	ContentType *ContentType

	Limit  *int
	Offset *int
}

// CreateActivity creates a new activity entry.
func (s *Store) CreateActivity(ctx context.Context, create *Activity) (*Activity, error) {
	return s.driver.CreateActivity(ctx, create)
}

// ListActivities lists activity entries with filter.
func (s *Store) ListActivities(ctx context.Context, find *FindActivity) ([]*Activity, error) {
	return s.driver.ListActivities(ctx, find)
}
