package scheduling

import (
	"context"
	"time"

	"github.com/oratio/oratio/store"
)

// Service defines the core business logic interface for content scheduling.
// The HTTP layer and any embedding callers go through this abstraction
// rather than touching the store directly.
type Service interface {
	// Schedule assigns a manually selected item subset to a start date,
	// optionally expanded by a recurrence rule and occurrence count. All
	// writes happen only when every generated date is conflict-free.
	Schedule(ctx context.Context, actor Actor, req *ScheduleRequest) (*ScheduleResult, error)

	// BulkSchedule assigns an entire filtered item pool across a date
	// range, wrapping the pool when dates outnumber items. Progress is
	// reported after each write.
	BulkSchedule(ctx context.Context, actor Actor, req *BulkScheduleRequest, progress ProgressFunc) (*BulkScheduleResult, error)

	// FindScheduled returns active assignments between two dates,
	// ascending, for the calendar view. Cancelled assignments are omitted.
	FindScheduled(ctx context.Context, contentType store.ContentType, start, end time.Time) ([]*store.ScheduledContent, error)

	// MarkPublished transitions a scheduled assignment to published.
	MarkPublished(ctx context.Context, actor Actor, id string) (*store.ScheduledContent, error)

	// MarkScheduled reverts a published assignment to scheduled.
	MarkScheduled(ctx context.Context, actor Actor, id string) (*store.ScheduledContent, error)

	// Cancel soft-cancels an assignment, freeing its date while preserving
	// the record for audit history.
	Cancel(ctx context.Context, actor Actor, id string) error
}

// Store is the interface for store operations needed by the scheduling
// service.
type Store interface {
	ListContentPool(ctx context.Context, contentType store.ContentType, status *store.ContentStatus) ([]*store.ContentItem, error)
	GetContentItem(ctx context.Context, find *store.FindContentItem) (*store.ContentItem, error)
	CreateScheduledContent(ctx context.Context, create *store.ScheduledContent) (*store.ScheduledContent, error)
	ListScheduledContent(ctx context.Context, find *store.FindScheduledContent) ([]*store.ScheduledContent, error)
	GetScheduledContent(ctx context.Context, find *store.FindScheduledContent) (*store.ScheduledContent, error)
	UpdateScheduledContent(ctx context.Context, update *store.UpdateScheduledContent) error
	CreateActivity(ctx context.Context, create *store.Activity) (*store.Activity, error)
}

// Actor is the operator performing a scheduling action, recorded on audit
// entries. Always passed explicitly; the engine carries no ambient user
// state.
type Actor struct {
	Name  string
	Email string
}

// ScheduleRequest is the single/recurring workflow input.
type ScheduleRequest struct {
	ContentType store.ContentType
	// ItemIDs is the manually selected item subset; must be non-empty.
	ItemIDs []string
	Start   time.Time
	// Recurrence defaults to none.
	Recurrence Recurrence
	// Count is the occurrence count; defaults to 1 and is forced to 1 when
	// Recurrence is none.
	Count int
}

// ScheduleResult reports a completed single/recurring run.
type ScheduleResult struct {
	// Created is the total number of records written (items x dates).
	Created int
	// Dates are the ISO dates that received assignments, ascending.
	Dates []string
}

// BulkScheduleRequest is the bulk workflow input.
type BulkScheduleRequest struct {
	ContentType store.ContentType
	// Status filters the candidate pool; nil means every item.
	Status *store.ContentStatus
	Start  time.Time
	End    time.Time
	// Recurrence must be daily, weekly or monthly.
	Recurrence Recurrence
	// Randomize shuffles the pool once before assignment.
	Randomize bool
}

// BulkScheduleResult reports a completed bulk run.
type BulkScheduleResult struct {
	Created   int
	PoolSize  int
	DateCount int
	// Repeated is set when dates outnumbered the pool, so items were
	// deliberately reused. A warning for the operator, not an error.
	Repeated bool
}

// ProgressFunc receives monotonic progress after each bulk write.
// May be nil.
type ProgressFunc func(completed, total int)
