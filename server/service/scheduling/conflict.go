package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/oratio/oratio/store"
)

// scheduleLister is the read-only slice of the store the conflict checker
// needs.
type scheduleLister interface {
	ListScheduledContent(ctx context.Context, find *store.FindScheduledContent) ([]*store.ScheduledContent, error)
}

// ConflictChecker reports which candidate dates already hold an active
// (non-cancelled) assignment of a content type. Read-only; never blocks a
// write by itself — callers abort on a non-empty result.
type ConflictChecker struct {
	store scheduleLister
}

func NewConflictChecker(store scheduleLister) *ConflictChecker {
	return &ConflictChecker{store: store}
}

// FindConflicts issues one point query per candidate date and returns the
// sorted set of ISO dates that are already taken. An empty result means the
// whole batch is clear.
func (c *ConflictChecker) FindConflicts(ctx context.Context, contentType store.ContentType, dates []time.Time) ([]string, error) {
	seen := make(map[string]bool, len(dates))
	conflicts := []string{}

	for _, date := range dates {
		iso := FormatDate(date)
		if seen[iso] {
			continue
		}
		seen[iso] = true

		find := &store.FindScheduledContent{
			ContentType:      &contentType,
			ScheduledDate:    &iso,
			ExcludeCancelled: true,
		}
		existing, err := c.store.ListScheduledContent(ctx, find)
		if err != nil {
			return nil, &StorageError{Op: "conflict check", Err: err}
		}
		if len(existing) > 0 {
			conflicts = append(conflicts, iso)
		}
	}

	sort.Strings(conflicts)
	return conflicts, nil
}
