package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oratio/oratio/store"
)

func scheduledOn(contentType store.ContentType, iso string, status store.ScheduleStatus) *store.ScheduledContent {
	return &store.ScheduledContent{
		ID:            store.NewScheduleID("c1", iso, time.Now()),
		ContentID:     "c1",
		ContentType:   contentType,
		ScheduledDate: iso,
		Status:        status,
	}
}

func TestFindConflicts(t *testing.T) {
	ctx := context.Background()
	st := newMockStore()
	st.schedules = []*store.ScheduledContent{
		scheduledOn(store.ContentTypeQuote, "2024-01-03", store.ScheduleStatusScheduled),
		scheduledOn(store.ContentTypeQuote, "2024-01-05", store.ScheduleStatusPublished),
		scheduledOn(store.ContentTypeDevotional, "2024-01-04", store.ScheduleStatusScheduled),
	}
	checker := NewConflictChecker(st)

	dates := Sequence(date(2024, time.January, 1), RecurrenceDaily, CountBound(5))

	// Both scheduled and published records block; the devotional on the
	// 4th does not collide with quotes.
	conflicts, err := checker.FindConflicts(ctx, store.ContentTypeQuote, dates)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03", "2024-01-05"}, conflicts)

	conflicts, err = checker.FindConflicts(ctx, store.ContentTypeDevotional, dates)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-04"}, conflicts)
}

func TestFindConflictsIgnoresCancelled(t *testing.T) {
	ctx := context.Background()
	st := newMockStore()
	st.schedules = []*store.ScheduledContent{
		scheduledOn(store.ContentTypeQuote, "2024-01-02", store.ScheduleStatusCancelled),
	}
	checker := NewConflictChecker(st)

	conflicts, err := checker.FindConflicts(ctx, store.ContentTypeQuote,
		[]time.Time{date(2024, time.January, 2)})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsClear(t *testing.T) {
	ctx := context.Background()
	checker := NewConflictChecker(newMockStore())

	conflicts, err := checker.FindConflicts(ctx, store.ContentTypeQuote,
		Sequence(date(2024, time.January, 1), RecurrenceDaily, CountBound(10)))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsStorageError(t *testing.T) {
	ctx := context.Background()
	st := newMockStore()
	st.listErr = errors.New("connection refused")
	checker := NewConflictChecker(st)

	_, err := checker.FindConflicts(ctx, store.ContentTypeQuote,
		[]time.Time{date(2024, time.January, 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
