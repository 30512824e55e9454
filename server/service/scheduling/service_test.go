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

// mockStore is a hand-written in-memory Store for service tests.
type mockStore struct {
	contents  []*store.ContentItem
	schedules []*store.ScheduledContent
	activity  []*store.Activity

	// failCreateAt makes the Nth CreateScheduledContent call (1-based)
	// fail, to exercise partial-write reporting. Zero disables it.
	failCreateAt int
	createCalls  int

	listErr error
}

func newMockStore(items ...*store.ContentItem) *mockStore {
	return &mockStore{contents: items}
}

func (m *mockStore) ListContentPool(ctx context.Context, contentType store.ContentType, status *store.ContentStatus) ([]*store.ContentItem, error) {
	var pool []*store.ContentItem
	for _, item := range m.contents {
		if item.Type != contentType {
			continue
		}
		if status != nil && item.Status != *status {
			continue
		}
		pool = append(pool, item)
	}
	return pool, nil
}

func (m *mockStore) GetContentItem(ctx context.Context, find *store.FindContentItem) (*store.ContentItem, error) {
	for _, item := range m.contents {
		if find.ID != nil && item.ID != *find.ID {
			continue
		}
		if find.Type != nil && item.Type != *find.Type {
			continue
		}
		return item, nil
	}
	return nil, nil
}

func (m *mockStore) CreateScheduledContent(ctx context.Context, create *store.ScheduledContent) (*store.ScheduledContent, error) {
	m.createCalls++
	if m.failCreateAt > 0 && m.createCalls >= m.failCreateAt {
		return nil, errors.New("disk full")
	}
	create.CreatedTs = time.Now().Unix()
	m.schedules = append(m.schedules, create)
	return create, nil
}

func (m *mockStore) ListScheduledContent(ctx context.Context, find *store.FindScheduledContent) ([]*store.ScheduledContent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var list []*store.ScheduledContent
	for _, sc := range m.schedules {
		if find.ID != nil && sc.ID != *find.ID {
			continue
		}
		if find.ContentType != nil && sc.ContentType != *find.ContentType {
			continue
		}
		if find.ScheduledDate != nil && sc.ScheduledDate != *find.ScheduledDate {
			continue
		}
		if find.ScheduledDateStart != nil && sc.ScheduledDate < *find.ScheduledDateStart {
			continue
		}
		if find.ScheduledDateEnd != nil && sc.ScheduledDate > *find.ScheduledDateEnd {
			continue
		}
		if find.Status != nil && sc.Status != *find.Status {
			continue
		}
		if find.ExcludeCancelled && sc.Status == store.ScheduleStatusCancelled {
			continue
		}
		list = append(list, sc)
	}
	return list, nil
}

func (m *mockStore) GetScheduledContent(ctx context.Context, find *store.FindScheduledContent) (*store.ScheduledContent, error) {
	list, err := m.ListScheduledContent(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (m *mockStore) UpdateScheduledContent(ctx context.Context, update *store.UpdateScheduledContent) error {
	for _, sc := range m.schedules {
		if sc.ID == update.ID {
			if update.Status != nil {
				sc.Status = *update.Status
			}
			return nil
		}
	}
	return errors.Errorf("schedule %s not found", update.ID)
}

func (m *mockStore) CreateActivity(ctx context.Context, create *store.Activity) (*store.Activity, error) {
	m.activity = append(m.activity, create)
	return create, nil
}

func quoteItem(id, title string) *store.ContentItem {
	return &store.ContentItem{
		ID:     id,
		Type:   store.ContentTypeQuote,
		Title:  title,
		Author: "Author of " + title,
		Status: store.ContentStatusPublished,
	}
}

func testActor() Actor {
	return Actor{Name: "Test Admin", Email: "admin@example.com"}
}

func TestScheduleSingle(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"))
	svc := NewService(st)

	result, err := svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1"},
		Start:       date(2024, time.January, 15),
		Recurrence:  RecurrenceNone,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"2024-01-15"}, result.Dates)

	require.Len(t, st.schedules, 1)
	rec := st.schedules[0]
	assert.Equal(t, "q1", rec.ContentID)
	assert.Equal(t, "Quote One", rec.Title)
	assert.Equal(t, "2024-01-15", rec.ScheduledDate)
	assert.Equal(t, store.ScheduleStatusScheduled, rec.Status)
	assert.Nil(t, rec.RecurringType, "one-off records carry no recurrence tag")
	assert.False(t, rec.BulkScheduled)

	require.Len(t, st.activity, 1)
	assert.Equal(t, store.ActivityActionScheduled, st.activity[0].Action)
	assert.Equal(t, "admin@example.com", st.activity[0].ActorEmail)
}

func TestScheduleRecurringCrossProduct(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"), quoteItem("q2", "Quote Two"))
	svc := NewService(st)

	result, err := svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1", "q2"},
		Start:       date(2024, time.January, 1),
		Recurrence:  RecurrenceWeekly,
		Count:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08"}, result.Dates)

	// Every selected item lands on every date, date-major.
	require.Len(t, st.schedules, 4)
	wantContent := []string{"q1", "q2", "q1", "q2"}
	wantDates := []string{"2024-01-01", "2024-01-01", "2024-01-08", "2024-01-08"}
	wantIndex := []int{0, 0, 1, 1}
	for i, rec := range st.schedules {
		assert.Equal(t, wantContent[i], rec.ContentID, "record %d", i)
		assert.Equal(t, wantDates[i], rec.ScheduledDate, "record %d", i)
		assert.Equal(t, wantIndex[i], rec.RecurringIndex, "record %d", i)
		require.NotNil(t, rec.RecurringType, "record %d", i)
		assert.Equal(t, "weekly", *rec.RecurringType, "record %d", i)
	}

	// One audit entry per record for the single/recurring flow.
	assert.Len(t, st.activity, 4)
}

func TestScheduleConflictAborts(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"))
	svc := NewService(st)

	// Occupy the middle of the range.
	_, err := svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1"},
		Start:       date(2024, time.January, 3),
	})
	require.NoError(t, err)
	require.Len(t, st.schedules, 1)

	_, err = svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1"},
		Start:       date(2024, time.January, 1),
		Recurrence:  RecurrenceDaily,
		Count:       5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScheduleConflict)

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, []string{"2024-01-03"}, conflictErr.Dates)
	assert.Equal(t, store.ContentTypeQuote, conflictErr.ContentType)

	// All-or-nothing: the clear dates were not written either.
	assert.Len(t, st.schedules, 1)
}

func TestScheduleCancelledDoesNotConflict(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"))
	svc := NewService(st)

	_, err := svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1"},
		Start:       date(2024, time.January, 3),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, testActor(), st.schedules[0].ID))

	// The cancelled assignment frees its date for rescheduling.
	result, err := svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1"},
		Start:       date(2024, time.January, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestScheduleValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockStore(quoteItem("q1", "Quote One")))

	var validationErr *ValidationError

	_, err := svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		Start:       date(2024, time.January, 1),
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "no items selected", validationErr.Msg)

	_, err = svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1"},
		Start:       date(2024, time.January, 1),
		Recurrence:  Recurrence("hourly"),
	})
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1"},
		Start:       date(2024, time.January, 1),
		Recurrence:  RecurrenceDaily,
		Count:       MaxOccurrences + 1,
	})
	assert.ErrorAs(t, err, &validationErr)
}

func TestScheduleSkipsMissingItems(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"))
	svc := NewService(st)

	result, err := svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1", "gone"},
		Start:       date(2024, time.January, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	// All selected ids missing degrades to the empty-selection error.
	var validationErr *ValidationError
	_, err = svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"gone", "also-gone"},
		Start:       date(2024, time.February, 1),
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "no items selected", validationErr.Msg)
}

func TestBulkSchedulePoolWrap(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(
		quoteItem("q1", "Quote One"),
		quoteItem("q2", "Quote Two"),
		quoteItem("q3", "Quote Three"),
	)
	svc := NewService(st)

	result, err := svc.BulkSchedule(ctx, testActor(), &BulkScheduleRequest{
		ContentType: store.ContentTypeQuote,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.January, 5),
		Recurrence:  RecurrenceDaily,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Created)
	assert.Equal(t, 3, result.PoolSize)
	assert.Equal(t, 5, result.DateCount)
	assert.True(t, result.Repeated)

	// Pool order wraps: q1 q2 q3 q1 q2 across Jan 1-5.
	require.Len(t, st.schedules, 5)
	wantContent := []string{"q1", "q2", "q3", "q1", "q2"}
	for i, rec := range st.schedules {
		assert.Equal(t, wantContent[i], rec.ContentID, "record %d", i)
		assert.Equal(t, FormatDate(date(2024, time.January, 1+i)), rec.ScheduledDate, "record %d", i)
		assert.True(t, rec.BulkScheduled, "record %d", i)
		require.NotNil(t, rec.RecurringType, "record %d", i)
		assert.Equal(t, "daily", *rec.RecurringType, "record %d", i)
	}

	// Bulk runs record a single range-level audit entry.
	require.Len(t, st.activity, 1)
	assert.Equal(t, store.ActivityActionBulkScheduled, st.activity[0].Action)
	assert.Equal(t, "2024-01-01 - 2024-01-05", st.activity[0].DateRange)
	assert.Equal(t, 5, st.activity[0].ScheduledCount)
}

func TestBulkScheduleProgress(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"))
	svc := NewService(st)

	var completed []int
	_, err := svc.BulkSchedule(ctx, testActor(), &BulkScheduleRequest{
		ContentType: store.ContentTypeQuote,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.January, 3),
		Recurrence:  RecurrenceDaily,
	}, func(done, total int) {
		assert.Equal(t, 3, total)
		completed = append(completed, done)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, completed)
}

func TestBulkScheduleValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockStore(quoteItem("q1", "Quote One")))

	var validationErr *ValidationError

	// Bulk without a recurrence rule is meaningless.
	_, err := svc.BulkSchedule(ctx, testActor(), &BulkScheduleRequest{
		ContentType: store.ContentTypeQuote,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.January, 5),
		Recurrence:  RecurrenceNone,
	}, nil)
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.BulkSchedule(ctx, testActor(), &BulkScheduleRequest{
		ContentType: store.ContentTypeQuote,
		Start:       date(2024, time.January, 5),
		End:         date(2024, time.January, 1),
		Recurrence:  RecurrenceDaily,
	}, nil)
	require.ErrorAs(t, err, &validationErr)

	// Empty pool for the requested type.
	_, err = svc.BulkSchedule(ctx, testActor(), &BulkScheduleRequest{
		ContentType: store.ContentTypeDevotional,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.January, 5),
		Recurrence:  RecurrenceDaily,
	}, nil)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "no items in pool", validationErr.Msg)
}

func TestBulkSchedulePartialFailure(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"))
	st.failCreateAt = 3
	svc := NewService(st)

	_, err := svc.BulkSchedule(ctx, testActor(), &BulkScheduleRequest{
		ContentType: store.ContentTypeQuote,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.January, 5),
		Recurrence:  RecurrenceDaily,
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, 2, storageErr.Written)
	assert.Equal(t, 5, storageErr.Total)
	assert.Contains(t, storageErr.Error(), "2 of 5 scheduled")

	// The two successful writes stay; remediation is manual.
	assert.Len(t, st.schedules, 2)
}

func TestFindScheduledRange(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"))
	svc := NewService(st)

	_, err := svc.BulkSchedule(ctx, testActor(), &BulkScheduleRequest{
		ContentType: store.ContentTypeQuote,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.January, 10),
		Recurrence:  RecurrenceDaily,
	}, nil)
	require.NoError(t, err)

	list, err := svc.FindScheduled(ctx, store.ContentTypeQuote, date(2024, time.January, 3), date(2024, time.January, 5))
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-01-03", list[0].ScheduledDate)
	assert.Equal(t, "2024-01-05", list[2].ScheduledDate)

	// Cancelled assignments vanish from the calendar.
	require.NoError(t, svc.Cancel(ctx, testActor(), list[1].ID))
	list, err = svc.FindScheduled(ctx, store.ContentTypeQuote, date(2024, time.January, 3), date(2024, time.January, 5))
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestLifecycleOperations(t *testing.T) {
	ctx := context.Background()
	st := newMockStore(quoteItem("q1", "Quote One"))
	svc := NewService(st)

	_, err := svc.Schedule(ctx, testActor(), &ScheduleRequest{
		ContentType: store.ContentTypeQuote,
		ItemIDs:     []string{"q1"},
		Start:       date(2024, time.January, 1),
	})
	require.NoError(t, err)
	id := st.schedules[0].ID

	published, err := svc.MarkPublished(ctx, testActor(), id)
	require.NoError(t, err)
	assert.Equal(t, store.ScheduleStatusPublished, published.Status)

	// Publishing twice is rejected.
	var validationErr *ValidationError
	_, err = svc.MarkPublished(ctx, testActor(), id)
	assert.ErrorAs(t, err, &validationErr)

	reverted, err := svc.MarkScheduled(ctx, testActor(), id)
	require.NoError(t, err)
	assert.Equal(t, store.ScheduleStatusScheduled, reverted.Status)

	require.NoError(t, svc.Cancel(ctx, testActor(), id))
	assert.Equal(t, store.ScheduleStatusCancelled, st.schedules[0].Status)

	// Cancelled is terminal.
	_, err = svc.MarkPublished(ctx, testActor(), id)
	assert.ErrorAs(t, err, &validationErr)

	// Unknown id.
	_, err = svc.MarkPublished(ctx, testActor(), "nope_2024-01-01_0")
	assert.ErrorIs(t, err, ErrNotFound)

	// scheduled, published x2 (one rejected does not log), reverted, cancelled
	actions := make([]string, 0, len(st.activity))
	for _, a := range st.activity {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{
		store.ActivityActionScheduled,
		store.ActivityActionStatusChanged,
		store.ActivityActionStatusChanged,
		store.ActivityActionCancelled,
	}, actions)
}
