package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/oratio/oratio/store"
)

// BenchmarkFindConflicts_Clear benchmarks conflict detection over an empty
// schedule.
func BenchmarkFindConflicts_Clear(b *testing.B) {
	ctx := context.Background()
	checker := NewConflictChecker(newMockStore())
	dates := Sequence(date(2024, time.January, 1), RecurrenceDaily, CountBound(30))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = checker.FindConflicts(ctx, store.ContentTypeQuote, dates)
	}
}

// BenchmarkFindConflicts_ManySchedules benchmarks conflict detection against
// a year of existing assignments.
func BenchmarkFindConflicts_ManySchedules(b *testing.B) {
	ctx := context.Background()
	st := newMockStore()
	day := date(2024, time.January, 1)
	for i := 0; i < 365; i++ {
		iso := FormatDate(day.AddDate(0, 0, i))
		st.schedules = append(st.schedules, &store.ScheduledContent{
			ID:            store.NewScheduleID(fmt.Sprintf("c%d", i), iso, time.Now()),
			ContentID:     fmt.Sprintf("c%d", i),
			ContentType:   store.ContentTypeQuote,
			ScheduledDate: iso,
			Status:        store.ScheduleStatusScheduled,
		})
	}
	checker := NewConflictChecker(st)

	// A window in the middle of the occupied year.
	dates := Sequence(date(2024, time.June, 1), RecurrenceDaily, CountBound(30))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = checker.FindConflicts(ctx, store.ContentTypeQuote, dates)
	}
}

// BenchmarkBulkSchedule benchmarks a full bulk run: pool load, conflict
// sweep, planning and writes for a 30-day range.
func BenchmarkBulkSchedule(b *testing.B) {
	ctx := context.Background()
	items := make([]*store.ContentItem, 0, 20)
	for i := 0; i < 20; i++ {
		items = append(items, quoteItem(fmt.Sprintf("q%d", i), fmt.Sprintf("Quote %d", i)))
	}
	st := newMockStore(items...)
	svc := NewService(st)
	req := &BulkScheduleRequest{
		ContentType: store.ContentTypeQuote,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.January, 30),
		Recurrence:  RecurrenceDaily,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st.schedules = st.schedules[:0]
		if _, err := svc.BulkSchedule(ctx, testActor(), req, nil); err != nil {
			b.Fatal(err)
		}
	}
}
