package scheduling

import (
	"math/rand"
	"time"

	"github.com/oratio/oratio/store"
)

// Assignment pairs a content item with a target date. RecurringIndex is the
// 0-based index of the date within the generated sequence, kept for
// audit/display.
type Assignment struct {
	Item           *store.ContentItem
	Date           time.Time
	RecurringIndex int
}

// PlanWrapped maps an ordered item pool onto an ordered date sequence, one
// item per date, wrapping around the pool when dates outnumber items. The
// returned bool reports whether wrapping happened; deliberate repetition is
// expected behavior, not an error, and callers surface it as a warning.
//
// When randomize is set the pool is shuffled once before assignment.
// Reproducibility is not required.
func PlanWrapped(items []*store.ContentItem, dates []time.Time, randomize bool) ([]Assignment, bool, error) {
	if len(dates) == 0 {
		return []Assignment{}, false, nil
	}
	if len(items) == 0 {
		return nil, false, ErrEmptyPool
	}

	pool := items
	if randomize {
		pool = make([]*store.ContentItem, len(items))
		copy(pool, items)
		rand.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}

	assignments := make([]Assignment, 0, len(dates))
	for i, date := range dates {
		assignments = append(assignments, Assignment{
			Item:           pool[i%len(pool)],
			Date:           date,
			RecurringIndex: i,
		})
	}

	return assignments, len(dates) > len(items), nil
}

// PlanCrossProduct pairs every item with every date, ordered date-major
// (date, then item within date). Used by the single/recurring flow, where a
// small selected subset repeats on each occurrence.
func PlanCrossProduct(items []*store.ContentItem, dates []time.Time) ([]Assignment, error) {
	if len(dates) == 0 {
		return []Assignment{}, nil
	}
	if len(items) == 0 {
		return nil, ErrEmptyPool
	}

	assignments := make([]Assignment, 0, len(items)*len(dates))
	for i, date := range dates {
		for _, item := range items {
			assignments = append(assignments, Assignment{
				Item:           item,
				Date:           date,
				RecurringIndex: i,
			})
		}
	}

	return assignments, nil
}
