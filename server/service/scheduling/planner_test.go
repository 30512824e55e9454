package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oratio/oratio/store"
)

func poolOf(ids ...string) []*store.ContentItem {
	items := make([]*store.ContentItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, &store.ContentItem{
			ID:    id,
			Type:  store.ContentTypeQuote,
			Title: "title-" + id,
		})
	}
	return items
}

func TestPlanWrappedModulo(t *testing.T) {
	items := poolOf("a", "b", "c")
	dates := Sequence(date(2024, time.January, 1), RecurrenceDaily, CountBound(7))

	assignments, repeated, err := PlanWrapped(items, dates, false)
	require.NoError(t, err)
	require.Len(t, assignments, 7)
	assert.True(t, repeated)

	// Item i%3 lands on date i, wrapping around the pool.
	wantIDs := []string{"a", "b", "c", "a", "b", "c", "a"}
	for i, a := range assignments {
		assert.Equal(t, wantIDs[i], a.Item.ID, "assignment %d", i)
		assert.Equal(t, dates[i], a.Date)
		assert.Equal(t, i, a.RecurringIndex)
	}
}

func TestPlanWrappedNoRepeat(t *testing.T) {
	items := poolOf("a", "b", "c")
	dates := Sequence(date(2024, time.January, 1), RecurrenceDaily, CountBound(3))

	assignments, repeated, err := PlanWrapped(items, dates, false)
	require.NoError(t, err)
	assert.Len(t, assignments, 3)
	assert.False(t, repeated)
}

func TestPlanWrappedEmpty(t *testing.T) {
	// No dates: nothing to assign, not an error.
	assignments, repeated, err := PlanWrapped(poolOf("a"), nil, false)
	require.NoError(t, err)
	assert.Empty(t, assignments)
	assert.False(t, repeated)

	// No items with dates pending is an error.
	_, _, err = PlanWrapped(nil, []time.Time{date(2024, time.January, 1)}, false)
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestPlanWrappedRandomize(t *testing.T) {
	items := poolOf("a", "b", "c", "d", "e")
	dates := Sequence(date(2024, time.January, 1), RecurrenceDaily, CountBound(5))

	assignments, _, err := PlanWrapped(items, dates, true)
	require.NoError(t, err)
	require.Len(t, assignments, 5)

	// The shuffle must be a permutation: every item used exactly once.
	used := make(map[string]int)
	for _, a := range assignments {
		used[a.Item.ID]++
	}
	for _, item := range items {
		assert.Equal(t, 1, used[item.ID], "item %s", item.ID)
	}

	// The caller's pool must not be reordered in place.
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, func() []string {
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		return ids
	}())
}

func TestPlanCrossProduct(t *testing.T) {
	items := poolOf("a", "b")
	dates := Sequence(date(2024, time.January, 1), RecurrenceWeekly, CountBound(3))

	assignments, err := PlanCrossProduct(items, dates)
	require.NoError(t, err)
	require.Len(t, assignments, 6)

	// Date-major ordering, RecurringIndex tracking the date index.
	for i, a := range assignments {
		dateIdx := i / len(items)
		assert.Equal(t, dates[dateIdx], a.Date, "assignment %d", i)
		assert.Equal(t, dateIdx, a.RecurringIndex, "assignment %d", i)
		assert.Equal(t, items[i%len(items)].ID, a.Item.ID, "assignment %d", i)
	}
}

func TestPlanCrossProductEmpty(t *testing.T) {
	assignments, err := PlanCrossProduct(poolOf("a"), nil)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	_, err = PlanCrossProduct(nil, []time.Time{date(2024, time.January, 1)})
	assert.ErrorIs(t, err, ErrEmptyPool)
}
