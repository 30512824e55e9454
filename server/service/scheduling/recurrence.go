package scheduling

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Recurrence is the closed set of recurrence rules a scheduler may request.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) String() string {
	return string(r)
}

// Valid reports whether r is one of the known rules.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// ParseRecurrence parses a recurrence rule tag. The empty string means none.
func ParseRecurrence(s string) (Recurrence, error) {
	if s == "" {
		return RecurrenceNone, nil
	}
	r := Recurrence(s)
	if !r.Valid() {
		return "", errors.Errorf("unsupported recurrence rule: %q", s)
	}
	return r, nil
}

// Bound limits a generated date sequence, either by occurrence count or by an
// inclusive end date.
type Bound struct {
	count    int
	until    time.Time
	hasUntil bool
}

// CountBound generates exactly n dates regardless of calendar distance.
func CountBound(n int) Bound {
	return Bound{count: n}
}

// UntilBound generates dates while they do not pass end (inclusive).
func UntilBound(end time.Time) Bound {
	return Bound{until: normalizeDate(end), hasUntil: true}
}

// maxSequenceDates caps until-bounded generation so a degenerate range cannot
// produce an unbounded sequence. Count-bounded requests are validated by the
// service before they reach here.
const maxSequenceDates = 1000

// Sequence produces an ordered, ascending sequence of calendar dates from a
// start date, a recurrence rule and a bound. The start date is always the
// first element of a non-empty result. Pure and deterministic.
//
// Monthly stepping uses time.AddDate, which normalizes day-of-month overflow
// forward (Jan 31 plus one month lands in early March). See the tests for
// the documented behavior.
func Sequence(start time.Time, rule Recurrence, bound Bound) []time.Time {
	start = normalizeDate(start)

	if bound.hasUntil {
		if bound.until.Before(start) {
			return []time.Time{}
		}

		dates := []time.Time{}
		for i := 0; ; i++ {
			if i == maxSequenceDates {
				slog.Warn("date sequence truncated",
					"rule", rule.String(),
					"start", FormatDate(start),
					"end", FormatDate(bound.until),
					"max", maxSequenceDates,
				)
				break
			}
			d := advance(start, rule, i)
			if d.After(bound.until) {
				break
			}
			dates = append(dates, d)
			if rule == RecurrenceNone {
				break
			}
		}
		return dates
	}

	if bound.count < 1 {
		return []time.Time{}
	}
	if rule == RecurrenceNone {
		return []time.Time{start}
	}

	dates := make([]time.Time, 0, bound.count)
	for i := 0; i < bound.count; i++ {
		dates = append(dates, advance(start, rule, i))
	}
	return dates
}

// advance returns the i-th occurrence for a rule, stepping from the start
// date rather than cumulatively, so monthly sequences do not drift after a
// normalized overflow.
func advance(start time.Time, rule Recurrence, i int) time.Time {
	switch rule {
	case RecurrenceDaily:
		return start.AddDate(0, 0, i)
	case RecurrenceWeekly:
		return start.AddDate(0, 0, 7*i)
	case RecurrenceMonthly:
		return start.AddDate(0, i, 0)
	default:
		return start
	}
}

// normalizeDate truncates a time to its calendar date at midnight UTC.
// Time-of-day is not modeled anywhere in the scheduler.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date in the stable YYYY-MM-DD storage format.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return t, nil
}
