// Package scheduling implements the content scheduling engine: assigning
// reusable content items (devotionals, quotes) to future calendar dates.
//
// Key behaviors:
//   - Recurring date expansion (daily/weekly/monthly, count- or until-bounded)
//   - Conflict detection against persisted assignments, all-or-nothing
//   - Deterministic or shuffled assignment of a finite pool across dates
//   - Operator-driven lifecycle transitions (no automatic publishing)
//
// Atomicity is application-level: the conflict check and the subsequent
// batch of creates are not wrapped in a storage transaction, so two
// operators racing on overlapping dates can both pass the check and both
// write. This race is accepted and documented; see the schema comment on
// the disabled unique index for the hardening option.
package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oratio/oratio/internal/util"
	"github.com/oratio/oratio/server/internal/observability"
	"github.com/oratio/oratio/store"
)

// Metric operation names.
const (
	opSchedule     = "schedule"
	opBulkSchedule = "bulk_schedule"
	opTransition   = "transition"
)

type service struct {
	store     Store
	conflicts *ConflictChecker
}

// NewService creates a new scheduling service.
func NewService(st Store) Service {
	return &service{
		store:     st,
		conflicts: NewConflictChecker(st),
	}
}

// Schedule implements the single/recurring workflow: every selected item is
// paired with every generated date, and nothing is written unless all dates
// are free.
func (s *service) Schedule(ctx context.Context, actor Actor, req *ScheduleRequest) (result *ScheduleResult, err error) {
	start := time.Now()
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest(opSchedule)
	defer func() {
		metrics.RecordDuration(opSchedule, time.Since(start))
		if err != nil {
			metrics.RecordFailure(opSchedule)
		}
		slog.Debug("schedule operation",
			"content_type", req.ContentType,
			"items", len(req.ItemIDs),
			"recurrence", req.Recurrence,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	if len(req.ItemIDs) == 0 {
		return nil, validationErrorf("no items selected")
	}
	if !req.Recurrence.Valid() {
		return nil, validationErrorf("unsupported recurrence rule: %q", req.Recurrence)
	}

	count := req.Count
	if count == 0 {
		count = DefaultOccurrences
	}
	if req.Recurrence == RecurrenceNone {
		count = 1
	}
	if count < 1 || count > MaxOccurrences {
		return nil, validationErrorf("occurrence count must be between 1 and %d", MaxOccurrences)
	}

	items, err := s.resolveItems(ctx, req.ContentType, req.ItemIDs)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, validationErrorf("no items selected")
	}

	dates := Sequence(req.Start, req.Recurrence, CountBound(count))

	conflicts, err := s.conflicts.FindConflicts(ctx, req.ContentType, dates)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{ContentType: req.ContentType, Dates: conflicts}
	}

	assignments, err := PlanCrossProduct(items, dates)
	if err != nil {
		return nil, err
	}

	var recurringType *string
	if req.Recurrence != RecurrenceNone {
		tag := req.Recurrence.String()
		recurringType = &tag
	}

	for written, a := range assignments {
		record := newRecord(req.ContentType, a, recurringType, false)
		if _, err := s.store.CreateScheduledContent(ctx, record); err != nil {
			return nil, &StorageError{Op: "schedule", Written: written, Total: len(assignments), Err: err}
		}

		s.logActivity(ctx, &store.Activity{
			ID:            util.GenShortUUID(),
			ActorName:     actor.Name,
			ActorEmail:    actor.Email,
			Action:        store.ActivityActionScheduled,
			ContentType:   req.ContentType,
			ContentTitle:  a.Item.Title,
			ScheduledDate: record.ScheduledDate,
		})
	}

	isoDates := make([]string, len(dates))
	for i, d := range dates {
		isoDates[i] = FormatDate(d)
	}

	metrics.RecordWritten(opSchedule, len(assignments))
	slog.Info("content scheduled",
		"content_type", req.ContentType,
		"records", len(assignments),
		"dates", len(dates),
		"actor", actor.Email,
	)

	return &ScheduleResult{Created: len(assignments), Dates: isoDates}, nil
}

// BulkSchedule implements the bulk workflow: the whole filtered pool is
// spread across an until-bounded date sequence, one write at a time, with
// progress reported after each write.
func (s *service) BulkSchedule(ctx context.Context, actor Actor, req *BulkScheduleRequest, progress ProgressFunc) (result *BulkScheduleResult, err error) {
	start := time.Now()
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest(opBulkSchedule)
	defer func() {
		metrics.RecordDuration(opBulkSchedule, time.Since(start))
		if err != nil {
			metrics.RecordFailure(opBulkSchedule)
		}
		slog.Debug("bulk schedule operation",
			"content_type", req.ContentType,
			"recurrence", req.Recurrence,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	if req.Recurrence == RecurrenceNone || !req.Recurrence.Valid() {
		return nil, validationErrorf("bulk scheduling requires a daily, weekly or monthly recurrence rule")
	}
	if normalizeDate(req.End).Before(normalizeDate(req.Start)) {
		return nil, validationErrorf("end date %s is before start date %s", FormatDate(req.End), FormatDate(req.Start))
	}

	pool, err := s.store.ListContentPool(ctx, req.ContentType, req.Status)
	if err != nil {
		return nil, &StorageError{Op: "load pool", Err: err}
	}
	if len(pool) == 0 {
		return nil, validationErrorf("no items in pool")
	}

	dates := Sequence(req.Start, req.Recurrence, UntilBound(req.End))

	conflicts, err := s.conflicts.FindConflicts(ctx, req.ContentType, dates)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{ContentType: req.ContentType, Dates: conflicts}
	}

	assignments, repeated, err := PlanWrapped(pool, dates, req.Randomize)
	if err != nil {
		return nil, err
	}
	if repeated {
		slog.Warn("date count exceeds pool size, items will repeat",
			"content_type", req.ContentType,
			"pool", len(pool),
			"dates", len(dates),
		)
	}

	tag := req.Recurrence.String()
	for written, a := range assignments {
		record := newRecord(req.ContentType, a, &tag, true)
		if _, err := s.store.CreateScheduledContent(ctx, record); err != nil {
			return nil, &StorageError{Op: "bulk schedule", Written: written, Total: len(assignments), Err: err}
		}
		if progress != nil {
			progress(written+1, len(assignments))
		}
	}

	s.logActivity(ctx, &store.Activity{
		ID:             util.GenShortUUID(),
		ActorName:      actor.Name,
		ActorEmail:     actor.Email,
		Action:         store.ActivityActionBulkScheduled,
		ContentType:    req.ContentType,
		DateRange:      fmt.Sprintf("%s - %s", FormatDate(req.Start), FormatDate(req.End)),
		ScheduledCount: len(assignments),
	})

	metrics.RecordWritten(opBulkSchedule, len(assignments))
	slog.Info("bulk schedule completed",
		"content_type", req.ContentType,
		"records", len(assignments),
		"pool", len(pool),
		"repeated", repeated,
		"actor", actor.Email,
	)

	return &BulkScheduleResult{
		Created:   len(assignments),
		PoolSize:  len(pool),
		DateCount: len(dates),
		Repeated:  repeated,
	}, nil
}

// FindScheduled returns active assignments within an inclusive date range,
// ascending by date, for the calendar view.
func (s *service) FindScheduled(ctx context.Context, contentType store.ContentType, start, end time.Time) ([]*store.ScheduledContent, error) {
	startIso := FormatDate(normalizeDate(start))
	endIso := FormatDate(normalizeDate(end))
	find := &store.FindScheduledContent{
		ContentType:        &contentType,
		ScheduledDateStart: &startIso,
		ScheduledDateEnd:   &endIso,
		ExcludeCancelled:   true,
	}
	list, err := s.store.ListScheduledContent(ctx, find)
	if err != nil {
		return nil, &StorageError{Op: "list scheduled", Err: err}
	}
	return list, nil
}

func (s *service) MarkPublished(ctx context.Context, actor Actor, id string) (*store.ScheduledContent, error) {
	return s.transition(ctx, actor, id, ActionMarkPublished)
}

func (s *service) MarkScheduled(ctx context.Context, actor Actor, id string) (*store.ScheduledContent, error) {
	return s.transition(ctx, actor, id, ActionMarkScheduled)
}

// Cancel soft-cancels an assignment. The record stays for audit history but
// stops occupying its date: conflict checks and the calendar both skip
// cancelled assignments.
func (s *service) Cancel(ctx context.Context, actor Actor, id string) error {
	_, err := s.transition(ctx, actor, id, ActionCancel)
	return err
}

func (s *service) transition(ctx context.Context, actor Actor, id string, action LifecycleAction) (updated *store.ScheduledContent, err error) {
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest(opTransition)
	defer func() {
		if err != nil {
			metrics.RecordFailure(opTransition)
		}
	}()

	existing, err := s.store.GetScheduledContent(ctx, &store.FindScheduledContent{ID: &id})
	if err != nil {
		return nil, &StorageError{Op: "get scheduled", Err: err}
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	next, err := Transition(existing.Status, action)
	if err != nil {
		return nil, validationErrorf("%s", err.Error())
	}

	update := &store.UpdateScheduledContent{ID: id, Status: &next}
	if err := s.store.UpdateScheduledContent(ctx, update); err != nil {
		return nil, &StorageError{Op: "update status", Err: err}
	}
	existing.Status = next

	activityAction := store.ActivityActionStatusChanged
	if action == ActionCancel {
		activityAction = store.ActivityActionCancelled
	}
	s.logActivity(ctx, &store.Activity{
		ID:            util.GenShortUUID(),
		ActorName:     actor.Name,
		ActorEmail:    actor.Email,
		Action:        activityAction,
		ContentType:   existing.ContentType,
		ContentTitle:  existing.Title,
		ScheduledDate: existing.ScheduledDate,
	})

	return existing, nil
}

// resolveItems loads the selected items one by one, skipping ids that no
// longer exist. The original console silently dropped missing selections;
// here they are at least logged.
func (s *service) resolveItems(ctx context.Context, contentType store.ContentType, ids []string) ([]*store.ContentItem, error) {
	items := make([]*store.ContentItem, 0, len(ids))
	for _, id := range ids {
		id := id
		item, err := s.store.GetContentItem(ctx, &store.FindContentItem{ID: &id, Type: &contentType})
		if err != nil {
			return nil, &StorageError{Op: "load items", Err: err}
		}
		if item == nil {
			slog.Warn("selected item not found, skipping", "content_type", contentType, "id", id)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// newRecord snapshots an assignment into a schedule record. Display fields
// are copied at schedule time on purpose: the schedule shows content as it
// was when scheduled, even if the source item is edited later.
func newRecord(contentType store.ContentType, a Assignment, recurringType *string, bulk bool) *store.ScheduledContent {
	iso := FormatDate(a.Date)
	return &store.ScheduledContent{
		ID:             store.NewScheduleID(a.Item.ID, iso, time.Now()),
		ContentID:      a.Item.ID,
		ContentType:    contentType,
		Title:          a.Item.Title,
		Author:         a.Item.Author,
		Verse:          a.Item.Verse,
		ScheduledDate:  iso,
		Status:         store.ScheduleStatusScheduled,
		RecurringType:  recurringType,
		RecurringIndex: a.RecurringIndex,
		BulkScheduled:  bulk,
	}
}

// logActivity writes an audit entry. Audit is best-effort: a failed write is
// logged but never fails the scheduling operation that produced it.
func (s *service) logActivity(ctx context.Context, activity *store.Activity) {
	if _, err := s.store.CreateActivity(ctx, activity); err != nil {
		slog.Warn("failed to record activity",
			"action", activity.Action,
			"content_type", activity.ContentType,
			"error", err,
		)
	}
}
