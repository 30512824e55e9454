package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oratio/oratio/server/service/scheduling"
	"github.com/oratio/oratio/store"
)

// CreateScheduleRequest is the single/recurring schedule request body.
type CreateScheduleRequest struct {
	ContentType string   `json:"contentType"`
	ItemIDs     []string `json:"itemIds"`
	// StartDate is a YYYY-MM-DD date.
	StartDate string `json:"startDate"`
	// Recurrence is none/daily/weekly/monthly; empty means none.
	Recurrence string `json:"recurrence"`
	Count      int    `json:"count"`
}

// BulkScheduleRequest is the bulk schedule request body.
type BulkScheduleRequest struct {
	ContentType string `json:"contentType"`
	// Status filters the pool (draft/published); empty means every item.
	Status    string `json:"status"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	// Recurrence must be daily, weekly or monthly.
	Recurrence string `json:"recurrence"`
	Randomize  bool   `json:"randomize"`
}

// ScheduleResponse is the JSON shape of one schedule assignment.
type ScheduleResponse struct {
	ID             string  `json:"id"`
	ContentID      string  `json:"contentId"`
	ContentType    string  `json:"contentType"`
	Title          string  `json:"title"`
	Author         string  `json:"author,omitempty"`
	Verse          string  `json:"verse,omitempty"`
	ScheduledDate  string  `json:"scheduledDate"`
	Status         string  `json:"status"`
	RecurringType  *string `json:"recurringType,omitempty"`
	RecurringIndex int     `json:"recurringIndex"`
	BulkScheduled  bool    `json:"bulkScheduled"`
	CreatedTs      int64   `json:"createdTs"`
}

func toScheduleResponse(sc *store.ScheduledContent) *ScheduleResponse {
	return &ScheduleResponse{
		ID:             sc.ID,
		ContentID:      sc.ContentID,
		ContentType:    sc.ContentType.String(),
		Title:          sc.Title,
		Author:         sc.Author,
		Verse:          sc.Verse,
		ScheduledDate:  sc.ScheduledDate,
		Status:         sc.Status.String(),
		RecurringType:  sc.RecurringType,
		RecurringIndex: sc.RecurringIndex,
		BulkScheduled:  sc.BulkScheduled,
		CreatedTs:      sc.CreatedTs,
	}
}

// CreateSchedule assigns selected items to a start date, optionally expanded
// by a recurrence rule.
// POST /api/v1/schedules
func (s *APIV1Service) CreateSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	var body CreateScheduleRequest
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}

	contentType, ok := parseContentType(body.ContentType)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "contentType must be devotional or quote")
	}
	start, err := scheduling.ParseDate(body.StartDate)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
	}
	recurrence, err := scheduling.ParseRecurrence(body.Recurrence)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	result, err := s.Scheduler.Schedule(ctx, actorFrom(c), &scheduling.ScheduleRequest{
		ContentType: contentType,
		ItemIDs:     body.ItemIDs,
		Start:       start,
		Recurrence:  recurrence,
		Count:       body.Count,
	})
	if err != nil {
		return schedulingError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// BulkSchedule spreads an entire filtered pool across a date range. Only one
// bulk run may be in flight at a time.
// POST /api/v1/schedules/bulk
func (s *APIV1Service) BulkSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	var body BulkScheduleRequest
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}

	contentType, ok := parseContentType(body.ContentType)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "contentType must be devotional or quote")
	}
	var status *store.ContentStatus
	if body.Status != "" {
		st := store.ContentStatus(body.Status)
		if st != store.ContentStatusDraft && st != store.ContentStatusPublished {
			return errorJSON(c, http.StatusBadRequest, "status must be draft or published")
		}
		status = &st
	}
	start, err := scheduling.ParseDate(body.StartDate)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
	}
	end, err := scheduling.ParseDate(body.EndDate)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
	}
	recurrence, err := scheduling.ParseRecurrence(body.Recurrence)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	if !s.bulkSemaphore.TryAcquire(1) {
		return errorJSON(c, http.StatusTooManyRequests, "another bulk run is in progress")
	}
	defer s.bulkSemaphore.Release(1)

	result, err := s.Scheduler.BulkSchedule(ctx, actorFrom(c), &scheduling.BulkScheduleRequest{
		ContentType: contentType,
		Status:      status,
		Start:       start,
		End:         end,
		Recurrence:  recurrence,
		Randomize:   body.Randomize,
	}, func(completed, total int) {
		slog.Debug("bulk schedule progress", "completed", completed, "total", total)
	})
	if err != nil {
		return schedulingError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// ListSchedules lists assignments in a date range, optionally filtered by
// status. Without a status filter, cancelled assignments are omitted.
// GET /api/v1/schedules?type=quote&start=2024-01-01&end=2024-01-31&status=scheduled
func (s *APIV1Service) ListSchedules(c echo.Context) error {
	ctx := c.Request().Context()

	contentType, ok := parseContentType(c.QueryParam("type"))
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "type must be devotional or quote")
	}

	find := &store.FindScheduledContent{ContentType: &contentType}
	if raw := c.QueryParam("start"); raw != "" {
		if _, err := scheduling.ParseDate(raw); err != nil {
			return errorJSON(c, http.StatusBadRequest, "start must be YYYY-MM-DD")
		}
		start := raw
		find.ScheduledDateStart = &start
	}
	if raw := c.QueryParam("end"); raw != "" {
		if _, err := scheduling.ParseDate(raw); err != nil {
			return errorJSON(c, http.StatusBadRequest, "end must be YYYY-MM-DD")
		}
		end := raw
		find.ScheduledDateEnd = &end
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := store.ScheduleStatus(raw)
		switch status {
		case store.ScheduleStatusScheduled, store.ScheduleStatusPublished, store.ScheduleStatusCancelled:
			find.Status = &status
		default:
			return errorJSON(c, http.StatusBadRequest, "status must be scheduled, published or cancelled")
		}
	} else {
		find.ExcludeCancelled = true
	}

	list, err := s.Store.ListScheduledContent(ctx, find)
	if err != nil {
		return schedulingError(c, err)
	}

	response := make([]*ScheduleResponse, 0, len(list))
	for _, sc := range list {
		response = append(response, toScheduleResponse(sc))
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateScheduleStatusRequest is the status transition request body.
type UpdateScheduleStatusRequest struct {
	Status string `json:"status"`
}

// UpdateScheduleStatus transitions an assignment between scheduled and
// published. Cancellation has its own endpoint.
// PATCH /api/v1/schedules/:id/status
func (s *APIV1Service) UpdateScheduleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var body UpdateScheduleStatusRequest
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}

	var (
		updated *store.ScheduledContent
		err     error
	)
	switch store.ScheduleStatus(body.Status) {
	case store.ScheduleStatusPublished:
		updated, err = s.Scheduler.MarkPublished(ctx, actorFrom(c), id)
	case store.ScheduleStatusScheduled:
		updated, err = s.Scheduler.MarkScheduled(ctx, actorFrom(c), id)
	default:
		return errorJSON(c, http.StatusBadRequest, "status must be scheduled or published")
	}
	if err != nil {
		return schedulingError(c, err)
	}

	return c.JSON(http.StatusOK, toScheduleResponse(updated))
}

// CancelSchedule soft-cancels an assignment, freeing its date.
// POST /api/v1/schedules/:id/cancel
func (s *APIV1Service) CancelSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	if err := s.Scheduler.Cancel(ctx, actorFrom(c), c.Param("id")); err != nil {
		return schedulingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ActivityResponse is the JSON shape of one audit entry.
type ActivityResponse struct {
	ID             string `json:"id"`
	ActorName      string `json:"actorName"`
	ActorEmail     string `json:"actorEmail,omitempty"`
	Action         string `json:"action"`
	ContentType    string `json:"contentType"`
	ContentTitle   string `json:"contentTitle,omitempty"`
	ScheduledDate  string `json:"scheduledDate,omitempty"`
	DateRange      string `json:"dateRange,omitempty"`
	ScheduledCount int    `json:"scheduledCount,omitempty"`
	CreatedTs      int64  `json:"createdTs"`
}

// ListActivities lists audit entries, newest first.
// GET /api/v1/activities?limit=50
func (s *APIV1Service) ListActivities(c echo.Context) error {
	ctx := c.Request().Context()

	find := &store.FindActivity{}
	if raw := c.QueryParam("action"); raw != "" {
		action := raw
		find.Action = &action
	}
	if contentType, ok := parseContentType(c.QueryParam("type")); ok {
		find.ContentType = &contentType
	}
	limit := 50
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil || limit < 1 {
		return errorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
	}
	find.Limit = &limit

	list, err := s.Store.ListActivities(ctx, find)
	if err != nil {
		return schedulingError(c, err)
	}

	response := make([]*ActivityResponse, 0, len(list))
	for _, a := range list {
		response = append(response, &ActivityResponse{
			ID:             a.ID,
			ActorName:      a.ActorName,
			ActorEmail:     a.ActorEmail,
			Action:         a.Action,
			ContentType:    a.ContentType.String(),
			ContentTitle:   a.ContentTitle,
			ScheduledDate:  a.ScheduledDate,
			DateRange:      a.DateRange,
			ScheduledCount: a.ScheduledCount,
			CreatedTs:      a.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// schedulingError maps service errors onto HTTP responses. Conflicts carry
// the full date list so the console can show which days are taken.
func schedulingError(c echo.Context, err error) error {
	var validationErr *scheduling.ValidationError
	if errors.As(err, &validationErr) {
		return errorJSON(c, http.StatusBadRequest, validationErr.Msg)
	}

	var conflictErr *scheduling.ConflictError
	if errors.As(err, &conflictErr) {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":       conflictErr.Error(),
			"contentType": conflictErr.ContentType.String(),
			"conflicts":   conflictErr.Dates,
		})
	}

	if errors.Is(err, scheduling.ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, "schedule not found")
	}

	if errors.Is(err, scheduling.ErrStorageUnavailable) {
		slog.Error("scheduling storage failure", "error", err)
		return errorJSON(c, http.StatusServiceUnavailable, err.Error())
	}

	slog.Error("scheduling request failed", "error", err)
	return errorJSON(c, http.StatusInternalServerError, "internal error")
}
