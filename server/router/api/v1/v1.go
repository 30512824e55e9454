package v1

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/oratio/oratio/internal/profile"
	"github.com/oratio/oratio/server/service/scheduling"
	"github.com/oratio/oratio/store"
)

// APIV1Service wires the JSON API over the scheduling service and the store.
// The API is meant for the admin console behind a trusted proxy; the acting
// operator comes from headers, not from a session.
type APIV1Service struct {
	Profile   *profile.Profile
	Store     *store.Store
	Scheduler scheduling.Service

	// bulkSemaphore limits concurrent bulk runs. A bulk run writes one
	// record per date sequentially; letting several interleave just
	// multiplies conflict-check races for no benefit.
	bulkSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, st *store.Store) *APIV1Service {
	return &APIV1Service{
		Profile:       profile,
		Store:         st,
		Scheduler:     scheduling.NewService(st),
		bulkSemaphore: semaphore.NewWeighted(1),
	}
}

// RegisterRoutes registers all API v1 routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1")

	g.GET("/contents", s.ListContents)
	g.POST("/contents", s.CreateContent)

	g.POST("/schedules", s.CreateSchedule)
	g.POST("/schedules/bulk", s.BulkSchedule)
	g.GET("/schedules", s.ListSchedules)
	g.GET("/schedules/feed", s.ScheduleFeed)
	g.PATCH("/schedules/:id/status", s.UpdateScheduleStatus)
	g.POST("/schedules/:id/cancel", s.CancelSchedule)

	g.GET("/activities", s.ListActivities)

	g.GET("/system/metrics/overview", s.GetMetricsOverview)
}

// actorFrom extracts the acting operator from request headers. The admin
// console always sends them; a bare curl gets attributed to "admin".
func actorFrom(c echo.Context) scheduling.Actor {
	actor := scheduling.Actor{
		Name:  c.Request().Header.Get("X-Actor-Name"),
		Email: c.Request().Header.Get("X-Actor-Email"),
	}
	if actor.Name == "" {
		actor.Name = "admin"
	}
	return actor
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

func parseContentType(raw string) (store.ContentType, bool) {
	switch t := store.ContentType(raw); t {
	case store.ContentTypeDevotional, store.ContentTypeQuote:
		return t, true
	}
	return "", false
}
