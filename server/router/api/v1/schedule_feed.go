package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/oratio/oratio/store"
)

// upcomingFeedWindow is how far ahead the schedule feed looks.
const upcomingFeedWindow = 30

// maxFeedItems caps the feed size.
const maxFeedItems = 100

// ScheduleFeed renders the upcoming schedule as an Atom feed so editors can
// preview the next weeks from a feed reader.
// GET /api/v1/schedules/feed?type=quote
func (s *APIV1Service) ScheduleFeed(c echo.Context) error {
	ctx := c.Request().Context()

	contentType, ok := parseContentType(c.QueryParam("type"))
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "type must be devotional or quote")
	}

	now := time.Now().UTC()
	start := now.Format(store.ScheduleDateLayout)
	end := now.AddDate(0, 0, upcomingFeedWindow).Format(store.ScheduleDateLayout)
	limit := maxFeedItems

	list, err := s.Store.ListScheduledContent(ctx, &store.FindScheduledContent{
		ContentType:        &contentType,
		ScheduledDateStart: &start,
		ScheduledDateEnd:   &end,
		ExcludeCancelled:   true,
		Limit:              &limit,
	})
	if err != nil {
		return schedulingError(c, err)
	}

	baseURL := s.Profile.InstanceURL
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Upcoming %ss", contentType),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/api/v1/schedules/feed?type=%s", baseURL, contentType)},
		Description: fmt.Sprintf("Scheduled %s content for the next %d days", contentType, upcomingFeedWindow),
		Created:     now,
	}

	feed.Items = make([]*feeds.Item, 0, len(list))
	for _, sc := range list {
		scheduledAt, err := sc.ParseScheduledDate()
		if err != nil {
			continue
		}
		description := sc.Author
		if sc.Verse != "" {
			description = fmt.Sprintf("%s (%s)", sc.Author, sc.Verse)
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          sc.ID,
			Title:       fmt.Sprintf("%s: %s", sc.ScheduledDate, sc.Title),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/admin/schedule/%s", baseURL, sc.ID)},
			Description: description,
			Created:     scheduledAt,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return schedulingError(c, err)
	}
	return c.Blob(http.StatusOK, "application/atom+xml", []byte(atom))
}
