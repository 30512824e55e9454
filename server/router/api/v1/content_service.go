package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oratio/oratio/internal/util"
	"github.com/oratio/oratio/store"
)

// ContentResponse is the JSON shape of one content item.
type ContentResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	Verse     string `json:"verse,omitempty"`
	Body      string `json:"body,omitempty"`
	Status    string `json:"status"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

func toContentResponse(item *store.ContentItem) *ContentResponse {
	return &ContentResponse{
		ID:        item.ID,
		Type:      item.Type.String(),
		Title:     item.Title,
		Author:    item.Author,
		Verse:     item.Verse,
		Body:      item.Body,
		Status:    string(item.Status),
		CreatedTs: item.CreatedTs,
		UpdatedTs: item.UpdatedTs,
	}
}

// ListContents lists content items, ordered by title.
// GET /api/v1/contents?type=devotional&status=published
func (s *APIV1Service) ListContents(c echo.Context) error {
	ctx := c.Request().Context()

	find := &store.FindContentItem{}
	if raw := c.QueryParam("type"); raw != "" {
		contentType, ok := parseContentType(raw)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, "type must be devotional or quote")
		}
		find.Type = &contentType
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := store.ContentStatus(raw)
		if status != store.ContentStatusDraft && status != store.ContentStatusPublished {
			return errorJSON(c, http.StatusBadRequest, "status must be draft or published")
		}
		find.Status = &status
	}

	list, err := s.Store.ListContentItems(ctx, find)
	if err != nil {
		return schedulingError(c, err)
	}

	response := make([]*ContentResponse, 0, len(list))
	for _, item := range list {
		response = append(response, toContentResponse(item))
	}
	return c.JSON(http.StatusOK, response)
}

// CreateContentRequest is the content creation request body.
type CreateContentRequest struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Verse  string `json:"verse"`
	Body   string `json:"body"`
	Status string `json:"status"`
}

// CreateContent creates a content item. New items default to draft so they
// stay out of status-filtered bulk pools until reviewed.
// POST /api/v1/contents
func (s *APIV1Service) CreateContent(c echo.Context) error {
	ctx := c.Request().Context()

	var body CreateContentRequest
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}

	contentType, ok := parseContentType(body.Type)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "type must be devotional or quote")
	}
	if strings.TrimSpace(body.Title) == "" {
		return errorJSON(c, http.StatusBadRequest, "title is required")
	}
	status := store.ContentStatusDraft
	if body.Status != "" {
		status = store.ContentStatus(body.Status)
		if status != store.ContentStatusDraft && status != store.ContentStatusPublished {
			return errorJSON(c, http.StatusBadRequest, "status must be draft or published")
		}
	}

	item, err := s.Store.CreateContentItem(ctx, &store.ContentItem{
		ID:     util.GenUUID(),
		Type:   contentType,
		Title:  strings.TrimSpace(body.Title),
		Author: body.Author,
		Verse:  body.Verse,
		Body:   body.Body,
		Status: status,
	})
	if err != nil {
		return schedulingError(c, err)
	}

	return c.JSON(http.StatusCreated, toContentResponse(item))
}
