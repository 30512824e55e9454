package store

import (
	"context"
)

// ContentType identifies which content collection an item (or a schedule
// assignment) belongs to. Devotionals and quotes are scheduled independently.
type ContentType string

const (
	ContentTypeDevotional ContentType = "devotional"
	ContentTypeQuote      ContentType = "quote"
)

func (t ContentType) String() string {
	return string(t)
}

// ContentStatus is the publication status of a content item. The scheduler
// only uses it as a filter when building a candidate pool.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// ContentItem is a reusable content item (devotional or quote). The scheduler
// treats it as read-only; it is owned by the content-management side.
type ContentItem struct {
	ID        string
	Type      ContentType
	Title     string
	Author    string
	Verse     string
	Body      string
	Status    ContentStatus
	CreatedTs int64
	UpdatedTs int64
}

// FindContentItem is the find condition for content items.
// Results are always ordered by title ascending.
type FindContentItem struct {
	ID     *string
	Type   *ContentType
	Status *ContentStatus

	// Pagination
	Limit  *int
	Offset *int
}

// CreateContentItem creates a new content item.
func (s *Store) CreateContentItem(ctx context.Context, create *ContentItem) (*ContentItem, error) {
	item, err := s.driver.CreateContentItem(ctx, create)
	if err != nil {
		return nil, err
	}
	// Invalidate every pool variant for this type.
	s.contentCache.Delete(ctx, contentPoolCacheKey(item.Type, nil))
	for _, status := range []ContentStatus{ContentStatusDraft, ContentStatusPublished} {
		status := status
		s.contentCache.Delete(ctx, contentPoolCacheKey(item.Type, &status))
	}
	return item, nil
}

// ListContentItems lists content items with filter, ordered by title.
func (s *Store) ListContentItems(ctx context.Context, find *FindContentItem) ([]*ContentItem, error) {
	return s.driver.ListContentItems(ctx, find)
}

// GetContentItem gets a single content item, or nil when not found.
func (s *Store) GetContentItem(ctx context.Context, find *FindContentItem) (*ContentItem, error) {
	list, err := s.driver.ListContentItems(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListContentPool lists the schedulable pool for a content type, optionally
// filtered by status. Pool reads back the scheduler previews, so they go
// through a short-lived cache.
func (s *Store) ListContentPool(ctx context.Context, contentType ContentType, status *ContentStatus) ([]*ContentItem, error) {
	key := contentPoolCacheKey(contentType, status)
	if cached, ok := s.contentCache.Get(ctx, key); ok {
		if items, ok := cached.([]*ContentItem); ok {
			return items, nil
		}
	}

	find := &FindContentItem{Type: &contentType, Status: status}
	items, err := s.driver.ListContentItems(ctx, find)
	if err != nil {
		return nil, err
	}

	s.contentCache.Set(ctx, key, items)
	return items, nil
}

func contentPoolCacheKey(contentType ContentType, status *ContentStatus) string {
	if status == nil {
		return "content_pool/" + string(contentType) + "/all"
	}
	return "content_pool/" + string(contentType) + "/" + string(*status)
}
