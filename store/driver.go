package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// ContentItem model related methods.
	CreateContentItem(ctx context.Context, create *ContentItem) (*ContentItem, error)
	ListContentItems(ctx context.Context, find *FindContentItem) ([]*ContentItem, error)

	// ScheduledContent model related methods.
	CreateScheduledContent(ctx context.Context, create *ScheduledContent) (*ScheduledContent, error)
	ListScheduledContent(ctx context.Context, find *FindScheduledContent) ([]*ScheduledContent, error)
	UpdateScheduledContent(ctx context.Context, update *UpdateScheduledContent) error
	DeleteScheduledContent(ctx context.Context, delete *DeleteScheduledContent) error

	// Activity model related methods.
	CreateActivity(ctx context.Context, create *Activity) (*Activity, error)
	ListActivities(ctx context.Context, find *FindActivity) ([]*Activity, error)
}
