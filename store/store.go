package store

import (
	"time"

	"github.com/oratio/oratio/internal/profile"
	"github.com/oratio/oratio/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// contentCache caches schedulable content pools per content type.
	contentCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Content pools change rarely relative to how often the schedulers
	// re-read them, so a short TTL is enough.
	cacheConfig := cache.Config{
		DefaultTTL:      1 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        64,
		OnEviction:      nil,
	}

	store := &Store{
		driver:       driver,
		profile:      profile,
		cacheConfig:  cacheConfig,
		contentCache: cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.contentCache.Close()

	return s.driver.Close()
}
