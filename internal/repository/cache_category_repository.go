package repository

import (
	"context"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	categoryListKey = "category:list"

	// Default TTL for the category list cache
	categoryCacheTTL = 10 * time.Minute
)

// JSONCache is the subset of pkg/redis.Client the cache layer needs
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachedCategoryRepository wraps CategoryRepository with a Redis read-through cache of the full list.
// Concurrent misses share one database read.
type CachedCategoryRepository struct {
	repo    CategoryRepository
	cache   JSONCache
	ttl     time.Duration
	sfGroup singleflight.Group
}

// NewCachedCategoryRepository creates a new CachedCategoryRepository
func NewCachedCategoryRepository(repo CategoryRepository, cache JSONCache) *CachedCategoryRepository {
	return &CachedCategoryRepository{
		repo:  repo,
		cache: cache,
		ttl:   categoryCacheTTL,
	}
}

// List returns every category, from cache when possible
func (r *CachedCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if err := r.cache.GetJSON(ctx, categoryListKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	// Cache miss - get from database
	v, err, _ := r.sfGroup.Do(categoryListKey, func() (interface{}, error) {
		categories, err := r.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(categories) > 0 {
			// Cache errors never fail the read
			_ = r.cache.SetJSON(ctx, categoryListKey, categories, r.ttl)
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}

	categories := v.([]domain.Category)
	out := make([]domain.Category, len(categories))
	copy(out, categories)
	return out, nil
}

// ForEvents is not cached
func (r *CachedCategoryRepository) ForEvents(ctx context.Context, eventIDs []string) (map[string][]domain.Category, error) {
	return r.repo.ForEvents(ctx, eventIDs)
}

// PrimaryFor is not cached
func (r *CachedCategoryRepository) PrimaryFor(ctx context.Context, eventID string) (*domain.Category, error) {
	return r.repo.PrimaryFor(ctx, eventID)
}

// AssignToEvent passes through
func (r *CachedCategoryRepository) AssignToEvent(ctx context.Context, eventID, categoryID string) error {
	return r.repo.AssignToEvent(ctx, eventID, categoryID)
}

// ReplaceForEvent passes through
func (r *CachedCategoryRepository) ReplaceForEvent(ctx context.Context, eventID, categoryID string) error {
	return r.repo.ReplaceForEvent(ctx, eventID, categoryID)
}
