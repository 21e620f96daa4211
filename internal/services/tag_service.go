package services

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/opiquem/blog-app-be/internal/repositories"
	"github.com/opiquem/blog-app-be/pkg/cache"
)

const (
	tagsCacheKey = "tags:all"
	tagsCacheTTL = 10 * time.Minute
)

// TagService lists known tags, cached in Redis when a cache is configured.
type TagService struct {
	tags  repositories.TagRepository
	cache *cache.Cache
}

// NewTagService creates a new TagService. c may be nil.
func NewTagService(tags repositories.TagRepository, c *cache.Cache) *TagService {
	return &TagService{tags: tags, cache: c}
}

// ListTags returns every tag name in ascending order.
func (s *TagService) ListTags(ctx context.Context) ([]string, error) {
	names := []string{}
	err := s.cache.Aside(ctx, tagsCacheKey, &names, tagsCacheTTL, func() error {
		list, err := s.tags.List(ctx)
		if err != nil {
			return err
		}
		names = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// RegisterTags records names as known tags and drops the cached list.
func (s *TagService) RegisterTags(ctx context.Context, names []string) error {
	unique := dedupe(names)
	if len(unique) == 0 {
		return nil
	}
	if err := s.tags.Upsert(ctx, unique); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, tagsCacheKey); err != nil {
		log.Printf("Error invalidating %s: %v", tagsCacheKey, err)
	}
	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
