// Package core holds the port interfaces of the job page resolver and the small
// services that sit directly on them.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/target/jobz/internal/domain/jobtype"
)

// CacheRepository defines the interface for caching operations.
// This follows the hexagonal architecture pattern where the core defines interfaces
// and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// OptionsCacheService caches OPTIONS documents of AWX resource endpoints.
// OPTIONS describes the endpoint schema and the caller's permissions, which
// change far less often than the job itself.
type OptionsCacheService struct {
	cache CacheRepository
	ttl   time.Duration
}

// OptionsCacheConfig holds configuration for options caching.
type OptionsCacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// OptionsCacheServiceOptions bundles dependencies for NewOptionsCacheService.
type OptionsCacheServiceOptions struct {
	Cache  CacheRepository
	Config OptionsCacheConfig
}

// DefaultOptionsCacheConfig returns an OptionsCacheConfig with sensible defaults.
func DefaultOptionsCacheConfig() OptionsCacheConfig {
	return OptionsCacheConfig{TTL: 10 * time.Minute}
}

// NewOptionsCacheService creates a new OptionsCacheService.
func NewOptionsCacheService(opts OptionsCacheServiceOptions) *OptionsCacheService {
	ttl := opts.Config.TTL
	if ttl <= 0 {
		ttl = DefaultOptionsCacheConfig().TTL
	}
	return &OptionsCacheService{cache: opts.Cache, ttl: ttl}
}

// Get returns the cached OPTIONS document for a resource, or nil on a miss.
func (s *OptionsCacheService) Get(ctx context.Context, family jobtype.Family, id string) (map[string]any, error) {
	if s == nil || s.cache == nil {
		return nil, nil
	}
	raw, err := s.cache.Get(ctx, optionsKey(family, id))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode cached options: %w", err)
	}
	return doc, nil
}

// Set stores an OPTIONS document.
func (s *OptionsCacheService) Set(ctx context.Context, family jobtype.Family, id string, doc map[string]any) error {
	if s == nil || s.cache == nil || doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	return s.cache.Set(ctx, optionsKey(family, id), raw, s.ttl)
}

// Invalidate removes a cached OPTIONS document.
func (s *OptionsCacheService) Invalidate(ctx context.Context, family jobtype.Family, id string) error {
	if s == nil || s.cache == nil {
		return nil
	}
	_, err := s.cache.Delete(ctx, optionsKey(family, id))
	return err
}

// optionsKey is per resource: AWX folds object-level permissions into OPTIONS.
func optionsKey(family jobtype.Family, id string) string {
	return "awx:options:" + string(family) + ":" + id
}
