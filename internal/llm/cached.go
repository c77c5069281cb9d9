package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rodrinoblega/hr-climate-insight/internal/cache"
)

// CachedProvider wraps a provider with the response cache. Identical
// generation calls (same provider, model, system and rendered prompt) are
// served from the cache within the TTL, so re-running a report over
// unchanged survey data costs nothing.
type CachedProvider struct {
	inner Provider
	store cache.Cache
	ttl   time.Duration
}

// NewCachedProvider wraps inner with the given cache store
func NewCachedProvider(inner Provider, store cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, store: store, ttl: ttl}
}

// Name returns the wrapped provider's name
func (c *CachedProvider) Name() string {
	return c.inner.Name()
}

// IsAvailable delegates to the wrapped provider
func (c *CachedProvider) IsAvailable(ctx context.Context) bool {
	return c.inner.IsAvailable(ctx)
}

// Generate serves from the cache when possible, otherwise calls through and
// caches the result. Errors are never cached.
func (c *CachedProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	key := cache.GenerationKey(c.inner.Name(), req.Model, req.System, req.Prompt)

	if data, found := c.store.Get(key); found {
		var resp GenerateResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			resp.Cached = true
			return &resp, nil
		}
		// Corrupt entry: drop it and regenerate
		_ = c.store.Delete(key)
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resp); err == nil {
		_ = c.store.Set(key, data, c.ttl)
	}
	return resp, nil
}
