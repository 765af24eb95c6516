package news

import (
	"context"
	"sync"
	"time"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/types"
)

// Service fronts a primary news source with an in-memory TTL cache and an
// optional fallback consulted when the primary yields nothing.
type Service struct {
	primary  interfaces.NewsSource
	fallback interfaces.NewsSource
	cache    *newsCache
	cfg      ServiceConfig
}

type ServiceConfig struct {
	CacheDuration time.Duration `yaml:"cache_duration"`
	Enabled       bool          `yaml:"enabled"`
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CacheDuration: 30 * time.Minute,
		Enabled:       true,
	}
}

type newsCache struct {
	mu   sync.RWMutex
	data map[string]cacheEntry
	ttl  time.Duration
	now  func() time.Time
}

type cacheEntry struct {
	items     []types.NewsItem
	timestamp time.Time
}

func newNewsCache(ttl time.Duration) *newsCache {
	return &newsCache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *newsCache) get(symbol string) ([]types.NewsItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[symbol]
	if !ok || c.now().Sub(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.items, true
}

// set also evicts expired entries so the map stays bounded without a
// background goroutine.
func (c *newsCache) set(symbol string, items []types.NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.data {
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.data, k)
		}
	}
	c.data[symbol] = cacheEntry{items: items, timestamp: now}
}

func NewService(primary, fallback interfaces.NewsSource, cfg ServiceConfig) *Service {
	if cfg.CacheDuration <= 0 {
		cfg.CacheDuration = DefaultServiceConfig().CacheDuration
	}
	return &Service{
		primary:  primary,
		fallback: fallback,
		cache:    newNewsCache(cfg.CacheDuration),
		cfg:      cfg,
	}
}

// RecentNews returns cached items when fresh. Errors from the primary are
// returned only when there is no fallback to try.
func (s *Service) RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	if !s.cfg.Enabled {
		return nil, nil
	}

	if cached, ok := s.cache.get(symbol); ok {
		logger.Debug(ctx, "Using cached news", "symbol", symbol, "items", len(cached))
		return cached, nil
	}

	items, err := s.primary.RecentNews(ctx, symbol)
	if err != nil {
		if s.fallback == nil {
			return nil, err
		}
		logger.ErrorWithErr(ctx, "Primary news source failed, trying fallback", err, "symbol", symbol)
	}
	if len(items) == 0 && s.fallback != nil {
		items, err = s.fallback.RecentNews(ctx, symbol)
		if err != nil {
			return nil, err
		}
	}

	s.cache.set(symbol, items)
	return items, nil
}
