package settings

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zoobzio/clockz"
	"golang.org/x/time/rate"
)

// urlLimiter keeps one token bucket per URL in a bounded LRU cache.
// Evicted URLs start over with a full bucket.
type urlLimiter struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *rate.Limiter]
	limit rate.Limit
	burst int
	clock clockz.Clock
	cfg   RateLimitConfig
}

func newURLLimiter(cfg RateLimitConfig, clock clockz.Clock) (*urlLimiter, error) {
	cache, err := lru.New[string, *rate.Limiter](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRateLimit, err)
	}
	return &urlLimiter{
		cache: cache,
		limit: rate.Limit(cfg.PerSecond),
		burst: cfg.Burst,
		clock: clock,
		cfg:   cfg,
	}, nil
}

// allow takes one token from the bucket of key.
func (l *urlLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.cache.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.cache.Add(key, lim)
	}
	l.mu.Unlock()

	return lim.AllowN(l.clock.Now(), 1)
}
