package service

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/storage"
	"github.com/revgate-io/revgate/internal/telemetry/metric"
)

// Result cache defaults. The cache absorbs request bursts for the
// same credential; its TTL bounds how long a check may lag a true
// state change when the caller does not bypass it.
const (
	DefaultResultCacheSize = 16384
	DefaultResultCacheTTL  = 90 * time.Second
)

// CheckService handles the CheckRevocation query.
type CheckService struct {
	store   RevocationStore
	cache   *resultCache
	metrics *metric.Metrics
}

// CheckOption configures a CheckService.
type CheckOption func(*checkOptions)

type checkOptions struct {
	cacheSize int
	cacheTTL  time.Duration
}

// WithResultCache overrides the result cache capacity and TTL.
func WithResultCache(size int, ttl time.Duration) CheckOption {
	return func(o *checkOptions) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

// NewCheckService creates a new CheckService.
func NewCheckService(store RevocationStore, metrics *metric.Metrics, opts ...CheckOption) *CheckService {
	o := checkOptions{
		cacheSize: DefaultResultCacheSize,
		cacheTTL:  DefaultResultCacheTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &CheckService{
		store:   store,
		cache:   newResultCache(o.cacheSize, o.cacheTTL),
		metrics: metrics,
	}
}

// CheckRevocationRequest contains parameters for a revocation check.
type CheckRevocationRequest struct {
	TokenID string
	// BypassCache skips the result cache. Administrative status
	// checks use it to see the store's current answer.
	BypassCache bool
}

// CheckRevocationResponse contains the result of a revocation check.
type CheckRevocationResponse struct {
	IsRevoked bool
	TokenID   string
	CheckedAt int64 // Unix MS
	FromCache bool

	// Degraded is true when the shared tier could not be consulted
	// and the answer reflects only local knowledge.
	Degraded bool

	// Record is the revocation record when IsRevoked is true.
	Record *domain.RevocationRecord
}

// Check reports whether a token is revoked.
func (s *CheckService) Check(ctx context.Context, req *CheckRevocationRequest) (*CheckRevocationResponse, error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() {
			s.metrics.CheckDuration.Observe(time.Since(start).Seconds())
		}()
	}

	// 1. Validate and normalize the token ID
	if req == nil || req.TokenID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("token_id is required")
	}
	tokenID := domain.NormalizeTokenID(req.TokenID)
	if tokenID == "" {
		return nil, domain.ErrTokenIDMalformed
	}

	// 2. Result cache, unless bypassed
	if !req.BypassCache {
		if cached, ok := s.cache.get(tokenID); ok {
			if s.metrics != nil {
				s.metrics.ResultCacheHits.Inc()
			}
			return &CheckRevocationResponse{
				IsRevoked: cached.isRevoked,
				TokenID:   tokenID,
				CheckedAt: cached.checkedAt,
				FromCache: true,
				Record:    cached.record,
			}, nil
		}
	}

	// 3. Consult the store
	result, err := s.store.IsRevoked(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	resp := &CheckRevocationResponse{
		IsRevoked: result.Revoked,
		TokenID:   tokenID,
		CheckedAt: time.Now().UnixMilli(),
		Degraded:  result.Degraded,
		Record:    result.Record,
	}
	s.observe(result)

	// 4. Cache the answer. Degraded answers stay uncached: the next
	// check should retry the shared tier, not repeat a guess.
	if !result.Degraded {
		s.cache.put(tokenID, cachedResult{
			isRevoked: resp.IsRevoked,
			checkedAt: resp.CheckedAt,
			record:    resp.Record,
		})
	}

	return resp, nil
}

// Invalidate drops a token's cached result. The Revoke command calls
// it so a freshly revoked token does not ride out the cache TTL on
// this instance.
func (s *CheckService) Invalidate(tokenID string) {
	s.cache.remove(tokenID)
}

func (s *CheckService) observe(result storage.LookupResult) {
	if s.metrics == nil {
		return
	}
	switch {
	case result.Degraded:
		s.metrics.ChecksTotal.WithLabelValues("degraded").Inc()
		s.metrics.DegradedTotal.Inc()
	case result.Revoked:
		s.metrics.ChecksTotal.WithLabelValues("revoked").Inc()
	default:
		s.metrics.ChecksTotal.WithLabelValues("clear").Inc()
	}
	switch result.Tier {
	case storage.TierLocal:
		s.metrics.LocalHitsTotal.Inc()
	case storage.TierShared:
		s.metrics.SharedHitsTotal.Inc()
	case storage.TierNone:
		if !result.Degraded {
			s.metrics.MissesTotal.Inc()
		}
	}
}

// cachedResult is one result cache entry.
type cachedResult struct {
	isRevoked bool
	checkedAt int64
	record    *domain.RevocationRecord
}

// resultCache is a small LRU with per-entry TTL in front of the store.
type resultCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List
	capacity int
	ttl      time.Duration
}

type resultEntry struct {
	tokenID  string
	result   cachedResult
	cachedAt time.Time
}

func newResultCache(capacity int, ttl time.Duration) *resultCache {
	return &resultCache{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
	}
}

func (c *resultCache) get(tokenID string) (cachedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[tokenID]
	if !ok {
		return cachedResult{}, false
	}

	entry := elem.Value.(*resultEntry)
	if time.Since(entry.cachedAt) >= c.ttl {
		c.order.Remove(elem)
		delete(c.items, tokenID)
		return cachedResult{}, false
	}

	c.order.MoveToFront(elem)
	return entry.result, true
}

func (c *resultCache) put(tokenID string, result cachedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[tokenID]; ok {
		entry := elem.Value.(*resultEntry)
		entry.result = result
		entry.cachedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	// Evict the least recently used entry at capacity
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*resultEntry).tokenID)
		}
	}

	c.items[tokenID] = c.order.PushFront(&resultEntry{
		tokenID:  tokenID,
		result:   result,
		cachedAt: time.Now(),
	})
}

func (c *resultCache) remove(tokenID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[tokenID]; ok {
		c.order.Remove(elem)
		delete(c.items, tokenID)
	}
}
