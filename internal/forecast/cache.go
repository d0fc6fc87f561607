package forecast

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/triplet-forecast/internal/metrics"
	"github.com/yourusername/triplet-forecast/internal/ranking"
)

// CacheKey identifies one ranked candidate list. Fingerprint pins the
// counter contents, so two histories sharing an evidence key and size
// never share an entry.
type CacheKey struct {
	Strategy    string
	TopN        int
	Evidence    string
	Total       int
	Fingerprint uint64
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%d:%s:%d:%016x", k.Strategy, k.TopN, k.Evidence, k.Total, k.Fingerprint)
}

// CandidateCache keeps ranked candidates per evidence key
type CandidateCache struct {
	cache *cache.Cache
	ttl   time.Duration

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCandidateCache creates a cache whose entries expire after ttl
func NewCandidateCache(ttl, cleanup time.Duration) *CandidateCache {
	return &CandidateCache{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Get retrieves a copy of the cached candidates
func (cc *CandidateCache) Get(key CacheKey) ([]ranking.Candidate, bool) {
	var (
		cands []ranking.Candidate
		found bool
	)
	if v, ok := cc.cache.Get(key.String()); ok {
		cands, found = v.([]ranking.Candidate)
	}

	cc.mu.Lock()
	if found {
		cc.hitCount++
	} else {
		cc.missCount++
	}
	cc.mu.Unlock()

	metrics.RecordCacheLookup(found)
	_, _, ratio := cc.Stats()
	metrics.UpdateCacheHitRatio(ratio)
	if !found {
		return nil, false
	}
	return append([]ranking.Candidate(nil), cands...), true
}

// Set stores a copy of candidates under key
func (cc *CandidateCache) Set(key CacheKey, cands []ranking.Candidate) {
	cc.cache.Set(key.String(), append([]ranking.Candidate(nil), cands...), cc.ttl)
}

// Clear flushes the entire cache
func (cc *CandidateCache) Clear() {
	cc.cache.Flush()

	cc.mu.Lock()
	cc.hitCount = 0
	cc.missCount = 0
	cc.mu.Unlock()
}

// Stats returns cache statistics
func (cc *CandidateCache) Stats() (hits, misses uint64, ratio float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	hits = cc.hitCount
	misses = cc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (cc *CandidateCache) ItemCount() int {
	return cc.cache.ItemCount()
}
