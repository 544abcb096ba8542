package services

import (
	"sync"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/platform/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultBalanceCacheSize is used when the configured size is not positive.
const DefaultBalanceCacheSize = 1024

type balanceKey struct {
	accountID string
	asOf      string // "" for the unbounded balance
}

// BalanceCache is an engine-owned LRU of computed account balances.
// Every posting transaction purges it; a nil *BalanceCache caches nothing.
//
// Purge bumps a generation counter; Add drops balances derived from reads that
// began before the latest purge.
type BalanceCache struct {
	mu         sync.Mutex
	generation uint64
	entries    *lru.Cache[balanceKey, domain.AccountBalance]
	metrics    *metrics.Metrics
}

// NewBalanceCache creates a cache holding up to size balances.
func NewBalanceCache(size int, m *metrics.Metrics) (*BalanceCache, error) {
	if size <= 0 {
		size = DefaultBalanceCacheSize
	}
	entries, err := lru.New[balanceKey, domain.AccountBalance](size)
	if err != nil {
		return nil, err
	}
	return &BalanceCache{entries: entries, metrics: m}, nil
}

func keyFor(accountID string, asOf *time.Time) balanceKey {
	k := balanceKey{accountID: accountID}
	if asOf != nil {
		k.asOf = asOf.Format(domain.DateLayout)
	}
	return k
}

// Get returns the cached balance of an account.
func (c *BalanceCache) Get(accountID string, asOf *time.Time) (domain.AccountBalance, bool) {
	if c == nil {
		return domain.AccountBalance{}, false
	}
	b, ok := c.entries.Get(keyFor(accountID, asOf))
	if c.metrics != nil {
		result := "miss"
		if ok {
			result = "hit"
		}
		c.metrics.BalanceCache.WithLabelValues(result).Inc()
	}
	return b, ok
}

// Generation returns the current purge generation. Capture it before reading
// the figures that will be passed to Add.
func (c *BalanceCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Add stores a balance computed from reads started at generation gen.
// It reports false and stores nothing when a purge happened since.
func (c *BalanceCache) Add(gen uint64, accountID string, asOf *time.Time, b domain.AccountBalance) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.entries.Add(keyFor(accountID, asOf), b)
	return true
}

// Purge drops every cached balance and starts a new generation.
func (c *BalanceCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries.Purge()
}

// Len reports how many balances are cached.
func (c *BalanceCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
