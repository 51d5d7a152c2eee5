package common

import (
	lru "github.com/hashicorp/golang-lru"
)

// Balances is a snapshot of every peer's coin balance at a particular block,
// the value type cached by BalanceCache.
type Balances map[PeerID]int64

// Clone returns an independent copy, since Balances values are mutated in
// place while replaying a chain segment (spec §4.6).
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// BalanceCache maps block_id -> balances-snapshot-at-that-block (spec 4.6).
// It generalizes the teacher's common/cache.go lruCache, which wraps a
// single *lru.Cache behind the same Add/Get/Contains/Purge shape; here the
// wrapped value type is fixed to Balances instead of interface{}, and a
// small "pinned" tier holds every block currently on a peer's main chain
// path (from GENESIS to the tip) so that the path a reorg will need to
// rewind through is never evicted out from under it. Only side-branch and
// stale-tip snapshots live in the bounded LRU tier.
type BalanceCache struct {
	pinned map[BlockID]Balances
	lru    *lru.Cache
}

// NewBalanceCache creates a cache whose LRU tier holds up to capacity
// off-path snapshots. capacity should be at least a few times the expected
// confirmation window (spec §6 confirmation_window) so that plausible reorg
// depths don't force a full recomputation from GENESIS.
func NewBalanceCache(capacity int) *BalanceCache {
	if capacity < 1 {
		capacity = 1
	}
	c, _ := lru.New(capacity)
	return &BalanceCache{
		pinned: make(map[BlockID]Balances),
		lru:    c,
	}
}

// Get returns the cached snapshot for id, checking the pinned tier first.
func (c *BalanceCache) Get(id BlockID) (Balances, bool) {
	if b, ok := c.pinned[id]; ok {
		return b, true
	}
	if v, ok := c.lru.Get(id); ok {
		return v.(Balances), true
	}
	return nil, false
}

// Put memoizes a snapshot in the bounded LRU tier.
func (c *BalanceCache) Put(id BlockID, b Balances) {
	if _, ok := c.pinned[id]; ok {
		return
	}
	c.lru.Add(id, b)
}

// Pin moves (or inserts) a snapshot into the unevictable tier, used for
// every block on the current longest-chain path.
func (c *BalanceCache) Pin(id BlockID, b Balances) {
	c.lru.Remove(id)
	c.pinned[id] = b
}

// Unpin demotes a previously pinned block back into the bounded LRU tier,
// used when a reorg moves it off the new main-chain path.
func (c *BalanceCache) Unpin(id BlockID) {
	if b, ok := c.pinned[id]; ok {
		delete(c.pinned, id)
		c.lru.Add(id, b)
	}
}

// Len reports the total number of cached snapshots across both tiers.
func (c *BalanceCache) Len() int {
	return len(c.pinned) + c.lru.Len()
}
