package sheets

import (
	"context"
	"sync"
	"time"

	"sheet_ledger_bot/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Entry is a cached table snapshot together with the time it was fetched.
type Entry struct {
	Table     *Table    `json:"table"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store keeps one Entry per table identifier.
type Store interface {
	Get(ctx context.Context, tableID string) (Entry, bool, error)
	Set(ctx context.Context, tableID string, entry Entry) error
	Invalidate(ctx context.Context, tableID string) error
}

// CachedSource serves tables from a Store while they are younger than the TTL
// and otherwise fetches from the wrapped Source. Only successful fetches are
// stored. Concurrent refreshes of one table are last-writer-wins.
type CachedSource struct {
	source Source
	store  Store
	ttl    time.Duration
	now    func() time.Time
}

func NewCachedSource(source Source, store Store, ttl time.Duration, now func() time.Time) *CachedSource {
	if now == nil {
		now = time.Now
	}
	return &CachedSource{source: source, store: store, ttl: ttl, now: now}
}

func (c *CachedSource) Fetch(ctx context.Context, tableID string) (*Table, error) {
	entry, ok, err := c.store.Get(ctx, tableID)
	if err != nil {
		log.Warn().Err(err).Str("table", tableID).Msg("Cache read failed, fetching from source")
	}
	if ok && c.now().Sub(entry.FetchedAt) < c.ttl {
		metrics.IncCacheRequest("sheet", "hit")
		log.Debug().Str("table", tableID).Time("fetched_at", entry.FetchedAt).Msg("Serving table from cache")
		return entry.Table, nil
	}
	metrics.IncCacheRequest("sheet", "miss")

	table, err := c.source.Fetch(ctx, tableID)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, tableID, Entry{Table: table, FetchedAt: c.now()}); err != nil {
		log.Warn().Err(err).Str("table", tableID).Msg("Cache write failed")
	}
	return table, nil
}

// Invalidate forces the next Fetch of tableID to go to the source.
func (c *CachedSource) Invalidate(ctx context.Context, tableID string) error {
	log.Debug().Str("table", tableID).Msg("Invalidating cached table")
	return c.store.Invalidate(ctx, tableID)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(_ context.Context, tableID string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[tableID]
	return e, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, tableID string, entry Entry) error {
	m.mu.Lock()
	m.entries[tableID] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Invalidate(_ context.Context, tableID string) error {
	m.mu.Lock()
	delete(m.entries, tableID)
	m.mu.Unlock()
	return nil
}
