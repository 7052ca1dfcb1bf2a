package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

// MemoryConfig tunes the in-process store.
type MemoryConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	// SweepInterval controls how often expired or evicted keys are dropped from
	// the key index. Zero picks a default, negative disables the sweeper.
	SweepInterval time.Duration
}

// MemoryStore is an in-process cache backend on top of ristretto, used when no
// Redis instance is available. Ristretto cannot enumerate its keys, so a key
// index is kept alongside to support region clears.
type MemoryStore struct {
	c *ristretto.Cache

	mu   sync.Mutex
	keys map[string]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore constructs a MemoryStore. Zero values pick sane defaults.
func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 64 << 20
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 1e6
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	m := &MemoryStore{c: c, keys: make(map[string]struct{}), done: make(chan struct{})}
	if cfg.SweepInterval > 0 {
		go m.sweepEvery(cfg.SweepInterval)
	}
	return m, nil
}

// Get returns the stored payload or ErrCacheMiss.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		m.forget(key)
		return nil, appErrors.ErrCacheMiss
	}
	b, _ := v.([]byte)
	if b == nil {
		m.c.Del(key)
		m.forget(key)
		return nil, appErrors.ErrCacheMiss
	}
	return b, nil
}

// Set stores payload with ttl. Writes rejected under memory pressure are dropped.
func (m *MemoryStore) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	if !m.c.SetWithTTL(key, payload, int64(len(payload)), ttl) {
		return nil
	}
	m.c.Wait()
	m.mu.Lock()
	m.keys[key] = struct{}{}
	m.mu.Unlock()
	return nil
}

// Delete removes the provided keys.
func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.c.Del(key)
		m.forget(key)
	}
	return nil
}

// DeleteByPattern removes keys matching a prefix pattern such as "courses::*".
func (m *MemoryStore) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix, ok := strings.CutSuffix(pattern, "*")
	if !ok || strings.Contains(prefix, "*") {
		return errors.New("memory cache supports trailing wildcard patterns only")
	}
	m.mu.Lock()
	var matched []string
	for key := range m.keys {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		} else if _, ok := m.c.Get(key); !ok {
			delete(m.keys, key)
		}
	}
	m.mu.Unlock()
	return m.Delete(ctx, matched...)
}

// Close stops the sweeper and releases the underlying cache.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.mu.Lock()
		m.c.Close()
		m.mu.Unlock()
	})
	return nil
}

func (m *MemoryStore) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep drops index entries whose values ristretto no longer holds.
func (m *MemoryStore) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.keys {
		if _, ok := m.c.Get(key); !ok {
			delete(m.keys, key)
		}
	}
}


func (m *MemoryStore) forget(key string) {
	m.mu.Lock()
	delete(m.keys, key)
	m.mu.Unlock()
}
