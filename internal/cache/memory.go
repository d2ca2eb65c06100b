package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-process counterpart of RedisStore
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count int
	start time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Revoke marks tokenID as revoked for ttl
func (m *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = m.now().Add(ttl)
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not expired yet
func (m *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Allow counts a request for key in a one-minute window starting at its first request
func (m *MemoryStore) Allow(_ context.Context, key string, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= time.Minute {
		m.windows[key] = &window{count: 1, start: now}
		return 1 <= limit, nil
	}
	w.count++
	return w.count <= limit, nil
}

// Sweep drops expired revocations and stale windows
func (m *MemoryStore) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
	for key, w := range m.windows {
		if now.Sub(w.start) > 2*time.Minute {
			delete(m.windows, key)
		}
	}
}

// StartSweeper runs Sweep every interval until ctx is cancelled
func (m *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
