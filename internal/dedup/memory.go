package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/balfaz610/report-week/internal/clock"
)

// MemoryStore is the single-process in-memory Store backing.
type MemoryStore struct {
	clock clock.Clock
	ttl   time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryStore(clk clock.Clock, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = TTL
	}
	return &MemoryStore{
		clock: clk,
		ttl:   ttl,
		seen:  make(map[string]time.Time),
	}
}

func (s *MemoryStore) ShouldProcess(_ context.Context, key string) bool {
	if key == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seenAt, ok := s.seen[key]
	if !ok {
		return true
	}
	if s.clock.Now().Sub(seenAt) > s.ttl {
		delete(s.seen, key)
		return true
	}
	return false
}

func (s *MemoryStore) MarkProcessed(_ context.Context, key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[key] = s.clock.Now()
}

// Sweep removes entries older than the TTL and returns how many it removed.
func (s *MemoryStore) Sweep() int {
	cutoff := s.clock.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, seenAt := range s.seen {
		if seenAt.Before(cutoff) {
			delete(s.seen, key)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until the context is cancelled.
func (s *MemoryStore) Run(ctx context.Context) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
