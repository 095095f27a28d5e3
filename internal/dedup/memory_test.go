package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/balfaz610/report-week/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreSuppressesWithinTTL(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(clk, TTL)
	ctx := context.Background()

	assert.True(t, store.ShouldProcess(ctx, "evt_1"))
	store.MarkProcessed(ctx, "evt_1")

	assert.False(t, store.ShouldProcess(ctx, "evt_1"))

	clk.Advance(TTL - time.Second)
	assert.False(t, store.ShouldProcess(ctx, "evt_1"))
}

func TestMemoryStoreProcessesAgainAfterTTL(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(clk, TTL)
	ctx := context.Background()

	store.MarkProcessed(ctx, "evt_1")
	clk.Advance(TTL + time.Second)
	assert.True(t, store.ShouldProcess(ctx, "evt_1"))
}

func TestMemoryStoreEmptyKeyAlwaysProcessed(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(clk, TTL)
	ctx := context.Background()

	store.MarkProcessed(ctx, "")
	assert.True(t, store.ShouldProcess(ctx, ""))
	assert.True(t, store.ShouldProcess(ctx, ""))
}

func TestMemoryStoreSweep(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(clk, TTL)
	ctx := context.Background()

	store.MarkProcessed(ctx, "old")
	clk.Advance(TTL / 2)
	store.MarkProcessed(ctx, "fresh")

	clk.Advance(TTL/2 + time.Second)
	removed := store.Sweep()

	assert.Equal(t, 1, removed)
	assert.True(t, store.ShouldProcess(ctx, "old"))
	assert.False(t, store.ShouldProcess(ctx, "fresh"))
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(clk, TTL)
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			key := string(rune('a' + n))
			for j := 0; j < 100; j++ {
				if store.ShouldProcess(ctx, key) {
					store.MarkProcessed(ctx, key)
				}
				store.Sweep()
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
