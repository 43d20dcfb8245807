package facts

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingSource counts collect calls across probe cycles.
type countingSource struct {
	key   string
	delay time.Duration
	calls atomic.Int64
}

func (s *countingSource) Describe() Schema {
	return Schema{Key: s.key, Description: "counting source"}
}

func (s *countingSource) Collect(ctx context.Context) (any, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return "value", nil
}

func TestCached(t *testing.T) {
	t.Run("fresh entry is served without a probe", func(t *testing.T) {
		src := &countingSource{key: "fact"}
		p := NewProber()
		p.RegisterSource(src)

		first := p.Cached(context.Background(), time.Minute)
		second := p.Cached(context.Background(), time.Minute)

		if src.calls.Load() != 1 {
			t.Errorf("Expected 1 collect call, got %d", src.calls.Load())
		}
		if first != second {
			t.Errorf("Expected both calls to return the same snapshot")
		}
	})

	t.Run("expired entry triggers a refresh", func(t *testing.T) {
		src := &countingSource{key: "fact"}
		p := NewProber()
		p.RegisterSource(src)

		first := p.Cached(context.Background(), time.Nanosecond)
		time.Sleep(5 * time.Millisecond)
		second := p.Cached(context.Background(), time.Nanosecond)

		if src.calls.Load() != 2 {
			t.Errorf("Expected 2 collect calls, got %d", src.calls.Load())
		}
		if first == second {
			t.Errorf("Expected a new snapshot after expiry")
		}
	})

	t.Run("concurrent callers share one probe", func(t *testing.T) {
		src := &countingSource{key: "fact", delay: 50 * time.Millisecond}
		p := NewProber()
		p.RegisterSource(src)

		const callers = 8
		snapshots := make([]*Snapshot, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				snapshots[i] = p.Cached(context.Background(), time.Minute)
			}(i)
		}
		wg.Wait()

		if src.calls.Load() != 1 {
			t.Errorf("Expected 1 collect call across %d callers, got %d", callers, src.calls.Load())
		}
		for i := 1; i < callers; i++ {
			if snapshots[i] != snapshots[0] {
				t.Errorf("Expected all callers to receive the same snapshot")
			}
		}
	})

	t.Run("refresh bypasses a fresh entry", func(t *testing.T) {
		src := &countingSource{key: "fact"}
		p := NewProber()
		p.RegisterSource(src)

		p.Cached(context.Background(), time.Minute)
		p.Refresh(context.Background())

		if src.calls.Load() != 2 {
			t.Errorf("Expected 2 collect calls, got %d", src.calls.Load())
		}
	})

	t.Run("entry reports the published snapshot", func(t *testing.T) {
		p := NewProber()
		p.RegisterSource(&countingSource{key: "fact"})

		if p.Entry() != nil {
			t.Fatalf("Expected nil entry before the first probe")
		}
		snap := p.Refresh(context.Background())
		entry := p.Entry()
		if entry == nil || entry.Snapshot != snap {
			t.Errorf("Expected the entry to hold the refreshed snapshot")
		}
	})

	t.Run("sources registered between refreshes are picked up", func(t *testing.T) {
		p := NewProber()
		p.RegisterSource(&countingSource{key: "original"})
		p.Refresh(context.Background())

		p.RegisterSource(&countingSource{key: "added"})
		snap := p.Refresh(context.Background())

		if _, ok := snap.Fact("original"); !ok {
			t.Errorf("Expected original fact to survive the refresh")
		}
		if _, ok := snap.Fact("added"); !ok {
			t.Errorf("Expected added fact in the refreshed snapshot")
		}
	})
}
