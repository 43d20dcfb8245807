package facts

import (
	"context"
	"time"

	"github.com/systune-io/systune/internal/metrics"
)

// CacheEntry wraps a snapshot with its capture time. Entries are immutable;
// the prober publishes a new entry with a single atomic pointer swap, so
// readers never observe a torn snapshot.
type CacheEntry struct {
	Snapshot   *Snapshot
	CapturedAt time.Time
}

// Cached returns the last published snapshot when it is no older than ttl,
// and otherwise performs a fresh probe cycle, publishes it, and returns it.
// Concurrent callers observing a stale entry collapse into a single
// in-flight probe; every caller receives that probe's snapshot. A refresh
// probes the union of all registered keys and the previous snapshot's keys,
// so facts tracked before a refresh are never silently dropped.
func (p *Prober) Cached(ctx context.Context, ttl time.Duration) *Snapshot {
	if entry := p.cache.Load(); entry != nil && time.Since(entry.CapturedAt) <= ttl {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return entry.Snapshot
	}
	return p.refresh(ctx, ttl)
}

// Refresh forces a new probe cycle regardless of the cache's age and
// publishes the result. A Refresh arriving while another refresh is in
// flight joins it rather than launching a duplicate probe.
func (p *Prober) Refresh(ctx context.Context) *Snapshot {
	return p.refresh(ctx, 0)
}

// Entry returns the current cache entry, or nil when no probe cycle has
// completed yet.
func (p *Prober) Entry() *CacheEntry {
	return p.cache.Load()
}

func (p *Prober) refresh(ctx context.Context, ttl time.Duration) *Snapshot {
	snap, _, shared := p.group.Do("snapshot", func() (any, error) {
		// Re-check after winning the flight: a refresh that completed while
		// this caller was queued satisfies it.
		if ttl > 0 {
			if entry := p.cache.Load(); entry != nil && time.Since(entry.CapturedAt) <= ttl {
				return entry.Snapshot, nil
			}
		}
		snapshot := p.Probe(ctx, p.refreshKeys(), p.sourceTimeout)
		p.cache.Store(&CacheEntry{Snapshot: snapshot, CapturedAt: time.Now()})
		metrics.CacheLookups.WithLabelValues("refresh").Inc()
		return snapshot, nil
	})
	if shared {
		metrics.CacheLookups.WithLabelValues("shared").Inc()
	}
	return snap.(*Snapshot)
}

// refreshKeys is the union of every registered key and every key tracked by
// the previous snapshot. A previously-tracked key whose source has since
// been removed stays in the set and resolves to an ErrNoSource fact.
func (p *Prober) refreshKeys() []string {
	keys := p.Known()
	entry := p.cache.Load()
	if entry == nil {
		return keys
	}

	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range entry.Snapshot.Keys() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}
