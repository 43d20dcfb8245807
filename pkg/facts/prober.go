package facts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/systune-io/systune/internal/metrics"
)

const defaultSourceTimeout = 5 * time.Second

// Prober holds the registered fact sources and orchestrates probe cycles.
// Sources run concurrently, each against its own deadline; derived facts
// are computed synchronously once the concurrent phase completes.
type Prober struct {
	mu      sync.RWMutex
	sources map[string]Source
	derived []Derived

	maxConcurrent int
	sourceTimeout time.Duration

	cache atomic.Pointer[CacheEntry]
	group singleflight.Group
}

// Option configures a Prober.
type Option func(*Prober)

// WithMaxConcurrent caps the number of sources collected at once. Zero or
// negative means one worker per requested fact. When capped, pending facts
// queue in request order.
func WithMaxConcurrent(n int) Option {
	return func(p *Prober) { p.maxConcurrent = n }
}

// WithSourceTimeout sets the per-source deadline used by cache refreshes.
func WithSourceTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.sourceTimeout = d
		}
	}
}

// NewProber creates an empty Prober.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		sources:       make(map[string]Source),
		sourceTimeout: defaultSourceTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RegisterSource adds a fact source. A source with the same key replaces
// the previous one.
func (p *Prober) RegisterSource(src Source) {
	p.mu.Lock()
	defer p.mu.Unlock()

	schema := src.Describe()
	p.sources[schema.Key] = src
}

// RegisterDerived adds a derived fact. Derived facts are computed in
// registration order, so a derived fact may use an earlier derived fact as
// input.
func (p *Prober) RegisterDerived(d Derived) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, existing := range p.derived {
		if existing.Key == d.Key {
			p.derived[i] = d
			return
		}
	}
	p.derived = append(p.derived, d)
}

// Known returns every registered fact key, source-backed and derived.
func (p *Prober) Known() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.sources)+len(p.derived))
	for k := range p.sources {
		keys = append(keys, k)
	}
	for _, d := range p.derived {
		if _, dup := p.sources[d.Key]; !dup {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// Probe collects the requested facts concurrently, each source bounded by
// perSourceTimeout, and returns a complete snapshot. Probe never fails:
// a source that errors, panics, or misses its deadline is recorded as a
// failed fact without affecting sibling probes, and a key with no
// registered source is recorded with ErrNoSource. The call returns as soon
// as every requested fact has resolved or timed out.
func (p *Prober) Probe(ctx context.Context, keys []string, perSourceTimeout time.Duration) *Snapshot {
	p.mu.RLock()
	sources := make(map[string]Source, len(p.sources))
	for k, src := range p.sources {
		sources[k] = src
	}
	derived := make([]Derived, len(p.derived))
	copy(derived, p.derived)
	p.mu.RUnlock()

	derivedByKey := make(map[string]Derived, len(derived))
	for _, d := range derived {
		derivedByKey[d.Key] = d
	}

	requested := make(map[string]bool, len(keys))
	collected := make(map[string]Fact, len(keys))

	g := &errgroup.Group{}
	if p.maxConcurrent > 0 {
		g.SetLimit(p.maxConcurrent)
	}
	results := make(chan Fact, len(keys))

	for _, key := range keys {
		if requested[key] {
			continue
		}
		requested[key] = true

		if _, isDerived := derivedByKey[key]; isDerived {
			continue // computed after the concurrent phase
		}
		src, ok := sources[key]
		if !ok {
			collected[key] = Failed(key, fmt.Errorf("%w: %q", ErrNoSource, key), time.Now())
			metrics.ProbeErrors.WithLabelValues(key, "no_source").Inc()
			continue
		}
		key := key
		g.Go(func() error {
			results <- collectOne(ctx, key, src, perSourceTimeout)
			return nil
		})
	}

	// Sources never propagate errors through the group; failures travel in
	// the facts themselves.
	_ = g.Wait()
	close(results)

	for f := range results {
		collected[f.Key] = f
	}

	// Derived phase. Facts are computed in registration order against the
	// cycle's resolved values, so later derived facts can consume earlier
	// ones.
	for _, d := range derived {
		if !requested[d.Key] {
			continue
		}
		collected[d.Key] = deriveOne(d, collected)
	}

	return newSnapshot(collected, time.Now())
}

// collectOne runs a single source against its own deadline. The source is
// the unit boundary: errors and panics are converted into failed facts, and
// a source that outlives its deadline is abandoned (its eventual result is
// discarded).
func collectOne(parent context.Context, key string, src Source, timeout time.Duration) Fact {
	timer := prometheus.NewTimer(metrics.ProbeLatency.WithLabelValues(key))
	defer timer.ObserveDuration()

	ctx := parent
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	}
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		value, err := src.Collect(ctx)
		ch <- outcome{value: value, err: err}
	}()

	select {
	case out := <-ch:
		now := time.Now()
		if out.err != nil {
			metrics.ProbeErrors.WithLabelValues(key, "source_error").Inc()
			return Failed(key, fmt.Errorf("%w: %v", ErrProbeFailure, out.err), now)
		}
		return Resolved(key, out.value, now)
	case <-ctx.Done():
		now := time.Now()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.ProbeTimeouts.WithLabelValues(key).Inc()
			return Failed(key, fmt.Errorf("%w after %s", ErrProbeTimeout, timeout), now)
		}
		metrics.ProbeErrors.WithLabelValues(key, "canceled").Inc()
		return Failed(key, fmt.Errorf("%w: %v", ErrProbeFailure, ctx.Err()), now)
	}
}

func deriveOne(d Derived, collected map[string]Fact) Fact {
	inputs := make(map[string]any, len(d.Inputs))
	for _, in := range d.Inputs {
		f, ok := collected[in]
		if !ok {
			metrics.ProbeErrors.WithLabelValues(d.Key, "missing_input").Inc()
			return Failed(d.Key, fmt.Errorf("%w: %q was not probed", ErrMissingInput, in), time.Now())
		}
		if !f.OK() {
			metrics.ProbeErrors.WithLabelValues(d.Key, "missing_input").Inc()
			return Failed(d.Key, fmt.Errorf("%w: %q failed: %v", ErrMissingInput, in, f.Err), time.Now())
		}
		inputs[in] = f.Value
	}

	value, err := func() (value any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return d.Compute(inputs)
	}()
	now := time.Now()
	if err != nil {
		metrics.ProbeErrors.WithLabelValues(d.Key, "compute_error").Inc()
		return Failed(d.Key, fmt.Errorf("%w: %v", ErrProbeFailure, err), now)
	}
	return Resolved(d.Key, value, now)
}
