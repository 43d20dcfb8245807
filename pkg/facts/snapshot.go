package facts

import (
	"sort"
	"time"
)

// Snapshot is the immutable result of one probe cycle: every requested fact
// is present, either resolved or individually failed. Consumers never see a
// partially-filled snapshot; the prober only publishes complete cycles.
type Snapshot struct {
	facts   map[string]Fact
	takenAt time.Time
}

func newSnapshot(collected map[string]Fact, takenAt time.Time) *Snapshot {
	return &Snapshot{facts: collected, takenAt: takenAt}
}

// Fact returns the fact for key, if the snapshot tracks it.
func (s *Snapshot) Fact(key string) (Fact, bool) {
	f, ok := s.facts[key]
	return f, ok
}

// Keys returns every tracked fact key in sorted order, including keys whose
// probe failed.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.facts))
	for k := range s.facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of tracked facts.
func (s *Snapshot) Len() int {
	return len(s.facts)
}

// TakenAt returns when the probe cycle producing this snapshot completed.
func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// Values returns the resolved fact values keyed by fact key, suitable for
// predicate and policy evaluation. Failed facts are omitted. The returned
// map is a copy, and slice-typed values are copied too, so callers cannot
// mutate the snapshot through it.
func (s *Snapshot) Values() map[string]any {
	values := make(map[string]any, len(s.facts))
	for k, f := range s.facts {
		if !f.OK() {
			continue
		}
		if v, ok := f.Value.([]string); ok {
			cp := make([]string, len(v))
			copy(cp, v)
			values[k] = cp
			continue
		}
		values[k] = f.Value
	}
	return values
}

// Bool returns the fact's value as a bool. The second result is false when
// the fact is missing, failed, or not a bool.
func (s *Snapshot) Bool(key string) (bool, bool) {
	f, ok := s.facts[key]
	if !ok || !f.OK() {
		return false, false
	}
	v, ok := f.Value.(bool)
	return v, ok
}

// String returns the fact's value as a string. The second result is false
// when the fact is missing, failed, or not a string.
func (s *Snapshot) String(key string) (string, bool) {
	f, ok := s.facts[key]
	if !ok || !f.OK() {
		return "", false
	}
	v, ok := f.Value.(string)
	return v, ok
}

// Strings returns the fact's value as an ordered string slice. The second
// result is false when the fact is missing, failed, or not a []string. The
// returned slice is a copy.
func (s *Snapshot) Strings(key string) ([]string, bool) {
	f, ok := s.facts[key]
	if !ok || !f.OK() {
		return nil, false
	}
	v, ok := f.Value.([]string)
	if !ok {
		return nil, false
	}
	out := make([]string, len(v))
	copy(out, v)
	return out, true
}
