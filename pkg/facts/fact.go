package facts

import (
	"context"
	"time"
)

// Fact is one named piece of queried system information, with the time it
// was fetched. Value and Err are mutually exclusive: a resolved fact
// carries a value and a nil error, a failed fact carries the error that
// prevented resolution and no value. Use the Resolved and Failed
// constructors to preserve that invariant.
type Fact struct {
	Key       string
	Value     any
	FetchedAt time.Time
	Err       error
}

// Resolved creates a fact carrying a value.
func Resolved(key string, value any, fetchedAt time.Time) Fact {
	return Fact{
		Key:       key,
		Value:     value,
		FetchedAt: fetchedAt,
	}
}

// Failed creates a fact recording why its probe did not produce a value.
func Failed(key string, err error, fetchedAt time.Time) Fact {
	return Fact{
		Key:       key,
		Err:       err,
		FetchedAt: fetchedAt,
	}
}

// OK reports whether the fact resolved with a value.
func (f Fact) OK() bool {
	return f.Err == nil
}

// Schema provides metadata about a fact source.
type Schema struct {
	Key         string
	Description string
}

// Source produces a single fact's value on demand. Implementations wrap the
// concrete OS queries ("get firmware type", "list GPUs", ...); the prober
// never knows how a value is obtained, which keeps the core testable with
// fakes.
type Source interface {
	Describe() Schema
	// Collect fetches the fact value. The prober enforces the per-source
	// deadline via ctx; implementations should honor cancellation but a
	// source that ignores it is simply abandoned at the deadline.
	Collect(ctx context.Context) (any, error)
}

// Derived describes a fact computed synchronously from already-resolved
// facts after the concurrent probe phase. Every input key must have been
// requested and resolved in the same probe cycle; otherwise the derived
// fact is recorded as failed with ErrMissingInput rather than inferred
// from partial data.
type Derived struct {
	Key         string
	Description string
	Inputs      []string
	Compute     func(inputs map[string]any) (any, error)
}
