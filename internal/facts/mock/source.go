package mock

import (
	"context"
	"time"

	"github.com/systune-io/systune/pkg/facts"
)

// Source implements facts.Source with controllable values for tests.
type Source struct {
	Key         string
	Value       any
	Err         error
	Delay       time.Duration
	Description string
}

var _ facts.Source = (*Source)(nil)

// New creates a new mock source with the given key and value.
func New(key string, value any, description string) *Source {
	return &Source{
		Key:         key,
		Value:       value,
		Description: description,
	}
}

// WithError configures the source to return the specified error.
func (s *Source) WithError(err error) *Source {
	s.Err = err
	return s
}

// WithDelay makes Collect block for d before returning, ignoring the
// context — that is deliberate, so tests can exercise the prober's
// deadline abandonment against a source that never notices cancellation.
func (s *Source) WithDelay(d time.Duration) *Source {
	s.Delay = d
	return s
}

// Describe implements facts.Source.
func (s *Source) Describe() facts.Schema {
	return facts.Schema{
		Key:         s.Key,
		Description: s.Description,
	}
}

// Collect implements facts.Source.
func (s *Source) Collect(ctx context.Context) (any, error) {
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Value, nil
}
