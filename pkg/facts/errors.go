package facts

import "errors"

// Standard error types for probe outcomes. They are captured per-fact
// inside a Snapshot and never returned past Probe; callers unwrap them
// from Fact.Err with errors.Is.
var (
	ErrProbeTimeout = errors.New("facts: probe timed out")
	ErrProbeFailure = errors.New("facts: probe failed")
	ErrNoSource     = errors.New("facts: no source registered")
	ErrMissingInput = errors.New("facts: derived fact input unavailable")
)
