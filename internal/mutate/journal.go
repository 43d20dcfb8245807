package mutate

import "sync"

// Journal captures each target's first-seen value before an action changes
// it. It backs "pre-session" restore mode: undo sub-steps consult the
// journal for the value to put back. Only the first record for a key
// sticks, so repeated applies never overwrite the true pre-session value
// (which is what keeps double-apply idempotent from the journal's point of
// view).
type Journal struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewJournal creates an empty Journal.
func NewJournal() *Journal {
	return &Journal{entries: make(map[string]string)}
}

// RecordOnce stores value under key unless the key was already recorded.
func (j *Journal) RecordOnce(key, value string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, exists := j.entries[key]; !exists {
		j.entries[key] = value
	}
}

// Lookup returns the recorded pre-session value for key.
func (j *Journal) Lookup(key string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	v, ok := j.entries[key]
	return v, ok
}

// Len returns the number of journaled targets.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
