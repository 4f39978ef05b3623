package persistence

import (
	"sync"

	"github.com/google/uuid"
)

// versionTracker remembers the version a row carried when it was read.
// Aggregates bump their version on every mutation, so after several
// in-transaction mutations Version-1 no longer names the row that was
// loaded; the lock check must compare against the loaded version.
type versionTracker struct {
	mu       sync.Mutex
	versions map[uuid.UUID]int
}

func newVersionTracker() *versionTracker {
	return &versionTracker{versions: make(map[uuid.UUID]int)}
}

func (t *versionTracker) record(id uuid.UUID, version int) {
	t.mu.Lock()
	t.versions[id] = version
	t.mu.Unlock()
}

// get returns the recorded version for id, or fallback when the aggregate
// was not loaded through this repository instance.
func (t *versionTracker) get(id uuid.UUID, fallback int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.versions[id]; ok {
		return v
	}
	return fallback
}
