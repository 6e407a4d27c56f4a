package sequence

import "sync"

// Tracker hands out monotonic per-resource request numbers and decides
// whether a response may still be applied. A response is current only while
// no newer request for the same resource has been issued.
type Tracker struct {
	mu     sync.Mutex
	issued map[string]uint64
}

func NewTracker() *Tracker {
	return &Tracker{issued: make(map[string]uint64)}
}

// Next records a new request for resource and returns its number.
func (t *Tracker) Next(resource string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued[resource]++
	return t.issued[resource]
}

// Current reports whether seq is the latest request issued for resource.
func (t *Tracker) Current(resource string, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issued[resource] == seq
}

// Apply runs fn under the tracker lock if seq is still current, so no newer
// Next can interleave between the check and the update.
func (t *Tracker) Apply(resource string, seq uint64, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.issued[resource] != seq {
		return false
	}
	fn()
	return true
}

// Invalidate makes every outstanding request for resource stale.
func (t *Tracker) Invalidate(resource string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued[resource]++
}
