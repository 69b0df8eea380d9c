package pixel

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Tracker records buffers for bulk release in tests and batch jobs. It is
// a diagnostic aid; call sites still release their own intermediates.
type Tracker struct {
	mu      sync.Mutex
	buffers []Buffer
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Track records b and returns it.
func (t *Tracker) Track(b Buffer) Buffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffers = append(t.buffers, b)
	return b
}

// Live is the number of tracked buffers not yet bulk-released.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffers)
}

// ReleaseAll releases every tracked buffer and forgets them.
func (t *Tracker) ReleaseAll() int {
	t.mu.Lock()
	buffers := t.buffers
	t.buffers = nil
	t.mu.Unlock()

	for _, b := range buffers {
		b.Release()
	}
	if len(buffers) > 0 {
		log.WithField("count", len(buffers)).Debug("released tracked buffers")
	}
	return len(buffers)
}
