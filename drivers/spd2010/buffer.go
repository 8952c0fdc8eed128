package spd2010

import "sync"

// Buffer holds the latest report between the polling side and the consumer.
// Reports are replaced whole, so a consumer sees either a published report
// exactly or the empty state.
type Buffer struct {
	mu      sync.Mutex
	r       Report
	pending bool
}

// Publish overwrites the held report.
func (b *Buffer) Publish(r Report) {
	b.mu.Lock()
	b.r = r
	b.pending = true
	b.mu.Unlock()
}

// Take returns the held report and resets its point count. With nothing
// pending it returns the empty report.
func (b *Buffer) Take() Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pending {
		return Report{}
	}
	out := b.r
	b.r.Count = 0
	b.pending = false
	return out
}

// Pending returns the point count a Take would return.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pending {
		return 0
	}
	return int(b.r.Count)
}
