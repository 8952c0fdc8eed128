package spd2010

import "sync/atomic"

// Latch is the interrupt edge latch: set by the ISR, consumed by Poll. It is
// the only driver state shared between interrupt and poll context.
type Latch struct {
	v uint32
}

// Set marks an edge. Constant time, no allocation, never blocks.
func (l *Latch) Set() { atomic.StoreUint32(&l.v, 1) }

// Pending reports whether an edge is latched.
func (l *Latch) Pending() bool { return atomic.LoadUint32(&l.v) != 0 }

// take clears the latch and reports whether it was set. Edges arriving after
// take are kept for the next poll.
func (l *Latch) take() bool { return atomic.SwapUint32(&l.v, 0) != 0 }
