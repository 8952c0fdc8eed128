// services/touch/internal/gpioirq/irq.go
package gpioirq

import (
	"errors"
	"sync"
	"sync/atomic"

	"touchcode-go/services/touch/internal/halcore"
)

var ErrInUse = errors.New("gpioirq: pin already registered")

// Watcher routes pin edges to latch-style handlers. The registered handler
// runs in the pin's interrupt context, so it must only flip flags; the
// watcher adds nothing but an edge counter around it.
type Watcher struct {
	mu     sync.Mutex
	inputs map[int]*watch // pin number -> watch

	edges uint32
}

type watch struct {
	pin  halcore.IRQPin
	edge halcore.Edge
}

func New() *Watcher {
	return &Watcher{inputs: map[int]*watch{}}
}

// Register arms pin for edge and calls set on every matching edge. The
// returned cancel disarms the pin; it is safe to call more than once.
func (w *Watcher) Register(pin halcore.IRQPin, edge halcore.Edge, set func()) (func(), error) {
	if edge == halcore.EdgeNone {
		return func() {}, nil
	}
	n := pin.Number()

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inputs[n]; ok {
		return nil, ErrInUse
	}

	// ISR handler: one atomic add and the caller's latch set.
	handler := func() {
		atomic.AddUint32(&w.edges, 1)
		set()
	}
	if err := pin.SetIRQ(edge, handler); err != nil {
		return nil, err
	}
	wh := &watch{pin: pin, edge: edge}
	w.inputs[n] = wh

	return func() {
		w.mu.Lock()
		if cur, ok := w.inputs[n]; ok && cur == wh {
			_ = cur.pin.ClearIRQ()
			delete(w.inputs, n)
		}
		w.mu.Unlock()
	}, nil
}

// Edges returns the number of edges delivered since creation.
func (w *Watcher) Edges() uint32 { return atomic.LoadUint32(&w.edges) }

// Armed reports whether pin number n is registered.
func (w *Watcher) Armed(n int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.inputs[n]
	return ok
}
