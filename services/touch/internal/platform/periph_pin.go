// services/touch/internal/platform/periph_pin.go
//go:build !tinygo

package platform

import (
	"sync"
	"time"

	"touchcode-go/services/touch/internal/halcore"

	"periph.io/x/conn/v3/gpio"
)

// edgePoll bounds how long a ClearIRQ waits for the edge goroutine.
const edgePoll = 100 * time.Millisecond

// PeriphPin adapts a periph.io pin to halcore.IRQPin. Linux has no user-space
// interrupts, so SetIRQ starts a goroutine blocked in WaitForEdge which calls
// the handler on each edge and does nothing else.
type PeriphPin struct {
	p    gpio.PinIO
	n    int
	pull gpio.Pull

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewPeriphPin(p gpio.PinIO, n int) *PeriphPin {
	return &PeriphPin{p: p, n: n, pull: gpio.PullNoChange}
}

func toPull(p halcore.Pull) gpio.Pull {
	switch p {
	case halcore.PullUp:
		return gpio.PullUp
	case halcore.PullDown:
		return gpio.PullDown
	default:
		return gpio.Float
	}
}

func toEdge(e halcore.Edge) gpio.Edge {
	switch e {
	case halcore.EdgeRising:
		return gpio.RisingEdge
	case halcore.EdgeFalling:
		return gpio.FallingEdge
	case halcore.EdgeBoth:
		return gpio.BothEdges
	default:
		return gpio.NoEdge
	}
}

func (r *PeriphPin) ConfigureInput(pull halcore.Pull) error {
	r.pull = toPull(pull)
	return r.p.In(r.pull, gpio.NoEdge)
}

func (r *PeriphPin) ConfigureOutput(initial bool) error {
	return r.p.Out(gpio.Level(initial))
}

func (r *PeriphPin) Set(level bool) { _ = r.p.Out(gpio.Level(level)) }
func (r *PeriphPin) Get() bool      { return r.p.Read() == gpio.High }
func (r *PeriphPin) Number() int    { return r.n }

func (r *PeriphPin) SetIRQ(edge halcore.Edge, handler func()) error {
	if err := r.ClearIRQ(); err != nil {
		return err
	}
	if err := r.p.In(r.pull, toEdge(edge)); err != nil {
		return err
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	r.mu.Lock()
	r.stop, r.done = stop, done
	r.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if r.p.WaitForEdge(edgePoll) {
				handler()
			}
		}
	}()
	return nil
}

func (r *PeriphPin) ClearIRQ() error {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return r.p.In(r.pull, gpio.NoEdge)
}
