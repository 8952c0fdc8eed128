//go:build !tinygo

package platform

import (
	"sync"

	"touchcode-go/services/touch/internal/halcore"

	"tinygo.org/x/drivers"
)

// HostI2C is a bus with nothing attached: writes are accepted, reads return
// zeros. A controller read over it looks idle in every status bit, so the
// service runs without cycling.
type HostI2C struct {
	mu     sync.Mutex
	LastTx struct {
		Addr uint16
		W    []byte
		Rn   int
	}
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastTx.Addr = addr
	h.LastTx.W = append(h.LastTx.W[:0], w...)
	h.LastTx.Rn = len(r)
	clear(r)
	return nil
}

type busMap map[string]drivers.I2C

func (m busMap) ByID(id string) (drivers.I2C, bool) {
	b, ok := m[id]
	return b, ok
}

// NewI2CFactory serves the given buses by id, e.g. a simulator on the host.
func NewI2CFactory(buses map[string]drivers.I2C) halcore.I2CBusFactory {
	return busMap(buses)
}

// FakePin is a host GPIO line. Driving it (Set, Pulse) fires the registered
// handler on a matching edge, which is how tests stand in for a controller
// pulling INT low. Levels written while the pin is an output are recorded.
type FakePin struct {
	mu      sync.Mutex
	number  int
	level   bool
	output  bool
	pull    halcore.Pull
	irqEdge halcore.Edge
	irqFunc func()
	written []bool
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

func (p *FakePin) ConfigureInput(pull halcore.Pull) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = false
	p.pull = pull
	switch pull {
	case halcore.PullUp:
		p.level = true
	case halcore.PullDown:
		p.level = false
	}
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.output = true
	p.mu.Unlock()
	p.Set(initial)
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	if p.output {
		p.written = append(p.written, level)
	}
	var fire func()
	if matches(p.irqEdge, old, level) {
		fire = p.irqFunc
	}
	p.mu.Unlock()
	// Outside the lock: the handler may read the pin.
	if fire != nil {
		fire()
	}
}

// Pulse drives the line low then releases it, as an open-drain INT does.
func (p *FakePin) Pulse() {
	p.Set(false)
	p.Set(true)
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) SetIRQ(edge halcore.Edge, handler func()) error {
	p.mu.Lock()
	p.irqEdge = edge
	p.irqFunc = handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error { return p.SetIRQ(halcore.EdgeNone, nil) }

// IRQ reports the armed edge.
func (p *FakePin) IRQ() halcore.Edge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.irqEdge
}

// Written returns the levels driven while the pin was an output.
func (p *FakePin) Written() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.written...)
}

func matches(armed halcore.Edge, old, new bool) bool {
	switch {
	case old == new:
		return false
	case armed == halcore.EdgeBoth:
		return true
	case new:
		return armed == halcore.EdgeRising
	default:
		return armed == halcore.EdgeFalling
	}
}

// HostPinFactory hands out one *FakePin per number, created on first use.
type HostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *HostPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	if n < 0 {
		return nil, false
	}
	return f.Get(n), true
}

// Get returns the pin for n so tests can drive edges on it.
func (f *HostPinFactory) Get(n int) *FakePin {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = NewFakePin(n)
		f.pins[n] = p
	}
	return p
}
