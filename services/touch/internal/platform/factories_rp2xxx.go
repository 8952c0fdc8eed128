//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"sync"

	"touchcode-go/services/touch/internal/halcore"

	"tinygo.org/x/drivers"
)

// touchI2CFrequency is the SPD2010's fast-mode ceiling.
const touchI2CFrequency = 400 * machine.KHz

type rp2Bus struct {
	bus      *machine.I2C
	sda, scl machine.Pin
}

var rp2Buses = map[string]rp2Bus{
	"i2c0": {machine.I2C0, machine.I2C0_SDA_PIN, machine.I2C0_SCL_PIN},
	"i2c1": {machine.I2C1, machine.I2C1_SDA_PIN, machine.I2C1_SCL_PIN},
}

// DefaultI2CFactory serves i2c0 and i2c1 on the board-default pins. A bus is
// configured the first time it is asked for, so an unused controller keeps
// its pins free.
func DefaultI2CFactory() (halcore.I2CBusFactory, error) {
	return &rp2I2CFactory{ready: map[string]drivers.I2C{}}, nil
}

type rp2I2CFactory struct {
	mu    sync.Mutex
	ready map[string]drivers.I2C
}

func (f *rp2I2CFactory) ByID(id string) (drivers.I2C, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.ready[id]; ok {
		return b, true
	}
	def, ok := rp2Buses[id]
	if !ok {
		return nil, false
	}
	err := def.bus.Configure(machine.I2CConfig{
		Frequency: touchI2CFrequency,
		SDA:       def.sda,
		SCL:       def.scl,
	})
	if err != nil {
		return nil, false
	}
	f.ready[id] = def.bus
	return def.bus, true
}

// DefaultPinFactory maps numbers to machine.Pin(n) in GP numbering.
func DefaultPinFactory() (halcore.PinFactory, error) { return rp2PinFactory{}, nil }

type rp2PinFactory struct{}

func (rp2PinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	if n < 0 || n > 28 {
		return nil, false
	}
	return rp2Pin(n), true
}

type rp2Pin machine.Pin

func (r rp2Pin) pin() machine.Pin { return machine.Pin(r) }

func (r rp2Pin) ConfigureInput(pull halcore.Pull) error {
	mode := machine.PinInput
	if pull == halcore.PullUp {
		mode = machine.PinInputPullup
	} else if pull == halcore.PullDown {
		mode = machine.PinInputPulldown
	}
	r.pin().Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r rp2Pin) ConfigureOutput(initial bool) error {
	r.pin().Set(initial)
	r.pin().Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (r rp2Pin) Set(level bool) { r.pin().Set(level) }
func (r rp2Pin) Get() bool      { return r.pin().Get() }
func (r rp2Pin) Number() int    { return int(r) }

// SetIRQ hooks the handler straight into the GPIO interrupt; the closure adds
// no allocation per edge.
func (r rp2Pin) SetIRQ(edge halcore.Edge, handler func()) error {
	var change machine.PinChange
	switch edge {
	case halcore.EdgeRising:
		change = machine.PinRising
	case halcore.EdgeFalling:
		change = machine.PinFalling
	case halcore.EdgeBoth:
		change = machine.PinToggle
	default:
		return r.ClearIRQ()
	}
	return r.pin().SetInterrupt(change, func(machine.Pin) { handler() })
}

func (r rp2Pin) ClearIRQ() error { return r.pin().SetInterrupt(0, nil) }
