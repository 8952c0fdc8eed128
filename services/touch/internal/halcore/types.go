// Package halcore holds the platform contracts the touch service is built on:
// I²C buses looked up by id and GPIO lines looked up by number. Platform
// packages implement them for MCU, Linux and host test builds.
package halcore

import (
	"tinygo.org/x/drivers"
)

// I2CBusFactory resolves a configured bus id ("i2c0", "1", ...) to a bus.
// The returned value follows drivers.I2C so TinyGo machine.I2C and periph.io
// buses plug in unchanged.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// PinFactory resolves a pin number in the platform's numbering.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// Pull is the input bias.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIOPin is one digital line. The touch service uses it as the INT input
// and, on boards without an expander, as the controller's reset output.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// Edge selects which transitions raise an interrupt.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

// IRQPin is a GPIOPin that can call a handler on edges. The handler may run
// in interrupt context: it must not block, allocate or touch a bus.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// OutputLine switches p to an output driven high and returns a setter for
// it, in the shape drivers take for reset lines. Each level is driven through
// ConfigureOutput so a failing write reaches the caller.
func OutputLine(p GPIOPin) (func(level bool) error, error) {
	if err := p.ConfigureOutput(true); err != nil {
		return nil, err
	}
	return p.ConfigureOutput, nil
}
