// Package tca9554 provides a driver for the TCA9554 8-bit I2C I/O expander.
//
// Pins are numbered 1..8, matching the EXIO labels on boards that carry the
// part. Pin arguments are checked before any bus transaction.
//
// Read-modify-write helpers (SetPin, Mode, Toggle) are not atomic with
// respect to other bus masters driving the same expander.
package tca9554

import (
	"errors"

	"tinygo.org/x/drivers"
)

// I2C address with A0..A2 tied low.
const Address = 0x20

// Registers.
const (
	RegInput    = 0x00
	RegOutput   = 0x01
	RegPolarity = 0x02
	RegConfig   = 0x03 // 1 = input, 0 = output
)

// Errors returned by the driver.
var (
	ErrInvalidPin     = errors.New("tca9554: pin out of range")
	ErrInvalidAddress = errors.New("tca9554: invalid address")
	ErrBus            = errors.New("tca9554: bus transfer failed")
)

type busError struct{ err error }

func (e busError) Error() string        { return "tca9554: " + e.err.Error() }
func (e busError) Unwrap() error        { return e.err }
func (e busError) Is(target error) bool { return target == ErrBus }

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x20 if zero.
	Address uint16
	// Inputs is the direction mask written by Configure, bit n-1 for pin n.
	// Zero makes every pin an output.
	Inputs uint8
	// Output, if non-nil, is written to the output register before the
	// direction is applied so outputs come up at a known level.
	Output *uint8
}

// Device wraps an I2C connection to a TCA9554.
type Device struct {
	bus     drivers.I2C
	Address uint16

	w [2]byte
	r [1]byte
}

// New creates a new TCA9554 connection. It does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address}
}

// Configure applies cfg: optional output levels, then the direction mask.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address > 0x7F {
		return ErrInvalidAddress
	}
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.Output != nil {
		if err := d.WriteRegister(RegOutput, *cfg.Output); err != nil {
			return err
		}
	}
	return d.WriteRegister(RegConfig, cfg.Inputs)
}

// ReadRegister reads one register.
func (d *Device) ReadRegister(reg uint8) (uint8, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.Address, d.w[:1], d.r[:]); err != nil {
		return 0, busError{err}
	}
	return d.r[0], nil
}

// WriteRegister writes one register.
func (d *Device) WriteRegister(reg, v uint8) error {
	d.w[0] = reg
	d.w[1] = v
	if err := d.bus.Tx(d.Address, d.w[:2], nil); err != nil {
		return busError{err}
	}
	return nil
}

func mask(pin int) (uint8, error) {
	if pin < 1 || pin > 8 {
		return 0, ErrInvalidPin
	}
	return 1 << (pin - 1), nil
}

func (d *Device) update(reg uint8, m uint8, set bool) error {
	v, err := d.ReadRegister(reg)
	if err != nil {
		return err
	}
	if set {
		v |= m
	} else {
		v &^= m
	}
	return d.WriteRegister(reg, v)
}

// Mode sets the direction of one pin.
func (d *Device) Mode(pin int, input bool) error {
	m, err := mask(pin)
	if err != nil {
		return err
	}
	return d.update(RegConfig, m, input)
}

// SetPin drives one output pin.
func (d *Device) SetPin(pin int, high bool) error {
	m, err := mask(pin)
	if err != nil {
		return err
	}
	return d.update(RegOutput, m, high)
}

// Pin reads the input level of one pin.
func (d *Device) Pin(pin int) (bool, error) {
	m, err := mask(pin)
	if err != nil {
		return false, err
	}
	v, err := d.ReadRegister(RegInput)
	if err != nil {
		return false, err
	}
	return v&m != 0, nil
}

// SetPins writes all output levels at once.
func (d *Device) SetPins(v uint8) error { return d.WriteRegister(RegOutput, v) }

// Pins reads all input levels.
func (d *Device) Pins() (uint8, error) { return d.ReadRegister(RegInput) }

// Toggle inverts one output based on its current input level.
func (d *Device) Toggle(pin int) error {
	level, err := d.Pin(pin)
	if err != nil {
		return err
	}
	return d.SetPin(pin, !level)
}

// ResetLine returns a setter for one output pin, in the shape expected by
// driver reset hooks. An invalid pin fails on first use.
func (d *Device) ResetLine(pin int) func(level bool) error {
	return func(level bool) error { return d.SetPin(pin, level) }
}
