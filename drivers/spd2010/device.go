// Package spd2010 provides a driver for the SPD2010 capacitive touch
// controller.
//
// The driver is split along the interrupt line:
//
//	d.HandleInterrupt()   // ISR body: sets the edge latch, nothing else
//	ran, err := d.Poll()  // poll side: status, commands, report assembly
//	t := d.Touch()        // consumer: read-and-clear of the latest report
//
// All bus I/O happens in Poll. HandleInterrupt is allocation free and may run
// in interrupt context. Poll must not be called concurrently with itself.
//
// Registers are addressed with 16 bits, high byte first, so I2C.Tx is used as
// a write of the register address followed by a repeated-start read.
package spd2010

import (
	"encoding/binary"
	"errors"
	"time"

	"touchcode-go/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

// Errors returned by the driver.
var (
	ErrBus          = errors.New("spd2010: bus transfer failed")
	ErrShortRead    = errors.New("spd2010: short payload")
	ErrProtocol     = errors.New("spd2010: protocol error")
	ErrInvalidParam = errors.New("spd2010: invalid parameter")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x53 if zero.
	Address uint16
	// MaxPoints caps the points carried by a Report. Default 5, at most 10.
	MaxPoints int
	// MaxTransfer bounds the bytes read by a single point-data transfer.
	// Default and maximum 64.
	MaxTransfer int
	// Settle is the delay after each command write. Default 200 µs.
	Settle time.Duration
	// Sleep is used for settle and reset delays. Default time.Sleep.
	Sleep func(time.Duration)
	// Reset drives the controller's reset line. Optional; when set,
	// Configure pulses it low then high.
	Reset func(level bool) error
	// Transform maps panel coordinates onto display coordinates.
	Transform Transform
	// Polled runs a cycle on every Poll regardless of the edge latch. For
	// boards without the INT line wired.
	Polled bool
}

// Transform maps raw panel coordinates onto the display.
type Transform struct {
	// RawWidth/RawHeight are the panel's native extents. When set together
	// with Width/Height, coordinates are scaled.
	RawWidth, RawHeight uint16
	// Width/Height are the display extents after SwapXY. Zero disables
	// clamping and mirroring on that axis.
	Width, Height uint16
	SwapXY        bool
	MirrorX       bool
	MirrorY       bool
}

func (t Transform) apply(x, y uint16) (uint16, uint16) {
	if t.SwapXY {
		x, y = y, x
	}
	x = mathx.ScaleU16(x, t.RawWidth, t.Width)
	y = mathx.ScaleU16(y, t.RawHeight, t.Height)
	if t.Width > 0 {
		x = mathx.Clamp(x, 0, t.Width-1)
		if t.MirrorX {
			x = mathx.Mirror(x, t.Width)
		}
	}
	if t.Height > 0 {
		y = mathx.Clamp(y, 0, t.Height-1)
		if t.MirrorY {
			y = mathx.Mirror(y, t.Height)
		}
	}
	return x, y
}

// Stats counts cycle outcomes. It is owned by the polling side.
type Stats struct {
	Cycles   uint32
	Failures uint32
	Reports  uint32
	// Reports whose device count exceeded MaxPoints.
	Clipped uint32
	Actions [actionCount]uint32
}

// Device wraps an I2C connection to an SPD2010 controller.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg   Config
	latch Latch
	buf   Buffer
	stats Stats

	// Press/release tracking across reports.
	down         bool
	downX, downY uint16
	upX, upY     uint16

	// Fixed buffers to avoid per-cycle heap allocations.
	w       [2 + 2]byte
	status  [statusLen]byte
	hdp     [hdpStatusLen]byte
	xfer    [xferLen]byte
	scratch [scratchLen]byte
}

const xferLen = 64

// New creates a new SPD2010 connection. The I2C bus must already be
// configured. This function only creates the Device object; it does not
// touch the device.
func New(bus drivers.I2C) *Device {
	d := &Device{
		bus:     bus,
		Address: AddressDefault,
	}
	d.cfg = d.withDefaults(Config{})
	return d
}

// Configure validates cfg, applies defaults and pulses the reset line if one
// is configured. Invalid parameters are rejected before any bus transaction.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address > 0x7F {
		return ErrInvalidParam
	}
	if cfg.MaxPoints < 0 || cfg.MaxPoints > MaxStoredPoints {
		return ErrInvalidParam
	}
	if cfg.MaxTransfer < 0 || cfg.MaxTransfer > xferLen {
		return ErrInvalidParam
	}
	if cfg.Settle < 0 {
		return ErrInvalidParam
	}
	d.cfg = d.withDefaults(cfg)
	d.Address = d.cfg.Address

	if d.cfg.Reset != nil {
		if err := d.cfg.Reset(false); err != nil {
			return err
		}
		d.cfg.Sleep(resetPulse)
		if err := d.cfg.Reset(true); err != nil {
			return err
		}
		d.cfg.Sleep(resetPulse)
	}
	return nil
}

func (d *Device) withDefaults(c Config) Config {
	if c.Address == 0 {
		c.Address = AddressDefault
	}
	if c.MaxPoints == 0 {
		c.MaxPoints = DefaultMaxPoints
	}
	if c.MaxTransfer == 0 {
		c.MaxTransfer = xferLen
	}
	if c.Settle == 0 {
		c.Settle = DefaultSettle
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	return c
}

// HandleInterrupt records a falling edge on the INT line. It is safe to call
// from interrupt context.
func (d *Device) HandleInterrupt() { d.latch.Set() }

// Latch exposes the edge latch for callers that register their own ISR.
func (d *Device) Latch() *Latch { return &d.latch }

// Poll runs one acquisition cycle if an edge was latched (or on every call in
// polled mode) and reports whether a cycle ran. On failure the latch is
// re-armed so the next Poll retries the whole cycle.
func (d *Device) Poll() (bool, error) {
	if !d.latch.take() && !d.cfg.Polled {
		return false, nil
	}
	if err := d.Cycle(); err != nil {
		d.latch.Set()
		return true, err
	}
	return true, nil
}

// ReadStatus reads and decodes the status register.
func (d *Device) ReadStatus() (Status, error) {
	if err := d.readReg(regStatus, d.status[:]); err != nil {
		return Status{}, err
	}
	return DecodeStatus(d.status[:])
}

// Take returns the latest report and clears its pending point count.
func (d *Device) Take() Report { return d.buf.Take() }

// Touch returns the consumer view of the latest report and clears it.
func (d *Device) Touch() Touch { return d.buf.Take().Touch() }

// ReadTouchPoint implements touch.Pointer. It does not perform bus I/O; the
// point comes from the latest completed cycle. Z is zero when not pressed.
func (d *Device) ReadTouchPoint() touch.Point {
	t := d.Touch()
	if !t.Pressed {
		return touch.Point{}
	}
	return touch.Point{X: int(t.X), Y: int(t.Y), Z: int(mathx.Clamp(t.Weight, 1, 0xFF))}
}

// Stats returns a copy of the cycle counters. Call from the polling side.
func (d *Device) Stats() Stats { return d.stats }

// Firmware identifies the controller firmware.
type Firmware struct {
	Dummy   uint32
	DVer    uint16
	PID     uint16
	ICNameL uint32
	ICNameH uint32
}

// ReadFirmware reads the firmware identification block.
func (d *Device) ReadFirmware() (Firmware, error) {
	b := d.xfer[:firmwareLen]
	if err := d.readReg(regFirmware, b); err != nil {
		return Firmware{}, err
	}
	return Firmware{
		Dummy:   binary.LittleEndian.Uint32(b[0:4]),
		DVer:    binary.LittleEndian.Uint16(b[4:6]),
		PID:     binary.LittleEndian.Uint16(b[8:10]),
		ICNameL: binary.LittleEndian.Uint32(b[10:14]),
		ICNameH: binary.LittleEndian.Uint32(b[14:18]),
	}, nil
}
