package config

import (
	"touchcode-go/errcode"
	"touchcode-go/services/touch/internal/util"
)

// Touch describes one SPD2010 panel and how it is wired.
type Touch struct {
	Bus     string `json:"bus"`               // e.g. "i2c0", or "1" on Linux
	Address uint16 `json:"address,omitempty"` // 7-bit; 0 = 0x53

	// IntPin is the INT line in the platform's pin numbering. Ignored when
	// Polled is set.
	IntPin int  `json:"int_pin"`
	Polled bool `json:"polled,omitempty"`

	Reset *Reset `json:"reset,omitempty"`

	MaxPoints      int       `json:"max_points,omitempty"`
	MaxTransfer    int       `json:"max_transfer,omitempty"`
	PollIntervalMS int       `json:"poll_interval_ms,omitempty"`
	Transform      Transform `json:"transform,omitempty"`
}

// Reset names the line driving the controller's reset: an output of a
// TCA9554 expander, or a host GPIO when GPIO is set.
type Reset struct {
	Bus     string `json:"bus,omitempty"`     // expander bus; defaults to Touch.Bus
	Address uint16 `json:"address,omitempty"` // expander address; 0 = 0x20
	Pin     int    `json:"pin"`               // EXIO number 1..8, or GPIO number
	GPIO    bool   `json:"gpio,omitempty"`
}

// Transform maps panel coordinates to display coordinates.
type Transform struct {
	RawWidth  uint16 `json:"raw_width,omitempty"`
	RawHeight uint16 `json:"raw_height,omitempty"`
	Width     uint16 `json:"width,omitempty"`
	Height    uint16 `json:"height,omitempty"`
	SwapXY    bool   `json:"swap_xy,omitempty"`
	MirrorX   bool   `json:"mirror_x,omitempty"`
	MirrorY   bool   `json:"mirror_y,omitempty"`
}

const (
	DefaultBus            = "i2c0"
	DefaultAddress        = 0x53
	DefaultMaxPoints      = 5
	DefaultPollIntervalMS = 16
)

// Default returns the configuration of the reference 1.46" round board:
// INT on GPIO 4, reset on expander EXIO1.
func Default() Touch {
	return Touch{
		Bus:            DefaultBus,
		Address:        DefaultAddress,
		IntPin:         4,
		Reset:          &Reset{Pin: 1},
		MaxPoints:      DefaultMaxPoints,
		PollIntervalMS: DefaultPollIntervalMS,
		Transform:      Transform{Width: 412, Height: 412},
	}
}

// Parse decodes src (bytes, string or a generic map) over the defaults and
// validates the result.
func Parse(src any) (Touch, error) {
	c := Default()
	if err := util.DecodeJSON(src, &c); err != nil {
		return Touch{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "malformed", Err: err}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Touch{}, err
	}
	return c, nil
}

func (c *Touch) applyDefaults() {
	if c.Bus == "" {
		c.Bus = DefaultBus
	}
	if c.Address == 0 {
		c.Address = DefaultAddress
	}
	if c.MaxPoints == 0 {
		c.MaxPoints = DefaultMaxPoints
	}
	if c.PollIntervalMS == 0 {
		c.PollIntervalMS = DefaultPollIntervalMS
	}
	if c.Reset != nil && !c.Reset.GPIO && c.Reset.Bus == "" {
		c.Reset.Bus = c.Bus
	}
}

// Validate rejects out-of-range values. Zero values mean "default".
func (c Touch) Validate() error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: msg}
	}
	switch {
	case c.Address > 0x7F:
		return bad("address out of range")
	case !c.Polled && c.IntPin < 0:
		return bad("int_pin out of range")
	case c.MaxPoints < 0 || c.MaxPoints > 10:
		return bad("max_points out of range")
	case c.MaxTransfer < 0 || c.MaxTransfer > 64:
		return bad("max_transfer out of range")
	case c.PollIntervalMS < 0:
		return bad("poll_interval_ms out of range")
	}
	if r := c.Reset; r != nil {
		switch {
		case r.GPIO && r.Pin < 0:
			return bad("reset.pin out of range")
		case r.GPIO && !c.Polled && r.Pin == c.IntPin:
			return bad("reset.pin shares int_pin")
		case r.GPIO:
		case r.Address > 0x7F:
			return bad("reset.address out of range")
		case r.Pin < 1 || r.Pin > 8:
			return bad("reset.pin out of range")
		}
	}
	return nil
}
