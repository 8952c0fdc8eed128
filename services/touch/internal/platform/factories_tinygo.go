//go:build tinygo && !rp2040 && !rp2350

package platform

import (
	"touchcode-go/errcode"
	"touchcode-go/services/touch/internal/halcore"
)

// Firmware for a target without a factory fails at Build instead of running
// against a bus that is not there.

func DefaultI2CFactory() (halcore.I2CBusFactory, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "platform", Msg: "no i2c buses for this target"}
}

func DefaultPinFactory() (halcore.PinFactory, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "platform", Msg: "no gpio for this target"}
}
