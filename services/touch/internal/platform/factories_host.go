// services/touch/internal/platform/factories_host.go
//go:build !linux && !tinygo

package platform

import (
	"touchcode-go/services/touch/internal/halcore"

	"tinygo.org/x/drivers"
)

// DefaultI2CFactory creates inert host I²C buses "i2c0" and "i2c1".
func DefaultI2CFactory() (halcore.I2CBusFactory, error) {
	return NewI2CFactory(map[string]drivers.I2C{
		"i2c0": &HostI2C{},
		"i2c1": &HostI2C{},
	}), nil
}

// DefaultPinFactory provides a host GPIO factory.
func DefaultPinFactory() (halcore.PinFactory, error) {
	return &HostPinFactory{}, nil
}
