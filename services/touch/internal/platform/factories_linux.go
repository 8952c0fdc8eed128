// services/touch/internal/platform/factories_linux.go
//go:build linux && !tinygo

package platform

import (
	"strconv"
	"sync"

	"touchcode-go/services/touch/internal/halcore"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

var hostInit struct {
	once sync.Once
	err  error
}

func initHost() error {
	hostInit.once.Do(func() {
		_, hostInit.err = host.Init()
	})
	return hostInit.err
}

// DefaultI2CFactory opens periph.io I²C buses on demand. Ids are i2creg names
// ("1", "/dev/i2c-1", "I2C1") and buses stay open for the process lifetime.
func DefaultI2CFactory() (halcore.I2CBusFactory, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	return &periphI2CFactory{buses: map[string]i2c.BusCloser{}}, nil
}

// DefaultPinFactory maps pin numbers to periph.io pins via gpioreg.
func DefaultPinFactory() (halcore.PinFactory, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	return &periphPinFactory{pins: map[int]*PeriphPin{}}, nil
}

type periphI2CFactory struct {
	mu    sync.Mutex
	buses map[string]i2c.BusCloser
}

func (f *periphI2CFactory) ByID(id string) (drivers.I2C, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.buses[id]; ok {
		return b, true
	}
	b, err := i2creg.Open(id)
	if err != nil {
		return nil, false
	}
	f.buses[id] = b
	return b, true
}

type periphPinFactory struct {
	mu   sync.Mutex
	pins map[int]*PeriphPin
}

func (f *periphPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pins[n]; ok {
		return p, true
	}
	p := gpioreg.ByName(strconv.Itoa(n))
	if p == nil {
		return nil, false
	}
	pp := NewPeriphPin(p, n)
	f.pins[n] = pp
	return pp, true
}
