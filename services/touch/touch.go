// Package touch runs an SPD2010 panel: it arms the INT line, drives the
// driver's poll loop and serves the latest touch to a graphics layer.
//
// The INT handler only sets the driver's edge latch. All bus traffic happens
// on the goroutine running Run, once per poll interval.
package touch

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"touchcode-go/drivers/spd2010"
	"touchcode-go/drivers/tca9554"
	"touchcode-go/errcode"
	"touchcode-go/services/touch/config"
	"touchcode-go/services/touch/internal/gpioirq"
	"touchcode-go/services/touch/internal/halcore"
	"touchcode-go/services/touch/internal/platform"
	"touchcode-go/services/touch/internal/util"
)

// logEvery is how often a persisting failure is logged after the first one.
const logEvery = 64

// Resources supplies the platform side. Zero fields fall back to the
// platform defaults.
type Resources struct {
	I2C    halcore.I2CBusFactory
	Pins   halcore.PinFactory
	Logger *log.Logger
	// Sleep replaces time.Sleep for driver settle and reset delays.
	Sleep func(time.Duration)
}

// Service owns one panel.
type Service struct {
	dev      *spd2010.Device
	irq      *gpioirq.Watcher
	cancel   func()
	intPin   int
	interval time.Duration
	log      *log.Logger

	failures uint32 // consecutive failed cycles; poll goroutine only
	lastCode errcode.Code
}

// Build wires a Service from cfg. It pulses the reset line (when one is
// configured) and arms the INT pin but performs no touch-controller I/O; the
// first cycles of Run bring the controller out of its boot ROM.
func Build(cfg config.Touch, res Resources) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if res.I2C == nil {
		f, err := platform.DefaultI2CFactory()
		if err != nil {
			return nil, err
		}
		res.I2C = f
	}
	if res.Logger == nil {
		res.Logger = log.New(os.Stderr, "touch: ", log.LstdFlags)
	}

	bus, ok := res.I2C.ByID(cfg.Bus)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "touch", Msg: cfg.Bus}
	}

	dcfg := spd2010.Config{
		Address:     cfg.Address,
		MaxPoints:   cfg.MaxPoints,
		MaxTransfer: cfg.MaxTransfer,
		Sleep:       res.Sleep,
		Polled:      cfg.Polled,
		Transform: spd2010.Transform{
			RawWidth:  cfg.Transform.RawWidth,
			RawHeight: cfg.Transform.RawHeight,
			Width:     cfg.Transform.Width,
			Height:    cfg.Transform.Height,
			SwapXY:    cfg.Transform.SwapXY,
			MirrorX:   cfg.Transform.MirrorX,
			MirrorY:   cfg.Transform.MirrorY,
		},
	}
	if r := cfg.Reset; r != nil {
		line, err := resetLine(cfg, r, &res)
		if err != nil {
			return nil, err
		}
		dcfg.Reset = line
	}

	s := &Service{
		dev:      spd2010.New(bus),
		irq:      gpioirq.New(),
		cancel:   func() {},
		intPin:   -1,
		interval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		log:      res.Logger,
	}
	if s.interval <= 0 {
		s.interval = config.DefaultPollIntervalMS * time.Millisecond
	}
	if err := s.dev.Configure(dcfg); err != nil {
		return nil, wrap("configure", err)
	}

	if !cfg.Polled {
		if err := s.armInt(cfg.IntPin, &res); err != nil {
			return nil, err
		}
	}
	// INT is asserted out of reset, possibly before the pin was armed.
	s.dev.HandleInterrupt()
	return s, nil
}

// resetLine returns the setter for the controller's reset line: an expander
// output switched to output mode, or a host GPIO.
func resetLine(cfg config.Touch, r *config.Reset, res *Resources) (func(bool) error, error) {
	if r.GPIO {
		pins, err := res.pins()
		if err != nil {
			return nil, err
		}
		gp, ok := pins.ByNumber(r.Pin)
		if !ok {
			return nil, &errcode.E{C: errcode.UnknownPin, Op: "touch", Msg: strconv.Itoa(r.Pin)}
		}
		line, err := halcore.OutputLine(gp)
		if err != nil {
			return nil, wrap("reset pin", err)
		}
		return line, nil
	}

	id := r.Bus
	if id == "" {
		id = cfg.Bus
	}
	eb, ok := res.I2C.ByID(id)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "touch", Msg: id}
	}
	exp := tca9554.New(eb)
	if r.Address != 0 {
		exp.Address = r.Address
	}
	if err := exp.Mode(r.Pin, false); err != nil {
		return nil, wrap("reset expander", err)
	}
	return exp.ResetLine(r.Pin), nil
}

func (res *Resources) pins() (halcore.PinFactory, error) {
	if res.Pins == nil {
		f, err := platform.DefaultPinFactory()
		if err != nil {
			return nil, err
		}
		res.Pins = f
	}
	return res.Pins, nil
}

func (s *Service) armInt(n int, res *Resources) error {
	pins, err := res.pins()
	if err != nil {
		return err
	}
	gp, ok := pins.ByNumber(n)
	if !ok {
		return &errcode.E{C: errcode.UnknownPin, Op: "touch", Msg: strconv.Itoa(n)}
	}
	ip, ok := gp.(halcore.IRQPin)
	if !ok {
		return &errcode.E{C: errcode.Unsupported, Op: "touch", Msg: "int pin has no irq"}
	}
	if err := ip.ConfigureInput(halcore.PullUp); err != nil {
		return wrap("int pin", err)
	}
	cancel, err := s.irq.Register(ip, halcore.EdgeFalling, s.dev.HandleInterrupt)
	if err != nil {
		return wrap("int pin", err)
	}
	s.cancel = cancel
	s.intPin = n
	s.log.Printf("int pin %d armed (%v edge)", n, halcore.EdgeFalling)
	return nil
}

func wrap(op string, err error) error {
	return &errcode.E{C: errcode.MapDriverErr(err), Op: "touch: " + op, Msg: err.Error(), Err: err}
}

// Run polls the controller every interval until ctx is done. Failed cycles
// are logged and retried on the next tick; none is fatal.
func (s *Service) Run(ctx context.Context) error {
	defer s.cancel()
	t := time.NewTimer(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			st := s.dev.Stats()
			s.log.Printf("stopped: cycles=%d failures=%d reports=%d edges=%d",
				st.Cycles, st.Failures, st.Reports, s.irq.Edges())
			return nil
		case <-t.C:
			s.Step()
			util.ResetTimer(t, s.interval)
		}
	}
}

// Step runs one poll. Run calls it on each tick; it must not be called
// concurrently with Run.
func (s *Service) Step() {
	_, err := s.dev.Poll()
	if err == nil {
		if s.failures > 0 {
			s.log.Printf("recovered after %d failed cycles", s.failures)
		}
		s.failures = 0
		s.lastCode = errcode.OK
		return
	}
	s.failures++
	code := errcode.MapDriverErr(err)
	if code != s.lastCode || util.Every(s.failures, logEvery) {
		s.log.Printf("cycle failed (%s, %d in a row): %v", code, s.failures, err)
	}
	s.lastCode = code
}

// Read returns the latest touch and clears it. Safe from any goroutine.
func (s *Service) Read() spd2010.Touch { return s.dev.Touch() }

// Take returns the full latest report and clears it. Safe from any goroutine.
func (s *Service) Take() spd2010.Report { return s.dev.Take() }

// Device exposes the driver, e.g. for ReadFirmware before Run starts.
func (s *Service) Device() *spd2010.Device { return s.dev }
