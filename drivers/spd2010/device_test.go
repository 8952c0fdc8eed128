package spd2010

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

var errInjected = errors.New("injected fault")

// faultBus fails transfer number failAt (0-based) and forwards the rest.
type faultBus struct {
	bus    drivers.I2C
	failAt int
	n      int
}

func (f *faultBus) Tx(addr uint16, w, r []byte) error {
	n := f.n
	f.n++
	if n == f.failAt {
		return errInjected
	}
	return f.bus.Tx(addr, w, r)
}

func newQuiet(t *testing.T, bus drivers.I2C, cfg Config) *Device {
	t.Helper()
	cfg.Sleep = func(time.Duration) {}
	d := New(bus)
	if err := d.Configure(cfg); err != nil {
		t.Fatalf("configure: %v", err)
	}
	return d
}

// bootSim drives a fresh simulator from boot ROM to running.
func bootSim(t *testing.T, cfg Config) (*Device, *Sim) {
	t.Helper()
	sim := NewSim()
	d := newQuiet(t, sim, cfg)
	for i := 0; i < 2; i++ {
		if err := d.Cycle(); err != nil {
			t.Fatalf("boot cycle %d: %v", i, err)
		}
	}
	if sim.State() != SimRunning {
		t.Fatalf("sim state %d after boot", sim.State())
	}
	sim.Writes()
	return d, sim
}

func TestConfigureRejectsBeforeBus(t *testing.T) {
	bad := []Config{
		{Address: 0x80},
		{MaxPoints: -1},
		{MaxPoints: MaxStoredPoints + 1},
		{MaxTransfer: -1},
		{MaxTransfer: 65},
		{Settle: -time.Microsecond},
	}
	for i, cfg := range bad {
		bus := &i2ctest.Playback{DontPanic: true}
		resets := 0
		cfg.Reset = func(bool) error { resets++; return nil }
		d := New(bus)
		if err := d.Configure(cfg); !errors.Is(err, ErrInvalidParam) {
			t.Fatalf("case %d: want ErrInvalidParam, got %v", i, err)
		}
		if bus.Count != 0 || resets != 0 {
			t.Fatalf("case %d: hardware touched", i)
		}
	}
}

func TestConfigureDefaults(t *testing.T) {
	d := newQuiet(t, &i2ctest.Playback{DontPanic: true}, Config{})
	if d.Address != AddressDefault {
		t.Fatalf("address %#x", d.Address)
	}
	if d.cfg.MaxPoints != DefaultMaxPoints || d.cfg.MaxTransfer != xferLen || d.cfg.Settle != DefaultSettle {
		t.Fatalf("defaults %+v", d.cfg)
	}
}

func TestConfigureResetPulse(t *testing.T) {
	var levels []bool
	var sleeps []time.Duration
	d := New(&i2ctest.Playback{DontPanic: true})
	err := d.Configure(Config{
		Reset: func(l bool) error { levels = append(levels, l); return nil },
		Sleep: func(dt time.Duration) { sleeps = append(sleeps, dt) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(levels) != 2 || levels[0] || !levels[1] {
		t.Fatalf("levels %v", levels)
	}
	if len(sleeps) != 2 || sleeps[0] != resetPulse || sleeps[1] != resetPulse {
		t.Fatalf("sleeps %v", sleeps)
	}
}

func TestConfigureResetFailure(t *testing.T) {
	d := New(&i2ctest.Playback{DontPanic: true})
	err := d.Configure(Config{
		Reset: func(bool) error { return errInjected },
		Sleep: func(time.Duration) {},
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("got %v", err)
	}
}

func TestLatch(t *testing.T) {
	var l Latch
	if l.Pending() || l.take() {
		t.Fatal("fresh latch set")
	}
	l.Set()
	l.Set()
	if !l.Pending() {
		t.Fatal("latch not pending")
	}
	if !l.take() {
		t.Fatal("take missed edge")
	}
	if l.take() {
		t.Fatal("edge consumed twice")
	}
}

func TestLatchSetDoesNotAllocate(t *testing.T) {
	var l Latch
	if n := testing.AllocsPerRun(100, l.Set); n != 0 {
		t.Fatalf("Set allocates: %v", n)
	}
}

func TestPollWithoutEdgeIsIdle(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	d := newQuiet(t, bus, Config{})
	ran, err := d.Poll()
	if ran || err != nil {
		t.Fatalf("ran=%v err=%v", ran, err)
	}
	if bus.Count != 0 {
		t.Fatal("bus touched without edge")
	}
}

func TestPollConsumesEdge(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{ioStatus(0x00, 0x08, 0, 0), ioClearInt}, DontPanic: true}
	d := newQuiet(t, bus, Config{})
	d.HandleInterrupt()
	ran, err := d.Poll()
	if !ran || err != nil {
		t.Fatalf("ran=%v err=%v", ran, err)
	}
	if d.Latch().Pending() {
		t.Fatal("latch still set after successful cycle")
	}
	if ran, _ := d.Poll(); ran {
		t.Fatal("second poll ran without an edge")
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPollFailureRearmsLatch(t *testing.T) {
	bus := &faultBus{bus: &i2ctest.Playback{DontPanic: true}, failAt: 0}
	d := newQuiet(t, bus, Config{})
	d.HandleInterrupt()
	ran, err := d.Poll()
	if !ran || !errors.Is(err, ErrBus) {
		t.Fatalf("ran=%v err=%v", ran, err)
	}
	if !d.Latch().Pending() {
		t.Fatal("latch not re-armed after failure")
	}
}

func TestPolledModeIgnoresLatch(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{ioStatus(0, 0, 0, 0), ioStatus(0, 0, 0, 0)}, DontPanic: true}
	d := newQuiet(t, bus, Config{Polled: true})
	for i := 0; i < 2; i++ {
		if ran, err := d.Poll(); !ran || err != nil {
			t.Fatalf("poll %d: ran=%v err=%v", i, ran, err)
		}
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSimLifecycle(t *testing.T) {
	sim := NewSim()
	d := newQuiet(t, sim, Config{})
	sim.OnInterrupt = d.HandleInterrupt
	d.HandleInterrupt() // INT is low out of reset

	if ran, err := d.Poll(); !ran || err != nil {
		t.Fatalf("boot: ran=%v err=%v", ran, err)
	}
	if sim.State() != SimCPU {
		t.Fatalf("state %d after boot", sim.State())
	}
	if ran, err := d.Poll(); !ran || err != nil {
		t.Fatalf("arm: ran=%v err=%v", ran, err)
	}
	if sim.State() != SimRunning || sim.IntLow() {
		t.Fatalf("state %d int %v after arm", sim.State(), sim.IntLow())
	}
	if ran, _ := d.Poll(); ran {
		t.Fatal("poll ran with INT released")
	}

	sim.Touch(0, Point{ID: 0, X: 120, Y: 340, Weight: 0x30})
	if ran, err := d.Poll(); !ran || err != nil {
		t.Fatalf("report: ran=%v err=%v", ran, err)
	}
	got := d.Touch()
	want := Touch{Pressed: true, Count: 1, X: 120, Y: 340, Weight: 0x30}
	if got != want {
		t.Fatalf("touch %+v want %+v", got, want)
	}
	if d.Touch().Pressed {
		t.Fatal("second read still pressed")
	}
	if sim.IntLow() || sim.Pending() != 0 {
		t.Fatal("interrupt not cleared")
	}
	st := d.Stats()
	if st.Actions[ActionBoot] != 1 || st.Actions[ActionArm] != 1 || st.Reports != 1 {
		t.Fatalf("stats %+v", st)
	}
}

func TestReadTouchPoint(t *testing.T) {
	d, sim := bootSim(t, Config{})
	var _ touch.Pointer = d

	sim.Touch(0, Point{X: 5, Y: 6, Weight: 0})
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	// Zero weight still reports a pressed point with non-zero Z.
	if p := d.ReadTouchPoint(); p != (touch.Point{X: 5, Y: 6, Z: 1}) {
		t.Fatalf("point %+v", p)
	}
	if p := d.ReadTouchPoint(); p != (touch.Point{}) {
		t.Fatalf("after read %+v", p)
	}
}

func TestReadFirmware(t *testing.T) {
	d, _ := bootSim(t, Config{})
	fw, err := d.ReadFirmware()
	if err != nil {
		t.Fatal(err)
	}
	if fw.DVer != 0x0110 || fw.PID != 0x2010 {
		t.Fatalf("firmware %+v", fw)
	}
	if fw.ICNameL != uint32('S')|uint32('P')<<8|uint32('D')<<16|uint32('2')<<24 {
		t.Fatalf("ic name %#x", fw.ICNameL)
	}
}

func TestSimNACK(t *testing.T) {
	sim := NewSim()
	d := newQuiet(t, sim, Config{Address: 0x14})
	if err := d.Cycle(); !errors.Is(err, ErrBus) {
		t.Fatalf("got %v", err)
	}
}
