package spd2010

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func ioPoints(b ...byte) i2ctest.IO {
	return i2ctest.IO{Addr: AddressDefault, W: []byte{0x00, 0x03}, R: b}
}

func ioHDP(code byte, next uint16) i2ctest.IO {
	return i2ctest.IO{Addr: AddressDefault, W: []byte{0xFC, 0x02}, R: []byte{0, 0, byte(next), byte(next >> 8), 0, code, 0, 0}}
}

// One point at (120, 340): header plus a single record.
var onePoint = []byte{0x06, 0x00, 0x00, 0x00, 0x00, 0x78, 0x54, 0x01, 0x30, 0x00}

func TestReportEndToEnd(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		ioStatus(0x01, 0x00, 0x0A, 0x00),
		ioPoints(onePoint...),
		ioHDP(hdpDone, 0),
		ioClearInt,
	}, DontPanic: true}
	d := newQuiet(t, bus, Config{})
	d.HandleInterrupt()
	if _, err := d.Poll(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	r := d.Take()
	if r.Count != 1 || r.Reported != 1 || r.PacketCode != 0 {
		t.Fatalf("report %+v", r)
	}
	if p := r.Points[0]; p.X != 120 || p.Y != 340 || p.Weight != 0x30 {
		t.Fatalf("point %+v", p)
	}
	if !r.Down || r.DownX != 120 || r.DownY != 340 {
		t.Fatalf("press edge missing: %+v", r)
	}
	if d.Take().Count != 0 {
		t.Fatal("take did not clear")
	}
}

func TestReportChunkedTransfers(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		ioStatus(0x01, 0x08, 0x0A, 0x00),
		ioPoints(onePoint[0:4]...),
		ioPoints(onePoint[4:8]...),
		ioPoints(onePoint[8:10]...),
		ioHDP(hdpDone, 0),
		ioClearInt,
	}, DontPanic: true}
	d := newQuiet(t, bus, Config{MaxTransfer: 4})
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if r := d.Take(); r.Count != 1 || r.Points[0].X != 120 {
		t.Fatalf("report %+v", r)
	}
}

func TestReportHDPContinuation(t *testing.T) {
	second := []byte{0x01, 0x10, 0x20, 0x00, 0x40, 0x00}
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		ioStatus(0x01, 0x08, 0x0A, 0x00),
		ioPoints(onePoint...),
		ioHDP(hdpMore, 6),
		ioPoints(second...),
		ioHDP(hdpDone, 0),
		ioClearInt,
	}, DontPanic: true}
	d := newQuiet(t, bus, Config{})
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	r := d.Take()
	if r.Count != 2 || r.Reported != 2 {
		t.Fatalf("report %+v", r)
	}
	if p := r.Points[1]; p.ID != 1 || p.X != 0x10 || p.Y != 0x20 || p.Weight != 0x40 {
		t.Fatalf("second point %+v", p)
	}
}

func TestReportBadHDPStatus(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		ioStatus(0x01, 0x08, 0x0A, 0x00),
		ioPoints(onePoint...),
		ioHDP(0x55, 0),
	}, DontPanic: true}
	d := newQuiet(t, bus, Config{})
	if err := d.Cycle(); !errors.Is(err, ErrProtocol) {
		t.Fatalf("want ErrProtocol, got %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if d.Take() != (Report{}) {
		t.Fatal("failed cycle published a report")
	}
}

func TestReportHDPRoundLimit(t *testing.T) {
	d, sim := bootSim(t, Config{})
	sim.Touch(1, Point{X: 1, Y: 1, Weight: 1})
	if err := d.Cycle(); !errors.Is(err, ErrProtocol) {
		t.Fatalf("want ErrProtocol, got %v", err)
	}
}

func TestReportClipsToMaxPoints(t *testing.T) {
	d, sim := bootSim(t, Config{})
	var pts []Point
	for i := 0; i < 7; i++ {
		pts = append(pts, Point{ID: uint8(i), X: uint16(100 * i), Y: uint16(50 * i), Weight: 9})
	}
	sim.Touch(0, pts...)
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	r := d.Take()
	if r.Count != DefaultMaxPoints || r.Reported != 7 {
		t.Fatalf("count %d reported %d", r.Count, r.Reported)
	}
	for i, p := range r.Slice() {
		if p != pts[i] {
			t.Fatalf("point %d: %+v want %+v", i, p, pts[i])
		}
	}
	if d.Stats().Clipped != 1 {
		t.Fatalf("stats %+v", d.Stats())
	}
}

func TestReportOverflowKeepsFraming(t *testing.T) {
	d, sim := bootSim(t, Config{MaxPoints: MaxStoredPoints})
	var pts []Point
	for i := 0; i < 12; i++ {
		pts = append(pts, Point{ID: uint8(i % 10), X: uint16(i), Y: uint16(i), Weight: 1})
	}
	sim.Touch(0, pts...)
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	r := d.Take()
	if r.Count != MaxStoredPoints || r.Reported != 12 {
		t.Fatalf("count %d reported %d", r.Count, r.Reported)
	}
	if sim.Pending() != 0 || sim.IntLow() {
		t.Fatal("report not fully drained")
	}
}

func TestReportSplitBySim(t *testing.T) {
	d, sim := bootSim(t, Config{})
	sim.Touch(10, Point{ID: 0, X: 1, Y: 2, Weight: 3}, Point{ID: 1, X: 4000, Y: 3000, Weight: 4})
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	r := d.Take()
	if r.Count != 2 || r.Points[1].X != 4000 || r.Points[1].Y != 3000 {
		t.Fatalf("report %+v", r)
	}
}

func TestReportGesture(t *testing.T) {
	d, sim := bootSim(t, Config{})
	sim.Gesture(3)
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	r := d.Take()
	if r.Gesture != 3 || r.Count != 0 || r.PacketCode != gestureTag {
		t.Fatalf("report %+v", r)
	}
	if r.Touch().Pressed {
		t.Fatal("gesture reported as press")
	}
}

func TestReportUnknownPacket(t *testing.T) {
	payload := []byte{0x06, 0, 0, 0, 0x20, 1, 2, 3, 4, 0}
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		ioStatus(0x01, 0x08, 0x0A, 0x00),
		ioPoints(payload...),
		ioHDP(hdpDone, 0),
		ioClearInt,
	}, DontPanic: true}
	d := newQuiet(t, bus, Config{})
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	r := d.Take()
	if r.Count != 0 || r.Gesture != GestureNone || r.PacketCode != 0x20 {
		t.Fatalf("report %+v", r)
	}
}

func TestReportPressRelease(t *testing.T) {
	d, sim := bootSim(t, Config{})
	sim.Touch(0, Point{X: 10, Y: 20, Weight: 5})
	sim.Touch(0, Point{X: 11, Y: 21, Weight: 5})
	sim.Touch(0, Point{X: 12, Y: 22, Weight: 0})

	var got []Report
	for i := 0; i < 3; i++ {
		if err := d.Cycle(); err != nil {
			t.Fatal(err)
		}
		got = append(got, d.Take())
	}
	if !got[0].Down || got[0].Up {
		t.Fatalf("first %+v", got[0])
	}
	if got[1].Down || got[1].Up {
		t.Fatalf("second %+v", got[1])
	}
	if !got[2].Up || got[2].UpX != 12 || got[2].UpY != 22 || got[2].DownX != 10 {
		t.Fatalf("third %+v", got[2])
	}
}

func TestReportFailureKeepsPrevious(t *testing.T) {
	d, sim := bootSim(t, Config{})
	sim.OnInterrupt = d.HandleInterrupt
	sim.Touch(0, Point{X: 7, Y: 8, Weight: 1})
	if _, err := d.Poll(); err != nil {
		t.Fatal(err)
	}

	sim.Fail = func(reg uint16, write bool) error {
		if reg == regHDPStatus {
			return errInjected
		}
		return nil
	}
	sim.Touch(0, Point{X: 70, Y: 80, Weight: 1})
	ran, err := d.Poll()
	if !ran || !errors.Is(err, ErrBus) {
		t.Fatalf("ran=%v err=%v", ran, err)
	}
	if !d.Latch().Pending() {
		t.Fatal("latch not re-armed")
	}
	if r := d.Take(); r.Count != 1 || r.Points[0].X != 7 {
		t.Fatalf("previous report lost: %+v", r)
	}

	// The next poll retries the whole cycle and delivers the report.
	sim.Fail = nil
	if ran, err := d.Poll(); !ran || err != nil {
		t.Fatalf("retry: ran=%v err=%v", ran, err)
	}
	if r := d.Take(); r.Count != 1 || r.Points[0].X != 70 || r.Points[0].Y != 80 {
		t.Fatalf("retried report %+v", r)
	}
	if sim.Pending() != 0 {
		t.Fatalf("report still queued: %d", sim.Pending())
	}
}

func TestReportRetryAfterSplitFailure(t *testing.T) {
	d, sim := bootSim(t, Config{})
	sim.Touch(4, Point{ID: 1, X: 300, Y: 200, Weight: 9})

	reads := 0
	sim.Fail = func(reg uint16, write bool) error {
		if reg == regPointData {
			reads++
			if reads == 2 {
				return errInjected
			}
		}
		return nil
	}
	if err := d.Cycle(); !errors.Is(err, ErrBus) {
		t.Fatalf("err = %v", err)
	}
	if d.Take().Count != 0 {
		t.Fatal("partial report published")
	}

	sim.Fail = nil
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	r := d.Take()
	if r.Count != 1 || r.Points[0].X != 300 || r.Points[0].Y != 200 || r.Points[0].Weight != 9 {
		t.Fatalf("retried report %+v", r)
	}
	if sim.Pending() != 0 {
		t.Fatalf("report still queued: %d", sim.Pending())
	}
}

func TestReportShortPayloadIsEmpty(t *testing.T) {
	// Four bytes hold only the packet header: no record, so nothing pressed,
	// but the cycle completes and the interrupt is cleared.
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		ioStatus(0x01, 0x00, 0x04, 0x00),
		ioPoints(0x00, 0x78, 0x54, 0x30),
		ioHDP(hdpDone, 0),
		ioClearInt,
	}, DontPanic: true}
	d := newQuiet(t, bus, Config{})
	d.HandleInterrupt()
	if ran, err := d.Poll(); !ran || err != nil {
		t.Fatalf("ran=%v err=%v", ran, err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if st := d.Stats(); st.Reports != 1 || st.Actions[ActionReport] != 1 {
		t.Fatalf("stats %+v", st)
	}
	if got := d.Touch(); got != (Touch{}) {
		t.Fatalf("touch %+v", got)
	}
}

func TestReportTransform(t *testing.T) {
	d, sim := bootSim(t, Config{Transform: Transform{
		Width: 412, Height: 412, SwapXY: true, MirrorX: true,
	}})
	sim.Touch(0, Point{X: 30, Y: 100, Weight: 1})
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	p := d.Take().Points[0]
	if p.X != 411-100 || p.Y != 30 {
		t.Fatalf("point %+v", p)
	}

	sim.Touch(0, Point{X: 4000, Y: 4000, Weight: 1})
	if err := d.Cycle(); err != nil {
		t.Fatal(err)
	}
	if p := d.Take().Points[0]; p.X != 0 || p.Y != 411 {
		t.Fatalf("clamped point %+v", p)
	}
}
