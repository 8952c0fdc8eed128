package spd2010

import "touchcode-go/x/mathx"

// Point is one decoded contact in display coordinates.
type Point struct {
	ID     uint8
	X, Y   uint16
	Weight uint8
}

// Gesture is the controller's gesture code. GestureNone means no gesture.
type Gesture uint8

const GestureNone Gesture = 0

// Report is one decoded batch of touch points. It is a value type: copies
// never alias driver storage.
type Report struct {
	Points [MaxStoredPoints]Point
	// Count is the number of valid entries in Points (pending point count).
	Count uint8
	// Reported is the count declared by the device before clipping.
	Reported uint8
	// PacketCode is the id byte of the first record (slot id or packet tag).
	PacketCode uint8
	Gesture    Gesture

	// Down/Up flag a press or release edge on the first point in this report.
	Down, Up     bool
	DownX, DownY uint16
	UpX, UpY     uint16
}

// Slice returns the valid points.
func (r *Report) Slice() []Point { return r.Points[:r.Count] }

// Touch is the consumer view of a report: enough for single-touch pointer
// emulation.
type Touch struct {
	Pressed bool
	Count   int
	X, Y    uint16
	Weight  uint8
}

// Touch returns the first point and the point count.
func (r Report) Touch() Touch {
	if r.Count == 0 {
		return Touch{}
	}
	p := r.Points[0]
	return Touch{Pressed: true, Count: int(r.Count), X: p.X, Y: p.Y, Weight: p.Weight}
}

// assemble retrieves the pending payload and decodes it. The device may split
// a report: each data read is followed by an HDP status read which either
// signals completion or announces the length of the next part. Bytes past
// the scratch capacity are read to keep the framing but dropped.
func (d *Device) assemble(st Status) (Report, error) {
	total := int(st.ReadLen)
	n, err := d.readPayload(0, total)
	if err != nil {
		return Report{}, err
	}
	for round := 0; ; round++ {
		if err := d.readReg(regHDPStatus, d.hdp[:]); err != nil {
			return Report{}, err
		}
		switch d.hdp[5] {
		case hdpDone:
			return d.decode(st, d.scratch[:n], total), nil
		case hdpMore:
			if round >= maxHDPRounds {
				return Report{}, ErrProtocol
			}
			next := int(d.hdp[2]) | int(d.hdp[3])<<8
			total += next
			if n, err = d.readPayload(n, next); err != nil {
				return Report{}, err
			}
		default:
			return Report{}, ErrProtocol
		}
	}
}

// readPayload reads want bytes from the point-data register in transfers of
// at most MaxTransfer bytes, appending to scratch at offset n. It returns the
// new fill level.
func (d *Device) readPayload(n, want int) (int, error) {
	for want > 0 {
		chunk := mathx.Min(want, d.cfg.MaxTransfer)
		b := d.xfer[:chunk]
		if err := d.readReg(regPointData, b); err != nil {
			return n, err
		}
		n += copy(d.scratch[n:], b)
		want -= chunk
	}
	return n, nil
}

// decode interprets an assembled payload: a 4-byte header followed by 6-byte
// records {id, xl, yl, xh<<4|yh, weight, reserved}. p holds the retained
// prefix of total bytes read from the device.
func (d *Device) decode(st Status, p []byte, total int) Report {
	var r Report
	if len(p) <= headerLen {
		return r
	}
	id := p[headerLen]
	r.PacketCode = id
	switch {
	case id <= maxSlotID && st.PointExists:
		n := mathx.Min((total-headerLen)/recordLen, 0xFF)
		stored := mathx.Min(n, d.cfg.MaxPoints)
		stored = mathx.Min(stored, (len(p)-headerLen)/recordLen)
		for i := 0; i < stored; i++ {
			r.Points[i] = d.decodePoint(p[headerLen+i*recordLen:])
		}
		r.Count = uint8(stored)
		r.Reported = uint8(n)
		if n > stored {
			d.stats.Clipped++
		}
		if stored > 0 {
			d.track(&r)
		}
	case id == gestureTag && st.Gesture && len(p) > headerLen+2:
		r.Gesture = Gesture(p[headerLen+2] & 0x07)
		d.down = false
	}
	r.DownX, r.DownY = d.downX, d.downY
	r.UpX, r.UpY = d.upX, d.upY
	return r
}

func (d *Device) decodePoint(rec []byte) Point {
	x := uint16(rec[3]&0xF0)<<4 | uint16(rec[1])
	y := uint16(rec[3]&0x0F)<<8 | uint16(rec[2])
	x, y = d.cfg.Transform.apply(x, y)
	return Point{ID: rec[0], X: x, Y: y, Weight: rec[4]}
}

// track derives press/release edges from the first point's weight.
func (d *Device) track(r *Report) {
	p := r.Points[0]
	switch {
	case p.Weight != 0 && !d.down:
		d.down = true
		d.downX, d.downY = p.X, p.Y
		r.Down = true
	case p.Weight == 0 && d.down:
		d.down = false
		d.upX, d.upY = p.X, p.Y
		r.Up = true
	}
}
