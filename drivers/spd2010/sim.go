package spd2010

import (
	"errors"
	"sync"
)

// Sim is an in-memory SPD2010 that implements drivers.I2C. It walks the
// controller lifecycle (boot ROM, CPU, running) in response to the driver's
// commands and serves queued touch reports over the HDP protocol.
type Sim struct {
	mu sync.Mutex

	Address uint16
	// OnInterrupt is called whenever the simulated INT line falls. It runs
	// with the simulator locked and must not call back into it.
	OnInterrupt func()
	// Fail, if set, is consulted before every transfer. A non-nil result
	// fails the transfer without changing simulator state.
	Fail func(reg uint16, write bool) error

	state     SimState
	pointMode bool
	intLow    bool

	queue []simReport
	chunk int
	off   int

	firmware [firmwareLen]byte
	writes   []SimWrite
}

// SimState is the simulated controller lifecycle stage.
type SimState uint8

const (
	SimBIOS SimState = iota
	SimCPU
	SimRunning
)

// SimWrite records one command write.
type SimWrite struct {
	Reg     uint16
	Payload [2]byte
}

type simReport struct {
	gesture bool
	chunks  [][]byte
}

var (
	errSimNACK    = errors.New("spd2010 sim: address not acknowledged")
	errSimFraming = errors.New("spd2010 sim: bad transfer framing")
)

// NewSim returns a simulator in boot ROM with INT asserted, as after reset.
func NewSim() *Sim {
	s := &Sim{Address: AddressDefault, state: SimBIOS, intLow: true}
	copy(s.firmware[:], []byte{
		0x00, 0x00, 0x00, 0x00, // dummy
		0x10, 0x01, 0x00, 0x00, // DVer
		0x10, 0x20, // PID
		'S', 'P', 'D', '2', // IC name low
		'0', '1', '0', 0x00, // IC name high
	})
	return s
}

// State returns the lifecycle stage.
func (s *Sim) State() SimState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IntLow reports whether the simulated INT line is asserted.
func (s *Sim) IntLow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intLow
}

// Writes returns and clears the command log.
func (s *Sim) Writes() []SimWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.writes
	s.writes = nil
	return w
}

// Pending returns the number of queued reports not yet fully served.
func (s *Sim) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Touch queues a point report. Coordinates are 12-bit panel values. When
// split > 0 the payload is served in parts of at most split bytes.
func (s *Sim) Touch(split int, pts ...Point) {
	p := make([]byte, headerLen, headerLen+len(pts)*recordLen)
	p[0] = byte(len(pts) * recordLen)
	for _, pt := range pts {
		p = append(p,
			pt.ID,
			byte(pt.X),
			byte(pt.Y),
			byte(pt.X>>8&0x0F)<<4|byte(pt.Y>>8&0x0F),
			pt.Weight,
			0,
		)
	}
	s.enqueue(simReport{chunks: splitPayload(p, split)})
}

// Gesture queues a gesture packet carrying code.
func (s *Sim) Gesture(code Gesture) {
	p := []byte{0, 0, 0, 0, gestureTag, 0, byte(code) & 0x07, 0, 0, 0}
	s.enqueue(simReport{gesture: true, chunks: [][]byte{p}})
}

func splitPayload(p []byte, split int) [][]byte {
	if split <= 0 || split >= len(p) {
		return [][]byte{p}
	}
	var out [][]byte
	for len(p) > 0 {
		n := split
		if n > len(p) {
			n = len(p)
		}
		out = append(out, p[:n])
		p = p[n:]
	}
	return out
}

func (s *Sim) enqueue(r simReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, r)
	if s.state == SimRunning {
		s.assert()
	}
}

func (s *Sim) assert() {
	s.intLow = true
	if s.OnInterrupt != nil {
		s.OnInterrupt()
	}
}

// Tx implements drivers.I2C.
func (s *Sim) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr != s.Address {
		return errSimNACK
	}
	if len(w) < 2 {
		return errSimFraming
	}
	reg := uint16(w[0])<<8 | uint16(w[1])
	write := len(w) > 2
	if s.Fail != nil {
		if err := s.Fail(reg, write); err != nil {
			return err
		}
	}
	if write {
		if len(w) != 4 || len(r) != 0 {
			return errSimFraming
		}
		s.command(reg, [2]byte{w[2], w[3]})
		return nil
	}
	s.read(reg, r)
	return nil
}

func (s *Sim) command(reg uint16, payload [2]byte) {
	s.writes = append(s.writes, SimWrite{Reg: reg, Payload: payload})
	switch reg {
	case regCmdClearInt:
		s.intLow = false
		if s.state == SimRunning && len(s.queue) > 0 {
			s.assert()
		}
	case regCmdCPUStart:
		if s.state == SimBIOS {
			s.state = SimCPU
			s.assert()
		}
	case regCmdPointMode:
		s.pointMode = true
	case regCmdStart:
		if s.state == SimCPU && s.pointMode {
			s.state = SimRunning
			if len(s.queue) > 0 {
				s.assert()
			}
		}
	}
}

func (s *Sim) read(reg uint16, r []byte) {
	for i := range r {
		r[i] = 0
	}
	switch reg {
	case regStatus:
		// A status read opens a new cycle: a report left part-served by a
		// failed one is served again from its start.
		s.chunk, s.off = 0, 0
		st := s.status().Raw()
		copy(r, st[:])
	case regPointData:
		if len(s.queue) == 0 {
			return
		}
		c := s.queue[0].chunks[s.chunk]
		s.off += copy(r, c[s.off:])
	case regHDPStatus:
		s.hdpStatus(r)
	case regFirmware:
		copy(r, s.firmware[:])
	}
}

func (s *Sim) status() Status {
	st := Status{IntLow: s.intLow}
	switch s.state {
	case SimBIOS:
		st.InBIOS = true
	case SimCPU:
		st.InCPU = true
	case SimRunning:
		st.CPURunning = true
		if len(s.queue) > 0 {
			q := s.queue[0]
			st.PointExists = !q.gesture
			st.Gesture = q.gesture
			st.ReadLen = uint16(len(q.chunks[s.chunk]) - s.off)
		}
	}
	return st
}

func (s *Sim) hdpStatus(r []byte) {
	if len(r) < hdpStatusLen {
		return
	}
	if len(s.queue) == 0 {
		r[5] = hdpDone
		return
	}
	q := s.queue[0]
	rest := len(q.chunks[s.chunk]) - s.off
	if rest == 0 && s.chunk+1 < len(q.chunks) {
		s.chunk++
		s.off = 0
		rest = len(q.chunks[s.chunk])
	}
	if rest > 0 {
		r[5] = hdpMore
		r[2] = byte(rest)
		r[3] = byte(rest >> 8)
		return
	}
	r[5] = hdpDone
	s.queue = s.queue[1:]
	s.chunk, s.off = 0, 0
}
