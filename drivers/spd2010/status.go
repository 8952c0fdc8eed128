package spd2010

// Status is the decoded 4-byte status register. It is computed fresh on each
// read and never stored across cycles.
type Status struct {
	// Low byte.
	PointExists bool
	Gesture     bool
	Key         bool
	Aux         bool
	Keep        bool
	RawOrPoint  bool

	// High byte.
	CPURunning bool
	IntLow     bool
	InCPU      bool // booted, sampling not yet armed
	InBIOS     bool // running from boot ROM
	Busy       bool

	// Bytes pending at the point-data register.
	ReadLen uint16
}

// DecodeStatus parses a raw status payload. It fails only when fewer than 4
// bytes are supplied.
func DecodeStatus(b []byte) (Status, error) {
	if len(b) < statusLen {
		return Status{}, ErrShortRead
	}
	lo, hi := b[0], b[1]
	return Status{
		PointExists: lo&stPointExists != 0,
		Gesture:     lo&stGesture != 0,
		Key:         lo&stKey != 0,
		Aux:         lo&stAux != 0,
		Keep:        lo&stKeep != 0,
		RawOrPoint:  lo&stRawOrPoint != 0,

		CPURunning: hi&stCPURunning != 0,
		IntLow:     hi&stIntLow != 0,
		InCPU:      hi&stInCPU != 0,
		InBIOS:     hi&stInBIOS != 0,
		Busy:       hi&stBusy != 0,

		ReadLen: uint16(b[2]) | uint16(b[3])<<8,
	}, nil
}

// Raw encodes s back into register layout. Reserved bits are zero.
func (s Status) Raw() [statusLen]byte {
	var lo, hi byte
	lo |= bit(s.PointExists, stPointExists)
	lo |= bit(s.Gesture, stGesture)
	lo |= bit(s.Key, stKey)
	lo |= bit(s.Aux, stAux)
	lo |= bit(s.Keep, stKeep)
	lo |= bit(s.RawOrPoint, stRawOrPoint)

	hi |= bit(s.CPURunning, stCPURunning)
	hi |= bit(s.IntLow, stIntLow)
	hi |= bit(s.InCPU, stInCPU)
	hi |= bit(s.InBIOS, stInBIOS)
	hi |= bit(s.Busy, stBusy)

	return [statusLen]byte{lo, hi, byte(s.ReadLen), byte(s.ReadLen >> 8)}
}

func bit(on bool, mask byte) byte {
	if on {
		return mask
	}
	return 0
}
