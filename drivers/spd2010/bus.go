package spd2010

import "touchcode-go/x/conv"

// BusError records a failed transfer. It matches ErrBus under errors.Is and
// unwraps to the bus layer's error.
type BusError struct {
	Write bool
	Reg   uint16
	Err   error
}

func (e *BusError) Error() string {
	var b [6]byte
	op := "read "
	if e.Write {
		op = "write "
	}
	s := "spd2010: " + op + string(conv.U16Hex(b[:], e.Reg))
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *BusError) Unwrap() error        { return e.Err }
func (e *BusError) Is(target error) bool { return target == ErrBus }

// I2C operations with a 16-bit register address (HIGH then LOW).

func (d *Device) readReg(reg uint16, buf []byte) error {
	d.w[0] = byte(reg >> 8)
	d.w[1] = byte(reg)
	if err := d.bus.Tx(d.Address, d.w[:2], buf); err != nil {
		return &BusError{Reg: reg, Err: err}
	}
	return nil
}

// command is one control write: a 2-byte payload at its own register.
type command struct {
	reg     uint16
	payload [2]byte
}

var (
	cmdPointMode = command{regCmdPointMode, payloadZero}
	cmdStart     = command{regCmdStart, payloadZero}
	cmdCPUStart  = command{regCmdCPUStart, payloadOne}
	cmdClearInt  = command{regCmdClearInt, payloadOne}
)

// writeCmd issues c and waits out the command turnaround time.
func (d *Device) writeCmd(c command) error {
	d.w[0] = byte(c.reg >> 8)
	d.w[1] = byte(c.reg)
	d.w[2] = c.payload[0]
	d.w[3] = c.payload[1]
	if err := d.bus.Tx(d.Address, d.w[:4], nil); err != nil {
		return &BusError{Write: true, Reg: c.reg, Err: err}
	}
	d.cfg.Sleep(d.cfg.Settle)
	return nil
}
