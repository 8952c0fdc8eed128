package conv

const hexd = "0123456789ABCDEF"

// Hex writes the low 'digits' nibbles of n as uppercase hex without 0x,
// zero-padded, into the tail of buf and returns the used slice.
// digits is clamped to [1, 8] and to len(buf).
func Hex(buf []byte, n uint32, digits int) []byte {
	if digits < 1 {
		digits = 1
	}
	if digits > 8 {
		digits = 8
	}
	if len(buf) < digits {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < digits; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[i:]
}

// U16Hex writes 4-digit uppercase hex with a 0x prefix. buf must hold 6 bytes.
func U16Hex(buf []byte, n uint16) []byte {
	if len(buf) < 6 {
		return buf[:0]
	}
	d := Hex(buf, uint32(n), 4)
	i := len(buf) - len(d) - 2
	buf[i], buf[i+1] = '0', 'x'
	return buf[i:]
}
