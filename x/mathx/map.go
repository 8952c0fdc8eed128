package mathx

// ScaleU16 maps x in [0, inExtent) onto [0, outExtent) with 32-bit
// intermediates. Inputs past the range clamp to outExtent-1. A zero extent
// returns x unchanged.
func ScaleU16(x, inExtent, outExtent uint16) uint16 {
	if inExtent == 0 || outExtent == 0 {
		return x
	}
	if x >= inExtent {
		return outExtent - 1
	}
	return uint16(uint32(x) * uint32(outExtent) / uint32(inExtent))
}
