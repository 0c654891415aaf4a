package gdsfile

// GDSII record types (record type byte << 8 | data type byte).
const (
	recHeader   = 0x0002
	recBgnLib   = 0x0102
	recLibName  = 0x0206
	recUnits    = 0x0305
	recEndLib   = 0x0400
	recBgnStr   = 0x0502
	recStrName  = 0x0606
	recEndStr   = 0x0700
	recBoundary = 0x0800
	recText     = 0x0C00
	recLayer    = 0x0D02
	recDatatype = 0x0E02
	recXY       = 0x1003
	recEndEl    = 0x1100
	recTextType = 0x1602
	recString   = 0x1906
)

const gdsVersion = 600

// encodeReal8 packs a float64 into the GDSII 8-byte excess-64 base-16
// real. Only positive unit scales occur in practice, but the sign bit
// is handled for completeness.
func encodeReal8(v float64) [8]byte {
	var out [8]byte
	if v == 0 {
		return out
	}
	neg := v < 0
	if neg {
		v = -v
	}
	exp := 0
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 1.0/16 {
		v *= 16
		exp--
	}
	mantissa := uint64(v * (1 << 56))
	b0 := byte(exp + 64)
	if neg {
		b0 |= 0x80
	}
	out[0] = b0
	for i := 6; i >= 0; i-- {
		out[1+i] = byte(mantissa)
		mantissa >>= 8
	}
	return out
}

// decodeReal8 is the inverse of encodeReal8.
func decodeReal8(b [8]byte) float64 {
	neg := b[0]&0x80 != 0
	exp := int(b[0]&0x7F) - 64
	var mantissa uint64
	for i := 0; i < 7; i++ {
		mantissa = mantissa<<8 | uint64(b[1+i])
	}
	if mantissa == 0 {
		return 0
	}
	v := float64(mantissa) / (1 << 56)
	for exp > 0 {
		v *= 16
		exp--
	}
	for exp < 0 {
		v /= 16
		exp++
	}
	if neg {
		return -v
	}
	return v
}
