package wire

import "math"

// Compressed numeric formats used throughout the game wire protocol. All
// three are intentionally lossy; callers must tolerate the documented
// decode error rather than expect exact round-trips.

const (
	cf16Base = 0.001
	cf16Mult = 10.0
)

// EncodeCF16 packs a float across eight logarithmic decades (0.001 to
// 10000) with a sign bit into 16 bits: sign:1 | scale:3 | mantissa:12.
func EncodeCF16(value float32) uint16 {
	var signFlag uint16
	if value < 0 {
		signFlag = 8
		value = -value
	}

	var scale uint16
	lo := float32(0)
	hi := float32(cf16Base)
	for scale < 8 {
		if value < hi {
			break
		}
		lo = hi
		hi *= cf16Mult
		scale++
	}

	if scale >= 8 {
		return (signFlag|7)*0x1000 + 0xFFF
	}

	rng := hi - lo
	var mantissa int32
	if rng > 0 {
		mantissa = int32((value - lo) / rng * 4096.0)
	}
	if mantissa > 0xFFF {
		mantissa = 0xFFF
	}
	if mantissa < 0 {
		mantissa = 0
	}

	return (signFlag|scale)*0x1000 + uint16(mantissa)
}

// DecodeCF16 is the inverse of EncodeCF16.
func DecodeCF16(encoded uint16) float32 {
	mantissa := encoded & 0xFFF
	rawScale := encoded >> 12
	isNeg := rawScale&0x8 != 0
	scale := rawScale & 0x7

	lo := float32(0)
	hi := float32(cf16Base)
	for i := uint16(0); i < scale; i++ {
		lo = hi
		hi *= cf16Mult
	}

	result := lo + (float32(mantissa)/4095.0)*(hi-lo)
	if isNeg {
		return -result
	}
	return result
}

func (b *Buffer) WriteCF16(v float32) bool { return b.WriteU16(EncodeCF16(v)) }

func (b *Buffer) ReadCF16() (float32, bool) {
	raw, ok := b.ReadU16()
	if !ok {
		return 0, false
	}
	return DecodeCF16(raw), true
}

// EncodeCV3 packs a direction-only vector into three signed bytes:
// component = round(component/|v| * 127). A zero-length vector encodes as
// three zero bytes.
func EncodeCV3(x, y, z float32) [3]byte {
	mag := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if mag < 1e-6 {
		return [3]byte{}
	}
	return [3]byte{
		byte(int8(x / mag * 127)),
		byte(int8(y / mag * 127)),
		byte(int8(z / mag * 127)),
	}
}

// DecodeCV3 decodes each signed byte as component/127.
func DecodeCV3(raw [3]byte) (x, y, z float32) {
	return float32(int8(raw[0])) / 127, float32(int8(raw[1])) / 127, float32(int8(raw[2])) / 127
}

func (b *Buffer) WriteCV3(x, y, z float32) bool {
	raw := EncodeCV3(x, y, z)
	return b.WriteBytes(raw[:])
}

func (b *Buffer) ReadCV3() (x, y, z float32, ok bool) {
	p, ok := b.ReadBytes(3)
	if !ok {
		return 0, 0, 0, false
	}
	x, y, z = DecodeCV3([3]byte{p[0], p[1], p[2]})
	return x, y, z, true
}

// WriteCV4 writes a direction (CompressedVector3) followed by a magnitude
// (CompressedFloat16): 5 bytes total. Decoding multiplies direction by
// magnitude.
func (b *Buffer) WriteCV4(x, y, z float32) bool {
	mag := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if mag < 1e-6 {
		return b.WriteBytes([]byte{0, 0, 0}) && b.WriteU16(0)
	}
	raw := [3]byte{
		byte(int8(x / mag * 127)),
		byte(int8(y / mag * 127)),
		byte(int8(z / mag * 127)),
	}
	return b.WriteBytes(raw[:]) && b.WriteCF16(mag)
}

func (b *Buffer) ReadCV4() (x, y, z float32, ok bool) {
	p, ok := b.ReadBytes(3)
	if !ok {
		return 0, 0, 0, false
	}
	mag, ok := b.ReadCF16()
	if !ok {
		return 0, 0, 0, false
	}
	dx, dy, dz := DecodeCV3([3]byte{p[0], p[1], p[2]})
	return dx * mag, dy * mag, dz * mag, true
}
