package wire

import (
	"math"
	"testing"
)

func TestCF16RoundTripWithinTolerance(t *testing.T) {
	values := []float32{0, 0.001, 0.01, 1, 5.5, 42, 999, 9999.9, -500, -0.05}
	for _, v := range values {
		enc := EncodeCF16(v)
		dec := DecodeCF16(enc)
		if v == 0 {
			if dec != 0 {
				t.Errorf("encode(0) should decode exactly to 0, got %v", dec)
			}
			continue
		}
		relErr := math.Abs(float64(dec-v)) / math.Abs(float64(v))
		if relErr > 0.0025 {
			t.Errorf("value %v: decoded %v, relative error %v exceeds 0.25%%%% tolerance", v, dec, relErr)
		}
	}
}

func TestCF16OverflowClamps(t *testing.T) {
	enc := EncodeCF16(50000)
	if enc&0xFFF != 0xFFF {
		t.Fatalf("overflow should clamp mantissa to 0xFFF, got %#x", enc&0xFFF)
	}
	if (enc>>12)&0x7 != 7 {
		t.Fatalf("overflow should clamp scale to 7, got %#x", (enc>>12)&0x7)
	}
}

func TestCV3RoundTripWithinTolerance(t *testing.T) {
	vectors := [][3]float32{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}, {-1, 2, -3},
	}
	for _, v := range vectors {
		mag := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
		ux, uy, uz := v[0]/mag, v[1]/mag, v[2]/mag

		raw := EncodeCV3(v[0], v[1], v[2])
		dx, dy, dz := DecodeCV3(raw)

		const tol = 1.0 / 127
		if math.Abs(float64(dx-ux)) > tol || math.Abs(float64(dy-uy)) > tol || math.Abs(float64(dz-uz)) > tol {
			t.Errorf("vector %v: decoded (%v,%v,%v) exceeds 1/127 tolerance", v, dx, dy, dz)
		}
	}
}

func TestCV3ZeroVector(t *testing.T) {
	raw := EncodeCV3(0, 0, 0)
	if raw != [3]byte{0, 0, 0} {
		t.Fatalf("zero vector should encode as zero bytes, got %v", raw)
	}
}

func TestCV4RoundTrip(t *testing.T) {
	buf := NewWriteBuffer(16)
	if !buf.WriteCV4(3, 4, 0) {
		t.Fatal("write failed")
	}
	r := NewBuffer(buf.Bytes())
	x, y, z, ok := r.ReadCV4()
	if !ok {
		t.Fatal("read failed")
	}
	mag := math.Sqrt(float64(x*x + y*y + z*z))
	if math.Abs(mag-5) > 0.05 {
		t.Fatalf("expected magnitude ~5, got %v", mag)
	}
}
