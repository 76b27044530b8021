package convert

import (
	"encoding/binary"
	"math"
)

const (
	u8Scale  = 1.0 / 128
	s16Scale = 1.0 / 32767
	s24Scale = 1.0 / 8388607
)

var (
	le = binary.LittleEndian
	be = binary.BigEndian
)

// reader returns sample i of a plane as a float.
type reader func(b []byte, i int) float32

func readU8(b []byte, i int) float32 {
	return float32(b[i])*u8Scale - 1
}

func readS16LE(b []byte, i int) float32 {
	return float32(int16(le.Uint16(b[2*i:]))) * s16Scale
}

func readS16BE(b []byte, i int) float32 {
	return float32(int16(be.Uint16(b[2*i:]))) * s16Scale
}

func readS24LE(b []byte, i int) float32 {
	p := b[3*i : 3*i+3]
	v := int32(uint32(p[0])<<8|uint32(p[1])<<16|uint32(p[2])<<24) >> 8
	return float32(v) * s24Scale
}

func readS24BE(b []byte, i int) float32 {
	p := b[3*i : 3*i+3]
	v := int32(uint32(p[2])<<8|uint32(p[1])<<16|uint32(p[0])<<24) >> 8
	return float32(v) * s24Scale
}

// S24_32 keeps a 24-bit sample in the low bits of a 32-bit word.
func readS24_32LE(b []byte, i int) float32 {
	return float32(int32(le.Uint32(b[4*i:])<<8)>>8) * s24Scale
}

func readS24_32BE(b []byte, i int) float32 {
	return float32(int32(be.Uint32(b[4*i:])<<8)>>8) * s24Scale
}

func readS32LE(b []byte, i int) float32 {
	return float32(int32(le.Uint32(b[4*i:]))>>8) * s24Scale
}

func readS32BE(b []byte, i int) float32 {
	return float32(int32(be.Uint32(b[4*i:]))>>8) * s24Scale
}

func readF32LE(b []byte, i int) float32 {
	return math.Float32frombits(le.Uint32(b[4*i:]))
}

func readF32BE(b []byte, i int) float32 {
	return math.Float32frombits(be.Uint32(b[4*i:]))
}

func putF32(b []byte, i int, v float32) {
	le.PutUint32(b[4*i:], math.Float32bits(v))
}

func copyPlanes(dst, src [][]byte, frames int) {
	for c := range dst {
		copy(dst[c][:4*frames], src[c])
	}
}

func planar(read reader) Func {
	return func(dst, src [][]byte, frames int) {
		for c := range dst {
			s, d := src[c], dst[c]
			for j := 0; j < frames; j++ {
				putF32(d, j, read(s, j))
			}
		}
	}
}

func interleaved(read reader) Func {
	return func(dst, src [][]byte, frames int) {
		n := len(dst)
		s := src[0]
		for j := 0; j < frames; j++ {
			for c, d := range dst {
				putF32(d, j, read(s, j*n+c))
			}
		}
	}
}

// s16ToF32dWide handles four frames per iteration.
func s16ToF32dWide(dst, src [][]byte, frames int) {
	n := len(dst)
	s := src[0]
	j := 0
	for ; j+4 <= frames; j += 4 {
		for c, d := range dst {
			putF32(d, j, readS16LE(s, j*n+c))
			putF32(d, j+1, readS16LE(s, (j+1)*n+c))
			putF32(d, j+2, readS16LE(s, (j+2)*n+c))
			putF32(d, j+3, readS16LE(s, (j+3)*n+c))
		}
	}
	for ; j < frames; j++ {
		for c, d := range dst {
			putF32(d, j, readS16LE(s, j*n+c))
		}
	}
}

// s24ToF32dWide handles four frames per iteration.
func s24ToF32dWide(dst, src [][]byte, frames int) {
	n := len(dst)
	s := src[0]
	j := 0
	for ; j+4 <= frames; j += 4 {
		for c, d := range dst {
			putF32(d, j, readS24LE(s, j*n+c))
			putF32(d, j+1, readS24LE(s, (j+1)*n+c))
			putF32(d, j+2, readS24LE(s, (j+2)*n+c))
			putF32(d, j+3, readS24LE(s, (j+3)*n+c))
		}
	}
	for ; j < frames; j++ {
		for c, d := range dst {
			putF32(d, j, readS24LE(s, j*n+c))
		}
	}
}
