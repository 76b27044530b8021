package packet

import (
	"math"

	errors "golang.org/x/xerrors"
)

// ErrShortBuffer is returned when a read would run past the end of the data.
var ErrShortBuffer = errors.New("short buffer")

// Reader decodes little-endian values from a byte slice. Reads do not check
// bounds; callers use CheckRemaining before reading a fixed-size record.
type Reader struct {
	buffer []byte
	offset int
}

func NewReader(buffer []byte) *Reader {
	return &Reader{buffer, 0}
}

func (r *Reader) ReadUint32() uint32 {
	v := byteOrder.Uint32(r.buffer[r.offset:])
	r.offset += 4
	return v
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *Reader) ReadUint64() uint64 {
	v := byteOrder.Uint64(r.buffer[r.offset:])
	r.offset += 8
	return v
}

func (r *Reader) ReadInt64() int64 {
	return int64(r.ReadUint64())
}

func (r *Reader) ReadFloat32() float32 {
	return math.Float32frombits(r.ReadUint32())
}

func (r *Reader) ReadFloat64() float64 {
	return math.Float64frombits(r.ReadUint64())
}

// ReadSlice returns the next n bytes without copying.
func (r *Reader) ReadSlice(n int) []byte {
	v := r.buffer[r.offset : r.offset+n]
	r.offset += n
	return v
}

func (r *Reader) Skip(n int) {
	r.offset += n
}

// Discard bytes up to the next multiple of width, e.g. Align(8) skips ahead
// until the next aligned 8-byte boundary. Never moves past the end.
func (r *Reader) Align(width int) {
	r.offset = width * ((r.offset + width - 1) / width)
	if r.offset > len(r.buffer) {
		r.offset = len(r.buffer)
	}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Return the number of bytes left in the buffer.
func (r *Reader) Remaining() int {
	return len(r.buffer) - r.offset
}

func (r *Reader) CheckRemaining(needed int) error {
	if r.Remaining() < needed {
		return errors.Errorf("%d bytes remaining, %d needed: %w", r.Remaining(), needed, ErrShortBuffer)
	}
	return nil
}
