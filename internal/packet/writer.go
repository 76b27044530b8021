package packet

import (
	"encoding/binary"
	"math"
)

var byteOrder = binary.LittleEndian

// Writer encodes little-endian values into a fixed, caller-owned buffer. It
// never grows the buffer. Writes that do not fit are dropped but still
// advance the offset, so Length reports the size the output would need.
type Writer struct {
	buffer []byte
	offset int
}

func NewWriter(buffer []byte) *Writer {
	return &Writer{buffer, 0}
}

func NewWriterSize(n int) *Writer {
	return NewWriter(make([]byte, n))
}

func (w *Writer) fits(n int) bool {
	return w.offset+n <= len(w.buffer)
}

func (w *Writer) WriteUint32(v uint32) {
	if w.fits(4) {
		byteOrder.PutUint32(w.buffer[w.offset:], v)
	}
	w.offset += 4
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	if w.fits(8) {
		byteOrder.PutUint64(w.buffer[w.offset:], v)
	}
	w.offset += 8
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// PutUint32At overwrites 4 bytes at an earlier offset, if they were written.
func (w *Writer) PutUint32At(offset int, v uint32) {
	if offset >= 0 && offset+4 <= len(w.buffer) {
		byteOrder.PutUint32(w.buffer[offset:], v)
	}
}

func (w *Writer) WriteSlice(p []byte) {
	if w.fits(len(p)) {
		copy(w.buffer[w.offset:], p)
	}
	w.offset += len(p)
}

func (w *Writer) WriteString(s string) {
	if w.fits(len(s)) {
		copy(w.buffer[w.offset:], s)
	}
	w.offset += len(s)
}

func (w *Writer) ZeroPad(n int) {
	if w.fits(n) {
		for i := 0; i < n; i++ {
			w.buffer[w.offset+i] = 0
		}
	}
	w.offset += n
}

// Pad with zeros up to the next multiple of width, e.g. Align(8) adds zero
// bytes until the next 8-byte boundary.
func (w *Writer) Align(width int) {
	boundary := width * ((w.offset + width - 1) / width)
	w.ZeroPad(boundary - w.offset)
}

// Return the number of bytes written so far, including dropped writes.
func (w *Writer) Length() int {
	return w.offset
}

// Truncate moves the write offset back to n.
func (w *Writer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < w.offset {
		w.offset = n
	}
}

// Return the number of bytes that the underlying buffer can hold.
func (w *Writer) Capacity() int {
	return len(w.buffer)
}

// Overflowed reports whether any write has been dropped.
func (w *Writer) Overflowed() bool {
	return w.offset > len(w.buffer)
}

// Return the bytes written so far, up to the buffer capacity.
func (w *Writer) Bytes() []byte {
	if w.offset > len(w.buffer) {
		return w.buffer
	}
	return w.buffer[:w.offset]
}

// Slice returns the written bytes in [from, to).
func (w *Writer) Slice(from, to int) []byte {
	return w.buffer[from:to]
}

func (w *Writer) Reset() {
	w.offset = 0
}
