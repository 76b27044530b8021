package main

import (
	"encoding/binary"
	"math"

	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"

	"github.com/pkg/errors"
)

type sampleWriter func(b []byte, v float64)

var writers = map[param.AudioFormat]sampleWriter{
	param.AudioFormatU8: func(b []byte, v float64) { b[0] = uint8(int8(v*127)) ^ 0x80 },
	param.AudioFormatS16LE: func(b []byte, v float64) {
		binary.LittleEndian.PutUint16(b, uint16(int16(v*math.MaxInt16)))
	},
	param.AudioFormatS16BE: func(b []byte, v float64) {
		binary.BigEndian.PutUint16(b, uint16(int16(v*math.MaxInt16)))
	},
	param.AudioFormatS24LE: func(b []byte, v float64) {
		s := uint32(int32(v * (1<<23 - 1)))
		b[0], b[1], b[2] = byte(s), byte(s>>8), byte(s>>16)
	},
	param.AudioFormatS24BE: func(b []byte, v float64) {
		s := uint32(int32(v * (1<<23 - 1)))
		b[0], b[1], b[2] = byte(s>>16), byte(s>>8), byte(s)
	},
	param.AudioFormatS24_32LE: func(b []byte, v float64) {
		binary.LittleEndian.PutUint32(b, uint32(int32(v*(1<<23-1))))
	},
	param.AudioFormatS24_32BE: func(b []byte, v float64) {
		binary.BigEndian.PutUint32(b, uint32(int32(v*(1<<23-1))))
	},
	param.AudioFormatS32LE: func(b []byte, v float64) {
		binary.LittleEndian.PutUint32(b, uint32(int32(v*math.MaxInt32)))
	},
	param.AudioFormatS32BE: func(b []byte, v float64) {
		binary.BigEndian.PutUint32(b, uint32(int32(v*math.MaxInt32)))
	},
	param.AudioFormatF32LE: func(b []byte, v float64) {
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	},
	param.AudioFormatF32BE: func(b []byte, v float64) {
		binary.BigEndian.PutUint32(b, math.Float32bits(float32(v)))
	},
}

// Planar formats share the sample writer of their interleaved counterpart.
var planarBase = map[param.AudioFormat]param.AudioFormat{
	param.AudioFormatU8P:     param.AudioFormatU8,
	param.AudioFormatS16P:    param.AudioFormatS16,
	param.AudioFormatS24P:    param.AudioFormatS24,
	param.AudioFormatS24_32P: param.AudioFormatS24_32,
	param.AudioFormatS32P:    param.AudioFormatS32,
	param.AudioFormatF32P:    param.AudioFormatF32,
}

// tone generates a sine per channel, each an octave above the previous
// one, quantum frames per buffer.
type tone struct {
	freq    float64
	amp     float64
	quantum int
	frame   int64
}

func (t *tone) fill(buf *node.Buffer, format *param.AudioInfo) error {
	f := format.Format
	if base, ok := planarBase[f]; ok {
		f = base
	}
	write, ok := writers[f]
	if !ok {
		return errors.Errorf("tone: unsupported format %v", format.Format)
	}
	width := format.Format.Width()
	stride := format.Stride()
	blocks := format.Blocks()
	if len(buf.Datas) < blocks {
		return errors.Errorf("tone: %d planes for %d blocks", len(buf.Datas), blocks)
	}

	frames := t.quantum
	for i := 0; i < blocks; i++ {
		if n := len(buf.Datas[i].Data) / stride; n < frames {
			frames = n
		}
	}

	channels := int(format.Channels)
	for i := 0; i < frames; i++ {
		ts := float64(t.frame+int64(i)) / float64(format.Rate)
		for c := 0; c < channels; c++ {
			v := t.amp * math.Sin(2*math.Pi*t.freq*float64(int(1)<<uint(c%8))*ts)
			if blocks > 1 {
				write(buf.Datas[c].Data[i*width:], v)
			} else {
				write(buf.Datas[0].Data[i*stride+c*width:], v)
			}
		}
	}
	for i := 0; i < blocks; i++ {
		buf.Datas[i].Chunk.Offset = 0
		buf.Datas[i].Chunk.Size = uint32(frames * stride)
		buf.Datas[i].Chunk.Stride = int32(stride)
	}
	t.frame += int64(frames)
	return nil
}

// peak returns the largest magnitude of a F32 mono plane.
func peak(d *node.Data) float32 {
	var max float32
	end := d.Chunk.Offset + d.Chunk.Size
	if end > uint32(len(d.Data)) {
		end = uint32(len(d.Data))
	}
	for i := d.Chunk.Offset; i+4 <= end; i += 4 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(d.Data[i:]))
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}
