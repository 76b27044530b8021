package audioconvert

import (
	"github.com/lanikai/alohaspa/node"
)

// Process converts the buffer waiting on the input into one mono plane per
// output port.
//
// An output whose previous buffer has not been consumed keeps it. An output
// that runs out of buffers has its data written to a scratch region and
// its status cell set to node.StatusNoBuffer; the cycle still succeeds.
func (n *Splitter) Process() (node.Status, error) {
	in := &n.inPorts[0]
	inio := in.io
	if inio == nil || n.transform == nil {
		return 0, node.ErrNotReady
	}
	n.stats.Cycles.Inc()

	if inio.Status != node.StatusHaveBuffer {
		return node.StatusNeedBuffer, nil
	}
	if inio.BufferID >= uint32(in.nBuffers) {
		inio.Status = node.StatusInvalid
		in.invalid.Inc()
		return node.StatusInvalid, nil
	}
	sbuf := in.buffers[inio.BufferID].buf
	if len(sbuf.Datas) < in.blocks {
		inio.Status = node.StatusInvalid
		in.invalid.Inc()
		return node.StatusInvalid, nil
	}

	src := n.src[:0]
	maxsize := int(^uint(0) >> 1)
	for i := 0; i < in.blocks; i++ {
		d := &sbuf.Datas[i]
		if d.Chunk == nil {
			inio.Status = node.StatusInvalid
			in.invalid.Inc()
			return node.StatusInvalid, nil
		}
		offset := int(d.Chunk.Offset)
		if offset > len(d.Data) {
			offset = len(d.Data)
		}
		size := len(d.Data) - offset
		if int(d.Chunk.Size) < size {
			size = int(d.Chunk.Size)
		}
		src = append(src, d.Data[offset:offset+size])
		if size < maxsize {
			maxsize = size
		}
	}
	frames := maxsize / in.stride
	if frames > MaxSamples {
		frames = MaxSamples
	}

	var res node.Status
	for i := 0; i < n.portCount; i++ {
		out := &n.outPorts[i]
		out.current = -1

		outio := out.io
		if outio == nil {
			continue
		}
		if outio.Status == node.StatusHaveBuffer {
			res |= node.StatusHaveBuffer
			continue
		}
		if outio.BufferID < uint32(out.nBuffers) {
			out.queueBuffer(outio.BufferID)
			outio.BufferID = node.InvalidID
		}
		id, ok := out.dequeueBuffer()
		if !ok {
			outio.Status = node.StatusNoBuffer
			out.underruns.Inc()
			continue
		}
		out.current = int(id)

		d := &out.buffers[id].buf.Datas[0]
		size := len(d.Data)
		if int(d.MaxSize) < size {
			size = int(d.MaxSize)
		}
		if out.ctrl != nil && int(out.ctrl.MaxSize) < size {
			size = int(out.ctrl.MaxSize)
		}
		if f := size / out.stride; f < frames {
			frames = f
		}
	}

	dst := n.dst[:0]
	for i := 0; i < n.portCount; i++ {
		out := &n.outPorts[i]
		if out.current < 0 {
			dst = append(dst, n.empty)
			continue
		}
		d := &out.buffers[out.current].buf.Datas[0]
		dst = append(dst, d.Data)
		d.Chunk.Offset = 0
		d.Chunk.Size = uint32(frames * out.stride)
		d.Chunk.Stride = int32(out.stride)

		out.io.Status = node.StatusHaveBuffer
		out.io.BufferID = uint32(out.current)
		res |= node.StatusHaveBuffer
	}

	n.transform(dst, src, frames)

	inio.Status = node.StatusNeedBuffer
	return res | node.StatusNeedBuffer, nil
}
