// Package alloc creates buffers matching a node's negotiated Buffers and
// Meta parameters. Buffers are owned by the caller, never by the node.
package alloc

import (
	"unsafe"

	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"

	errors "golang.org/x/xerrors"
)

// Params describe a set of buffers.
type Params struct {
	param.BufferRequirements

	// Metas lists the metadata blocks attached to every buffer.
	Metas []MetaParams

	// Memory is node.DataMemPtr or node.DataMemFd.
	Memory node.DataType
}

type MetaParams struct {
	Type param.MetaType
	Size int32
}

// Set is an allocated group of buffers.
type Set struct {
	Buffers []*node.Buffer

	free func() error
}

// Free releases the memory of the set. The buffers must no longer be in use
// by any node.
func (s *Set) Free() error {
	s.Buffers = nil
	if s.free == nil {
		return nil
	}
	err := s.free()
	s.free = nil
	return err
}

func (p *Params) validate() error {
	r := p.BufferRequirements
	if r.Buffers <= 0 || r.Blocks <= 0 || r.Size <= 0 {
		return errors.Errorf("%d buffers of %d blocks of %d bytes: %w", r.Buffers, r.Blocks, r.Size, node.ErrInvalidArgument)
	}
	if r.Align <= 0 || r.Align&(r.Align-1) != 0 {
		return errors.Errorf("alignment %d: %w", r.Align, node.ErrInvalidArgument)
	}
	return nil
}

// layout returns the aligned size of one data plane and of all planes and
// metadata of one buffer.
func (p *Params) layout() (plane, perBuffer int) {
	align := int(p.Align)
	plane = (int(p.Size) + align - 1) &^ (align - 1)
	perBuffer = plane * int(p.Blocks)
	for _, m := range p.Metas {
		perBuffer += (int(m.Size) + 7) &^ 7
	}
	perBuffer = (perBuffer + align - 1) &^ (align - 1)
	return
}

// Allocate creates p.Buffers buffers.
func Allocate(p Params) (*Set, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	switch p.Memory {
	case node.DataMemPtr, node.DataInvalid:
		return allocMemPtr(p)
	case node.DataMemFd:
		return allocMemFd(p)
	}
	return nil, errors.Errorf("memory type %v: %w", p.Memory, node.ErrUnsupported)
}

func allocMemPtr(p Params) (*Set, error) {
	plane, perBuffer := p.layout()
	align := int(p.Align)
	mem := make([]byte, perBuffer*int(p.Buffers)+align)
	off := 0
	if mis := int(uintptr(unsafe.Pointer(&mem[0])) & uintptr(align-1)); mis != 0 {
		off = align - mis
	}
	return &Set{Buffers: carve(p, mem[off:], plane, perBuffer, -1)}, nil
}

// carve splits mem into buffers. Data planes come first so they keep the
// requested alignment; metadata follows.
func carve(p Params, mem []byte, plane, perBuffer int, fd int64) []*node.Buffer {
	n := int(p.Buffers)
	blocks := int(p.Blocks)
	buffers := make([]*node.Buffer, n)
	chunks := make([]node.Chunk, n*blocks)
	for i := range buffers {
		base := i * perBuffer
		b := &node.Buffer{
			Datas: make([]node.Data, blocks),
			Metas: make([]node.Meta, len(p.Metas)),
		}
		for j := range b.Datas {
			off := base + j*plane
			chunk := &chunks[i*blocks+j]
			chunk.Stride = p.Stride
			b.Datas[j] = node.Data{
				Type:      node.DataMemPtr,
				Fd:        fd,
				MapOffset: uint32(off),
				MaxSize:   uint32(p.Size),
				Data:      mem[off : off+int(p.Size) : off+int(p.Size)],
				Chunk:     chunk,
			}
			if fd >= 0 {
				b.Datas[j].Type = node.DataMemFd
			}
		}
		off := base + blocks*plane
		for j, m := range p.Metas {
			b.Metas[j] = node.Meta{Type: uint32(m.Type), Data: mem[off : off+int(m.Size)]}
			off += (int(m.Size) + 7) &^ 7
		}
		buffers[i] = b
	}
	return buffers
}
