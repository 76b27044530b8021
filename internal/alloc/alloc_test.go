package alloc

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errors "golang.org/x/xerrors"
)

func testParams(mem node.DataType) Params {
	return Params{
		BufferRequirements: param.BufferRequirements{Buffers: 3, Blocks: 2, Size: 100, Stride: 4, Align: 16},
		Metas:              []MetaParams{{Type: param.MetaHeader, Size: param.MetaHeaderSize}},
		Memory:             mem,
	}
}

func checkSet(t *testing.T, s *Set, want node.DataType) {
	require.Len(t, s.Buffers, 3)
	for _, b := range s.Buffers {
		require.Len(t, b.Datas, 2)
		for _, d := range b.Datas {
			assert.Equal(t, want, d.Type)
			assert.Len(t, d.Data, 100)
			assert.Equal(t, uint32(100), d.MaxSize)
			assert.Equal(t, int32(4), d.Chunk.Stride)
			assert.Zero(t, uintptr(unsafe.Pointer(&d.Data[0]))%16)
		}
		assert.Len(t, b.FindMeta(uint32(param.MetaHeader)), param.MetaHeaderSize)
	}

	// Planes must not overlap.
	s.Buffers[0].Datas[1].Data[99] = 1
	assert.Zero(t, s.Buffers[1].Datas[0].Data[0])
}

func TestAllocateMemPtr(t *testing.T) {
	s, err := Allocate(testParams(node.DataMemPtr))
	require.NoError(t, err)
	checkSet(t, s, node.DataMemPtr)
	assert.NoError(t, s.Free())
}

func TestAllocateMemFd(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("memfd is linux only")
	}
	s, err := Allocate(testParams(node.DataMemFd))
	require.NoError(t, err)
	checkSet(t, s, node.DataMemFd)
	assert.True(t, s.Buffers[0].Datas[0].Fd >= 0)
	assert.NoError(t, s.Free())
}

func TestAllocateRejectsBadParams(t *testing.T) {
	p := testParams(node.DataMemPtr)
	p.Align = 12
	_, err := Allocate(p)
	assert.True(t, errors.Is(err, node.ErrInvalidArgument))

	p = testParams(node.DataDmaBuf)
	_, err = Allocate(p)
	assert.True(t, errors.Is(err, node.ErrUnsupported))
}
