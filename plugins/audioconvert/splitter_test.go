package audioconvert

import (
	"testing"

	"github.com/lanikai/alohaspa/internal/alloc"
	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/plugin"
	"github.com/lanikai/alohaspa/pod"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errors "golang.org/x/xerrors"
)

func newTestSplitter(t *testing.T) *Splitter {
	t.Helper()
	h, err := Factory{}.Init(map[string]string{KeyNodeName: t.Name()}, &plugin.Support{CPU: plugin.FixedCPU(0)})
	require.NoError(t, err)
	return h.(*Splitter)
}

func audioInfo(format param.AudioFormat, rate, channels uint32) param.AudioInfo {
	info := param.AudioInfo{Format: format, Rate: rate, Channels: channels}
	copy(info.Position[:], param.DefaultPositions(int(channels)))
	return info
}

func buildFormat(t *testing.T, info param.AudioInfo) pod.Pod {
	t.Helper()
	p, err := param.BuildAudioRaw(pod.NewBuilder(make([]byte, 2048)), param.Format, &info)
	require.NoError(t, err)
	return p
}

func buildProfile(t *testing.T, info param.AudioInfo) pod.Pod {
	t.Helper()
	p, err := param.BuildProfile(pod.NewBuilder(make([]byte, 2048)), buildFormat(t, info))
	require.NoError(t, err)
	return p
}

func setProfile(t *testing.T, n *Splitter, channels, rate uint32) {
	t.Helper()
	require.NoError(t, n.SetParam(param.Profile, 0, buildProfile(t, audioInfo(param.AudioFormatF32, rate, channels))))
}

func allocate(t *testing.T, count, blocks, size int32) []*node.Buffer {
	t.Helper()
	set, err := alloc.Allocate(alloc.Params{
		BufferRequirements: param.BufferRequirements{
			Buffers: count,
			Blocks:  blocks,
			Size:    size,
			Stride:  4,
			Align:   16,
		},
	})
	require.NoError(t, err)
	return set.Buffers
}

func TestProfileCreatesPorts(t *testing.T) {
	n := newTestSplitter(t)

	var events []node.Event
	require.NoError(t, n.SetCallbacks(&node.Callbacks{Event: func(ev node.Event) {
		events = append(events, ev)
	}}))

	setProfile(t, n, 2, 48000)
	assert.Equal(t, []node.Event{node.EventPortsChanged}, events)

	nIn, maxIn, nOut, maxOut := n.PortCount()
	assert.Equal(t, []uint32{1, 1, 2, 2}, []uint32{nIn, maxIn, nOut, maxOut})

	ins, outs := make([]uint32, 1), make([]uint32, 4)
	ni, no := n.PortIDs(ins, outs)
	assert.Equal(t, 1, ni)
	assert.Equal(t, []uint32{0, 1}, outs[:no])

	for i, want := range []string{"FL", "FR"} {
		info, err := n.PortInfo(node.Output, uint32(i))
		require.NoError(t, err)
		assert.Equal(t, want, info.Props[node.PropPortChannel])
		assert.Equal(t, portDSP, info.Props[node.PropPortDSP])
		assert.Equal(t, uint32(48000), info.Rate)

		state, err := n.PortState(node.Output, uint32(i))
		require.NoError(t, err)
		assert.Equal(t, FormatProposed, state)

		var index uint32
		p, err := n.PortEnumParams(node.Output, uint32(i), param.EnumFormat, &index, nil, pod.NewBuilder(make([]byte, 1024)))
		require.NoError(t, err)
		var got param.AudioInfo
		require.NoError(t, param.ParseAudioRaw(p, &got))
		assert.Equal(t, param.AudioFormatF32P, got.Format)
		assert.Equal(t, uint32(1), got.Channels)
		assert.Equal(t, uint32(48000), got.Rate)
	}

	_, err := n.PortInfo(node.Output, 2)
	assert.True(t, errors.Is(err, node.ErrInvalidArgument))

	// Same profile again changes nothing.
	setProfile(t, n, 2, 48000)
	assert.Len(t, events, 1)

	setProfile(t, n, 1, 44100)
	assert.Len(t, events, 2)
	_, _, nOut, _ = n.PortCount()
	assert.Equal(t, uint32(1), nOut)
}

func TestProfileRejected(t *testing.T) {
	n := newTestSplitter(t)

	err := n.SetParam(param.Profile, 0, buildFormat(t, audioInfo(param.AudioFormatF32, 48000, 2)))
	assert.Error(t, err)

	err = n.SetParam(param.Props, 0, nil)
	assert.True(t, errors.Is(err, node.ErrUnknownParam))

	_, _, nOut, _ := n.PortCount()
	assert.Zero(t, nOut)
}

func TestStrideAndBlocks(t *testing.T) {
	n := newTestSplitter(t)
	setProfile(t, n, 2, 48000)

	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32P, 48000, 2))))
	in := &n.inPorts[0]
	assert.Equal(t, 2, in.blocks)
	assert.Equal(t, 4, in.stride)

	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32, 48000, 2))))
	assert.Equal(t, 1, in.blocks)
	assert.Equal(t, 8, in.stride)

	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatS24, 48000, 2))))
	assert.Equal(t, 1, in.blocks)
	assert.Equal(t, 6, in.stride)

	state, err := n.PortState(node.Input, 0)
	require.NoError(t, err)
	assert.Equal(t, FormatCommitted, state)
}

func TestSetFormatRejected(t *testing.T) {
	n := newTestSplitter(t)

	// No profile: the input accepts no channel count.
	err := n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32, 48000, 2)))
	assert.True(t, errors.Is(err, node.ErrInvalidFormat))

	setProfile(t, n, 2, 48000)

	tests := []struct {
		dir  node.Direction
		info param.AudioInfo
		want error
	}{
		{node.Output, audioInfo(param.AudioFormatF32P, 44100, 1), node.ErrInvalidFormat},
		{node.Output, audioInfo(param.AudioFormatS16, 48000, 1), node.ErrInvalidFormat},
		{node.Output, audioInfo(param.AudioFormatF32P, 48000, 2), node.ErrInvalidFormat},
		{node.Input, audioInfo(param.AudioFormatF32, 48000, 3), node.ErrInvalidFormat},
		{node.Input, audioInfo(param.AudioFormatF64, 48000, 2), node.ErrUnsupportedConversion},
	}
	for _, test := range tests {
		err := n.PortSetParam(test.dir, 0, param.Format, 0, buildFormat(t, test.info))
		assert.True(t, errors.Is(err, test.want), "%v %v: %v", test.dir, &test.info, err)
	}

	state, err := n.PortState(node.Output, 0)
	require.NoError(t, err)
	assert.Equal(t, FormatProposed, state)
	state, err = n.PortState(node.Input, 0)
	require.NoError(t, err)
	assert.Equal(t, FormatProposed, state)
	assert.Nil(t, n.transform)
	assert.Equal(t, param.AudioFormatF32, n.inPorts[0].format.Format)

	err = n.PortSetParam(node.Input, 0, param.Buffers, 0, nil)
	assert.True(t, errors.Is(err, node.ErrUnknownParam))
}

func TestClearFormat(t *testing.T) {
	n := newTestSplitter(t)
	setProfile(t, n, 2, 48000)
	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatS16, 48000, 2))))
	require.NoError(t, n.PortUseBuffers(node.Input, 0, allocate(t, 2, 1, 4096)))
	require.NotNil(t, n.transform)

	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, nil))
	in := &n.inPorts[0]
	assert.True(t, in.haveFormat, "input falls back to the profile format")
	assert.Equal(t, param.AudioFormatF32, in.format.Format)
	assert.Zero(t, in.nBuffers)
	assert.Nil(t, n.transform)

	require.NoError(t, n.PortSetParam(node.Output, 1, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32P, 48000, 1))))
	require.NoError(t, n.PortUseBuffers(node.Output, 1, allocate(t, 2, 1, 4096)))
	require.NoError(t, n.PortSetParam(node.Output, 1, param.Format, 0, nil))
	out := &n.outPorts[1]
	assert.False(t, out.haveFormat)
	assert.Zero(t, out.nBuffers)
	assert.Zero(t, out.queue.len())

	err := n.PortUseBuffers(node.Output, 1, allocate(t, 1, 1, 4096))
	assert.True(t, errors.Is(err, node.ErrNotReady))
}

func TestUseBuffers(t *testing.T) {
	n := newTestSplitter(t)

	err := n.PortUseBuffers(node.Input, 0, allocate(t, 1, 1, 4096))
	assert.True(t, errors.Is(err, node.ErrNotReady))

	setProfile(t, n, 2, 48000)
	require.NoError(t, n.PortSetParam(node.Output, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32P, 48000, 1))))

	good := allocate(t, 3, 1, 4096)
	require.NoError(t, n.PortUseBuffers(node.Output, 0, good))
	out := &n.outPorts[0]
	assert.Equal(t, 3, out.nBuffers)
	assert.Equal(t, 3, out.queue.len(), "output buffers start out queued")

	state, err := n.PortState(node.Output, 0)
	require.NoError(t, err)
	assert.Equal(t, BuffersAssigned, state)

	bad := allocate(t, 2, 1, 4096)
	bad[1].Datas[0].Type = node.DataInvalid
	err = n.PortUseBuffers(node.Output, 0, bad)
	assert.True(t, errors.Is(err, node.ErrInvalidBuffer))
	assert.Equal(t, 3, out.nBuffers, "failed call keeps the old buffers")
	assert.Same(t, good[2], out.buffers[2].buf)

	bad = allocate(t, 1, 1, 4096)
	bad[0].Datas[0].Data = nil
	err = n.PortUseBuffers(node.Output, 0, bad)
	assert.True(t, errors.Is(err, node.ErrInvalidBuffer))

	err = n.PortUseBuffers(node.Output, 0, allocate(t, MaxBuffers+1, 1, 64))
	assert.True(t, errors.Is(err, node.ErrInvalidArgument))

	err = n.PortUseBuffers(node.Input, 0, allocate(t, 2, 1, 4096))
	assert.True(t, errors.Is(err, node.ErrNotReady), "the profile format is only proposed")

	// Input buffers are handed over by the driver, so none are queued.
	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32, 48000, 2))))
	require.NoError(t, n.PortUseBuffers(node.Input, 0, allocate(t, 2, 1, 4096)))
	assert.Zero(t, n.inPorts[0].queue.len())

	require.NoError(t, n.PortUseBuffers(node.Output, 0, nil))
	assert.Zero(t, out.nBuffers)
	assert.Zero(t, out.queue.len())
}

func TestReuseBufferIdempotent(t *testing.T) {
	n := newTestSplitter(t)
	setProfile(t, n, 2, 48000)
	require.NoError(t, n.PortSetParam(node.Output, 1, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32P, 48000, 1))))
	require.NoError(t, n.PortUseBuffers(node.Output, 1, allocate(t, 2, 1, 4096)))
	out := &n.outPorts[1]

	id, ok := out.dequeueBuffer()
	require.True(t, ok)
	assert.Equal(t, uint32(0), id)
	assert.Equal(t, 1, out.queue.len())

	require.NoError(t, n.ReuseBuffer(1, 0))
	require.NoError(t, n.ReuseBuffer(1, 0))
	assert.Equal(t, 2, out.queue.len())

	var seen []uint32
	for {
		id, ok := out.dequeueBuffer()
		if !ok {
			break
		}
		seen = append(seen, id)
	}
	assert.Equal(t, []uint32{1, 0}, seen)

	assert.True(t, errors.Is(n.ReuseBuffer(1, 2), node.ErrInvalidArgument))
	assert.True(t, errors.Is(n.ReuseBuffer(2, 0), node.ErrInvalidArgument))
}

func TestPortSetIO(t *testing.T) {
	n := newTestSplitter(t)
	setProfile(t, n, 1, 48000)

	io := &node.IOBuffers{}
	require.NoError(t, n.PortSetIO(node.Output, 0, param.IOBuffers, io))
	assert.Same(t, io, n.outPorts[0].io)

	rng := &node.IORange{MaxSize: 64}
	require.NoError(t, n.PortSetIO(node.Output, 0, param.IORange, rng))
	assert.Same(t, rng, n.outPorts[0].ctrl)

	err := n.PortSetIO(node.Output, 0, param.IOBuffers, rng)
	assert.True(t, errors.Is(err, node.ErrInvalidArgument))
	err = n.PortSetIO(node.Output, 0, param.IOClock, io)
	assert.True(t, errors.Is(err, node.ErrUnknownParam))

	require.NoError(t, n.PortSetIO(node.Output, 0, param.IOBuffers, nil))
	assert.Nil(t, n.outPorts[0].io)
}

func TestUnsupported(t *testing.T) {
	n := newTestSplitter(t)
	assert.Equal(t, node.ErrUnsupported, n.AddPort(node.Output, 0))
	assert.Equal(t, node.ErrUnsupported, n.RemovePort(node.Output, 0))
	assert.Equal(t, node.ErrUnsupported, n.SetIO(param.IOClock, nil))
	assert.Equal(t, node.ErrUnsupported, n.PortSendCommand(node.Input, 0, node.CommandStart))
	assert.Equal(t, node.ErrUnsupported, n.SendCommand(node.CommandFlush))
	_, err := n.PortAllocBuffers(node.Input, 0, nil, nil)
	assert.Equal(t, node.ErrUnsupported, err)

	require.NoError(t, n.SendCommand(node.CommandStart))
	assert.True(t, n.Started())
	require.NoError(t, n.SendCommand(node.CommandPause))
	assert.False(t, n.Started())
}

func TestRecommitFormat(t *testing.T) {
	n := newTestSplitter(t)
	setProfile(t, n, 2, 48000)
	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32, 48000, 2))))
	require.NoError(t, n.PortUseBuffers(node.Input, 0, allocate(t, 2, 1, 4096)))

	// Same layout, different rate: buffers stay valid.
	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32, 44100, 2))))
	state, err := n.PortState(node.Input, 0)
	require.NoError(t, err)
	assert.Equal(t, BuffersAssigned, state)
	assert.Equal(t, 2, n.inPorts[0].nBuffers)

	// S16 halves the stride.
	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatS16, 48000, 2))))
	state, err = n.PortState(node.Input, 0)
	require.NoError(t, err)
	assert.Equal(t, FormatCommitted, state)
	assert.Zero(t, n.inPorts[0].nBuffers)
	assert.Equal(t, 4, n.inPorts[0].stride)
}
