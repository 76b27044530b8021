package audioconvert

import (
	"testing"

	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/pod"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errors "golang.org/x/xerrors"
)

// collect runs an enumeration to the end.
func collect(t *testing.T, enum func(index *uint32, b *pod.Builder) (pod.Pod, error)) []pod.Pod {
	t.Helper()
	var (
		list  []pod.Pod
		index uint32
	)
	for {
		b := pod.NewBuilder(make([]byte, 4096))
		p, err := enum(&index, b)
		if errors.Is(err, node.ErrDone) {
			return list
		}
		require.NoError(t, err)
		list = append(list, p)
	}
}

func listIDs(t *testing.T, list []pod.Pod) []param.ID {
	t.Helper()
	var ids []param.ID
	for _, p := range list {
		id, err := param.ParseList(p)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestEnumParamList(t *testing.T) {
	n := newTestSplitter(t)

	nodeList := collect(t, func(index *uint32, b *pod.Builder) (pod.Pod, error) {
		return n.EnumParams(param.List, index, nil, b)
	})
	assert.Equal(t, []param.ID{param.Profile}, listIDs(t, nodeList))

	portList := collect(t, func(index *uint32, b *pod.Builder) (pod.Pod, error) {
		return n.PortEnumParams(node.Input, 0, param.List, index, nil, b)
	})
	assert.Equal(t, []param.ID{param.EnumFormat, param.Format, param.Buffers, param.Meta, param.IO}, listIDs(t, portList))

	var index uint32
	_, err := n.PortEnumParams(node.Input, 0, param.EnumProfile, &index, nil, pod.NewBuilder(make([]byte, 1024)))
	assert.True(t, errors.Is(err, node.ErrUnknownParam))

	_, err = n.PortEnumParams(node.Output, 0, param.List, &index, nil, pod.NewBuilder(make([]byte, 1024)))
	assert.True(t, errors.Is(err, node.ErrInvalidArgument), "no output ports without a profile")
}

func TestEnumInputFormats(t *testing.T) {
	n := newTestSplitter(t)

	list := collect(t, func(index *uint32, b *pod.Builder) (pod.Pod, error) {
		return n.PortEnumParams(node.Input, 0, param.EnumFormat, index, nil, b)
	})
	require.Len(t, list, 1)

	obj, err := pod.DecodeObject(list[0])
	require.NoError(t, err)
	assert.Equal(t, uint32(param.EnumFormat), obj.ID)
	formats, ok := obj.Find(param.FormatKeyAudioFormat).Value.(pod.Choice)
	require.True(t, ok)
	assert.Equal(t, pod.ChoiceEnum, formats.Kind)
	assert.Equal(t, pod.Id(param.AudioFormatF32), formats.Default())
	assert.Len(t, formats.Alternatives(), len(inputFormats))

	// Every advertised format has a transform.
	for _, v := range formats.Alternatives() {
		f := param.AudioFormat(v.(pod.Id))
		require.NoError(t, n.setupConvert(&param.AudioInfo{Format: f}), "%v", f)
	}
}

func TestEnumFormatFiltered(t *testing.T) {
	n := newTestSplitter(t)

	filter, err := pod.NewBuilder(make([]byte, 1024)).Object(param.ObjectFormat, uint32(param.Format),
		pod.Prop{Key: param.FormatKeyAudioFormat, Value: pod.Id(param.AudioFormatS16)},
		pod.Prop{Key: param.FormatKeyAudioRate, Value: pod.Int(44100)},
		pod.Prop{Key: param.FormatKeyAudioChannels, Value: pod.Int(2)},
	)
	require.NoError(t, err)

	var index uint32
	p, err := n.PortEnumParams(node.Input, 0, param.EnumFormat, &index, filter, pod.NewBuilder(make([]byte, 1024)))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)

	var info param.AudioInfo
	require.NoError(t, param.ParseAudioRaw(p, &info))
	assert.Equal(t, param.AudioFormatS16, info.Format)
	assert.Equal(t, uint32(44100), info.Rate)
	assert.Equal(t, uint32(2), info.Channels)

	filter, err = pod.NewBuilder(make([]byte, 1024)).Object(param.ObjectFormat, uint32(param.Format),
		pod.Prop{Key: param.FormatKeyAudioFormat, Value: pod.Id(param.AudioFormatF64)},
	)
	require.NoError(t, err)
	index = 0
	_, err = n.PortEnumParams(node.Input, 0, param.EnumFormat, &index, filter, pod.NewBuilder(make([]byte, 1024)))
	assert.True(t, errors.Is(err, node.ErrDone))
}

func TestEnumOutOfSpace(t *testing.T) {
	n := newTestSplitter(t)
	var index uint32
	_, err := n.PortEnumParams(node.Input, 0, param.EnumFormat, &index, nil, pod.NewBuilder(make([]byte, 16)))
	assert.True(t, errors.Is(err, pod.ErrOutOfSpace))
	assert.Zero(t, index, "a failed write keeps the candidate")

	p, err := n.PortEnumParams(node.Input, 0, param.EnumFormat, &index, nil, pod.NewBuilder(make([]byte, 4096)))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
	v, err := p.Value()
	require.NoError(t, err)
	obj := v.(pod.Object)
	prop := obj.Find(param.FormatKeyAudioFormat)
	require.NotNil(t, prop)
	formats, ok := prop.Value.(pod.Choice)
	require.True(t, ok)
	assert.Equal(t, pod.Id(param.AudioFormatF32), formats.Default())
}

func TestEnumNeedsFormat(t *testing.T) {
	n := newTestSplitter(t)
	for _, id := range []param.ID{param.Format, param.Buffers, param.Meta} {
		var index uint32
		_, err := n.PortEnumParams(node.Input, 0, id, &index, nil, pod.NewBuilder(make([]byte, 1024)))
		assert.True(t, errors.Is(err, node.ErrNotReady), "%v", id)
	}

	io := collect(t, func(index *uint32, b *pod.Builder) (pod.Pod, error) {
		return n.PortEnumParams(node.Input, 0, param.IO, index, nil, b)
	})
	require.Len(t, io, 2)
	typ, size, err := param.ParseIO(io[0])
	require.NoError(t, err)
	assert.Equal(t, param.IOBuffers, typ)
	assert.Equal(t, int32(8), size)
	typ, size, err = param.ParseIO(io[1])
	require.NoError(t, err)
	assert.Equal(t, param.IORange, typ)
	assert.Equal(t, int32(16), size)
}

func TestEnumBuffersAndMeta(t *testing.T) {
	n := newTestSplitter(t)
	setProfile(t, n, 2, 48000)
	require.NoError(t, n.PortSetParam(node.Output, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32P, 48000, 1))))

	list := collect(t, func(index *uint32, b *pod.Builder) (pod.Pod, error) {
		return n.PortEnumParams(node.Output, 0, param.Buffers, index, nil, b)
	})
	require.Len(t, list, 1)
	v, err := list[0].Value()
	require.NoError(t, err)
	obj := v.(pod.Object)
	assert.Equal(t, pod.NewRange(pod.Int(1), pod.Int(1), pod.Int(MaxBuffers)), obj.Find(param.BuffersKeyBuffers).Value)
	assert.Equal(t, pod.NewRange(pod.Int(4096), pod.Int(64), pod.Int(4096)), obj.Find(param.BuffersKeySize).Value)

	b := pod.NewBuilder(make([]byte, 1024))
	fixed, err := b.Value(pod.Fixate(obj))
	require.NoError(t, err)
	req, err := param.ParseBuffers(fixed)
	require.NoError(t, err)
	assert.Equal(t, param.BufferRequirements{Buffers: 1, Blocks: 1, Size: 4096, Stride: 4, Align: 16}, req)

	meta := collect(t, func(index *uint32, b *pod.Builder) (pod.Pod, error) {
		return n.PortEnumParams(node.Output, 0, param.Meta, index, nil, b)
	})
	require.Len(t, meta, 1)
	typ, size, err := param.ParseMeta(meta[0])
	require.NoError(t, err)
	assert.Equal(t, param.MetaHeader, typ)
	assert.Equal(t, int32(param.MetaHeaderSize), size)

	format := collect(t, func(index *uint32, b *pod.Builder) (pod.Pod, error) {
		return n.PortEnumParams(node.Output, 0, param.Format, index, nil, b)
	})
	require.Len(t, format, 1)
	var info param.AudioInfo
	require.NoError(t, param.ParseAudioRaw(format[0], &info))
	assert.Equal(t, param.ChannelFL, info.Position[0])
}
