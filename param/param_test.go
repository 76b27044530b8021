package param

import (
	"testing"

	"github.com/lanikai/alohaspa/pod"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errors "golang.org/x/xerrors"
)

func TestAudioRawRoundTrip(t *testing.T) {
	info := AudioInfo{Format: AudioFormatF32P, Rate: 48000, Channels: 2}
	info.Position[0] = ChannelFL
	info.Position[1] = ChannelFR

	b := pod.NewBuilder(make([]byte, 512))
	p, err := BuildAudioRaw(b, Format, &info)
	require.NoError(t, err)
	assert.Equal(t, uint32(Format), p.ObjectID())

	mt, mst, err := ParseFormat(p)
	require.NoError(t, err)
	assert.Equal(t, MediaTypeAudio, mt)
	assert.Equal(t, MediaSubtypeRaw, mst)

	var got AudioInfo
	require.NoError(t, ParseAudioRaw(p, &got))
	assert.Equal(t, info, got)
}

func TestParseAudioRawMissingRate(t *testing.T) {
	b := pod.NewBuilder(make([]byte, 512))
	p, err := BuildAudioRaw(b, Format, &AudioInfo{Format: AudioFormatS16, Channels: 1})
	require.NoError(t, err)

	var got AudioInfo
	err = ParseAudioRaw(p, &got)
	assert.True(t, errors.Is(err, pod.ErrMissingProperty))
}

func TestParseAudioRawUnpositioned(t *testing.T) {
	b := pod.NewBuilder(make([]byte, 512))
	p, err := BuildAudioRaw(b, Format, &AudioInfo{Format: AudioFormatS16, Flags: AudioFlagUnpositioned, Rate: 44100, Channels: 3})
	require.NoError(t, err)

	var got AudioInfo
	require.NoError(t, ParseAudioRaw(p, &got))
	assert.Equal(t, AudioFlagUnpositioned, got.Flags)
	assert.Equal(t, uint32(3), got.Channels)
}

func TestStrideAndBlocks(t *testing.T) {
	planar := AudioInfo{Format: AudioFormatF32P, Channels: 2}
	assert.Equal(t, 2, planar.Blocks())
	assert.Equal(t, 4, planar.Stride())

	interleaved := AudioInfo{Format: AudioFormatF32, Channels: 2}
	assert.Equal(t, 1, interleaved.Blocks())
	assert.Equal(t, 8, interleaved.Stride())

	s24 := AudioInfo{Format: AudioFormatS24, Channels: 6}
	assert.Equal(t, 18, s24.Stride())
}

func TestParseNames(t *testing.T) {
	f, err := ParseAudioFormat("S16")
	require.NoError(t, err)
	assert.Equal(t, AudioFormatS16LE, f)

	f, err = ParseAudioFormat("F32P")
	require.NoError(t, err)
	assert.Equal(t, AudioFormatF32P, f)

	_, err = ParseAudioFormat("F31")
	assert.Error(t, err)

	c, err := ParseChannel("FR")
	require.NoError(t, err)
	assert.Equal(t, ChannelFR, c)

	c, err = ParseChannel("AUX3")
	require.NoError(t, err)
	assert.Equal(t, "AUX3", c.String())
}

func TestProfileCarriesFormat(t *testing.T) {
	info := AudioInfo{Format: AudioFormatF32, Rate: 48000, Channels: 2, Flags: AudioFlagUnpositioned}
	fb := pod.NewBuilder(make([]byte, 256))
	format, err := BuildAudioRaw(fb, Format, &info)
	require.NoError(t, err)

	b := pod.NewBuilder(make([]byte, 512))
	p, err := BuildProfile(b, format)
	require.NoError(t, err)

	got, err := ParseProfile(p)
	require.NoError(t, err)
	assert.True(t, got.Equal(format))
}

func TestBuffersMetaIO(t *testing.T) {
	b := pod.NewBuilder(make([]byte, 512))
	p, err := b.Object(ObjectParamBuffers, uint32(Buffers),
		pod.Prop{Key: BuffersKeyBuffers, Value: pod.Int(2)},
		pod.Prop{Key: BuffersKeySize, Value: pod.Int(4096)},
		pod.Prop{Key: BuffersKeyStride, Value: pod.Int(4)})
	require.NoError(t, err)
	req, err := ParseBuffers(p)
	require.NoError(t, err)
	assert.Equal(t, BufferRequirements{Buffers: 2, Blocks: 1, Size: 4096, Stride: 4, Align: 8}, req)

	p, err = BuildMeta(b, MetaHeader, MetaHeaderSize)
	require.NoError(t, err)
	mt, size, err := ParseMeta(p)
	require.NoError(t, err)
	assert.Equal(t, MetaHeader, mt)
	assert.Equal(t, int32(32), size)

	p, err = BuildIO(b, IOBuffers, 8)
	require.NoError(t, err)
	io, size, err := ParseIO(p)
	require.NoError(t, err)
	assert.Equal(t, IOBuffers, io)
	assert.Equal(t, int32(8), size)

	p, err = BuildList(b, EnumFormat)
	require.NoError(t, err)
	id, err := ParseList(p)
	require.NoError(t, err)
	assert.Equal(t, EnumFormat, id)
}
