package audioconvert

import (
	"testing"

	"github.com/lanikai/alohaspa/internal/loop"
	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/plugin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errors "golang.org/x/xerrors"
)

func TestFactoryRegistered(t *testing.T) {
	f, err := plugin.LookupFactory(FactoryName)
	require.NoError(t, err)
	assert.Equal(t, FactoryName, f.Name())
	assert.NotZero(t, f.InstanceSize(nil))

	var index uint32
	info, err := f.EnumInterfaceInfo(&index)
	require.NoError(t, err)
	assert.Equal(t, plugin.InterfaceNode, info.Type)
	_, err = f.EnumInterfaceInfo(&index)
	assert.True(t, errors.Is(err, node.ErrDone))
}

func TestInstantiateWithProfile(t *testing.T) {
	h, iface, err := plugin.Instantiate(FactoryName, map[string]string{
		KeyAudioChannels: "3",
		KeyAudioRate:     "44100",
		KeyAudioFormat:   "S16",
	}, nil, plugin.InterfaceNode)
	require.NoError(t, err)
	defer h.Clear()

	n := iface.(node.Node)
	_, _, nOut, _ := n.PortCount()
	assert.Equal(t, uint32(3), nOut)
	info, err := n.PortInfo(node.Output, 2)
	require.NoError(t, err)
	assert.Equal(t, "LFE", info.Props[node.PropPortChannel])
	assert.Equal(t, uint32(44100), info.Rate)

	s := h.(*Splitter)
	assert.Equal(t, param.AudioFormatS16, s.inPorts[0].format.Format)
	assert.Contains(t, s.Name(), "splitter-")

	_, err = h.Interface("Spa:Pointer:Interface:Device")
	assert.True(t, errors.Is(err, plugin.ErrUnknownInterface))
}

func TestInitRejectsBadInfo(t *testing.T) {
	for _, info := range []map[string]string{
		{KeyCPUFlags: "sse9"},
		{KeyAudioChannels: "0"},
		{KeyAudioChannels: "129"},
		{KeyAudioRate: "fast"},
		{KeyAudioChannels: "2", KeyAudioPosition: "FL"},
		{KeyAudioChannels: "2", KeyAudioPosition: "FL,XX"},
		{KeyAudioChannels: "2", KeyAudioFormat: "F17"},
	} {
		_, err := Factory{}.Init(info, nil)
		assert.Error(t, err, "%v", info)
	}
}

func TestCPUFlagsOverride(t *testing.T) {
	h, err := Factory{}.Init(map[string]string{KeyCPUFlags: "sse2"}, &plugin.Support{CPU: plugin.FixedCPU(0)})
	require.NoError(t, err)
	n := h.(*Splitter)
	assert.Equal(t, plugin.CPUFlagSSE2, n.cpuFlags)

	setProfile(t, n, 2, 48000)
	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatS16, 48000, 2))))
	assert.NotNil(t, n.transform)
}

func TestTransformInstalledOnDataLoop(t *testing.T) {
	l := loop.New(4)
	l.Start()
	defer l.Stop()

	h, err := Factory{}.Init(nil, &plugin.Support{DataLoop: l})
	require.NoError(t, err)
	n := h.(*Splitter)
	setProfile(t, n, 2, 48000)
	require.NoError(t, n.PortSetParam(node.Input, 0, param.Format, 0, buildFormat(t, audioInfo(param.AudioFormatF32, 48000, 2))))

	installed := make(chan bool)
	require.NoError(t, l.Invoke(func() { installed <- n.transform != nil }, false))
	assert.True(t, <-installed)
}

func TestClear(t *testing.T) {
	f := newFixture(t, param.AudioFormatF32, 2, 2)
	require.NoError(t, f.n.Clear())

	assert.Zero(t, f.n.inPorts[0].nBuffers)
	assert.Nil(t, f.n.inPorts[0].io)
	for i := 0; i < 2; i++ {
		assert.Zero(t, f.n.outPorts[i].nBuffers)
		assert.Nil(t, f.n.outPorts[i].io)
	}
	assert.Nil(t, f.n.transform)

	// The memory itself is untouched.
	assert.NotNil(t, f.out[0][0].Datas[0].Data)
}
