package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errors "golang.org/x/xerrors"
)

type testHandle struct {
	cleared bool
}

func (h *testHandle) Interface(typ string) (interface{}, error) {
	if typ == InterfaceNode {
		return h, nil
	}
	return nil, ErrUnknownInterface
}

func (h *testHandle) Clear() error {
	h.cleared = true
	return nil
}

type testFactory struct {
	name string
	last *testHandle
}

func (f *testFactory) Name() string                                  { return f.name }
func (f *testFactory) Info() map[string]string                       { return nil }
func (f *testFactory) InstanceSize(info map[string]string) uintptr   { return 1 }
func (f *testFactory) EnumInterfaceInfo(index *uint32) (InterfaceInfo, error) {
	return InterfaceInfo{}, ErrUnknownInterface
}
func (f *testFactory) Init(info map[string]string, support *Support) (Handle, error) {
	f.last = &testHandle{}
	return f.last, nil
}

func TestRegistry(t *testing.T) {
	b := &testFactory{name: "test.b"}
	a := &testFactory{name: "test.a"}
	RegisterFactory(b)
	RegisterFactory(a)

	f, err := LookupFactory("test.a")
	require.NoError(t, err)
	assert.Equal(t, a, f)

	_, err = LookupFactory("test.missing")
	assert.Error(t, err)

	var names []string
	for _, f := range Factories() {
		names = append(names, f.Name())
	}
	assert.Subset(t, names, []string{"test.a", "test.b"})
	assert.True(t, indexOf(names, "test.a") < indexOf(names, "test.b"))
}

func TestInstantiate(t *testing.T) {
	f := &testFactory{name: "test.instantiate"}
	RegisterFactory(f)

	h, iface, err := Instantiate("test.instantiate", nil, nil, InterfaceNode)
	require.NoError(t, err)
	assert.Equal(t, h, iface)

	_, _, err = Instantiate("test.instantiate", nil, nil, InterfaceLog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownInterface))
	assert.True(t, f.last.cleared)
}

func TestSupportLookup(t *testing.T) {
	var s *Support
	assert.Nil(t, s.Lookup(InterfaceLog))

	s = &Support{CPU: FixedCPU(CPUFlagSSE2)}
	assert.Nil(t, s.Lookup(InterfaceLog))
	assert.Equal(t, CPUFlagSSE2, s.Lookup(InterfaceCPU).(CPU).Flags())
}

func indexOf(list []string, s string) int {
	for i, e := range list {
		if e == s {
			return i
		}
	}
	return -1
}
