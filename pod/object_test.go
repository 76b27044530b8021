package pod

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errors "golang.org/x/xerrors"
)

func TestParseObject(t *testing.T) {
	b := NewBuilder(make([]byte, 512))
	p, err := b.Object(0x40003, 5,
		Prop{Key: 1, Value: Id(1)},
		Prop{Key: 3, Value: Choice{Kind: ChoiceNone, Child: TypeInt, Values: []Value{Int(48000)}}},
		Prop{Key: 4, Value: Array{Child: TypeId, Values: []Value{Id(3), Id(4)}}},
		Prop{Key: 5, Value: NewRange(Int(2), Int(1), Int(8))},
		Prop{Key: 6, Value: String("port")},
		Prop{Key: 99, Value: Long(1)},
	)
	require.NoError(t, err)

	var (
		media     uint32
		rate      int32
		positions []uint32
		channels  Choice
		name      string
		missing   = int32(-1)
	)
	id, err := ParseObject(p, 0x40003,
		Field{Key: 1, Type: TypeId, Dest: &media},
		Field{Key: 3, Type: TypeInt, Dest: &rate},
		Field{Key: 4, Type: TypeArray, Dest: &positions},
		Field{Key: 5, Type: TypeChoice, Dest: &channels},
		Field{Key: 6, Type: TypeString, Dest: &name},
		Field{Key: 7, Type: TypeInt, Optional: true, Dest: &missing},
	)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), id)
	assert.Equal(t, uint32(1), media)
	assert.Equal(t, int32(48000), rate)
	assert.Equal(t, []uint32{3, 4}, positions)
	assert.Equal(t, ChoiceRange, channels.Kind)
	assert.Equal(t, "port", name)
	assert.Equal(t, int32(-1), missing)
}

func TestParseObjectErrors(t *testing.T) {
	b := NewBuilder(make([]byte, 512))
	p, err := b.Object(0x40003, 5,
		Prop{Key: 1, Value: Id(1)},
		Prop{Key: 2, Value: NewRange(Int(2), Int(1), Int(8))},
	)
	require.NoError(t, err)

	var id uint32
	var n int32
	_, err = ParseObject(p, 0x40004, Field{Key: 1, Type: TypeId, Dest: &id})
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = ParseObject(p, 0x40003, Field{Key: 3, Type: TypeId, Dest: &id})
	assert.True(t, errors.Is(err, ErrMissingProperty))

	_, err = ParseObject(p, 0x40003, Field{Key: 1, Type: TypeInt, Dest: &n})
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	// An unfixated range is not an Int.
	_, err = ParseObject(p, 0x40003, Field{Key: 2, Type: TypeInt, Dest: &n})
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestParseObjectEmbeddedPod(t *testing.T) {
	b := NewBuilder(make([]byte, 512))
	inner, err := b.Object(0x40003, 10, Prop{Key: 1, Value: Id(1)})
	require.NoError(t, err)
	innerCopy := append([]byte(nil), inner...)

	b = NewBuilder(make([]byte, 512))
	b.PushObject(0x40007, 10)
	b.Prop(4, 0)
	b.Raw(innerCopy)
	outer, err := b.Pop()
	require.NoError(t, err)

	var format Pod
	_, err = ParseObject(outer, 0x40007, Field{Key: 4, Type: TypePod, Dest: &format})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(innerCopy, format))
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	err := Dump(&buf, Object{ObjectType: 3, ID: 4, Props: []Prop{
		{Key: 1, Value: NewEnum(Id(2), Id(2), Id(3))},
		{Key: 2, Value: String("x")},
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, `Object: type 0x3, id 4
  Prop: key 0x1, flags 0x0
    Choice: kind Enum, flags 0x0, child Id
      Id 2
      Id 2
      Id 3
  Prop: key 0x2, flags 0x0
    String "x"
`, buf.String())
}
