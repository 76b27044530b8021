package pod

import (
	"github.com/lanikai/alohaspa/internal/packet"

	errors "golang.org/x/xerrors"
)

const maxDepth = 16

type frame struct {
	offset int
	typ    Type

	// Array and Choice frames hold bare child bodies sharing one header.
	first     bool
	childType Type
}

func (f *frame) packed() bool {
	return f.typ == TypeArray || f.typ == TypeChoice
}

// Builder appends tagged values to a caller-provided buffer. Containers are
// opened with one of the Push methods and closed with Pop, which patches the
// container size. The builder never allocates; when the buffer is too small
// it keeps counting so that Needed reports the size a retry requires.
type Builder struct {
	w      packet.Writer
	frames [maxDepth]frame
	depth  int
	err    error
}

// BuilderState is a snapshot used to roll back a partially built value.
type BuilderState struct {
	offset int
	depth  int
	err    error
}

func NewBuilder(buf []byte) *Builder {
	b := new(Builder)
	b.Init(buf)
	return b
}

// Init resets the builder to write into buf.
func (b *Builder) Init(buf []byte) {
	b.w = *packet.NewWriter(buf)
	b.depth = 0
	b.err = nil
}

// Needed returns the number of bytes the values built so far require.
func (b *Builder) Needed() int {
	return b.w.Length()
}

// Data returns everything written so far.
func (b *Builder) Data() []byte {
	return b.w.Bytes()
}

func (b *Builder) State() BuilderState {
	return BuilderState{b.w.Length(), b.depth, b.err}
}

// Reset discards everything written after s was taken.
func (b *Builder) Reset(s BuilderState) {
	b.w.Truncate(s.offset)
	b.depth = s.depth
	b.err = s.err
}

// Err returns the first error encountered while building, if any.
func (b *Builder) Err() error {
	if b.err != nil {
		return b.err
	}
	if b.w.Overflowed() {
		return errors.Errorf("need %d bytes, have %d: %w", b.w.Length(), b.w.Capacity(), ErrOutOfSpace)
	}
	return nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) top() *frame {
	if b.depth == 0 {
		return nil
	}
	return &b.frames[b.depth-1]
}

// header starts a value of the given type and body size. Inside an Array or
// Choice only the first child writes a header.
func (b *Builder) header(typ Type, size int) {
	f := b.top()
	if f == nil || !f.packed() {
		b.w.WriteUint32(uint32(size))
		b.w.WriteUint32(uint32(typ))
		return
	}
	if typ.fixedSize() < 0 {
		b.fail(errors.Errorf("%v inside %v: %w", typ, f.typ, ErrTypeMismatch))
		return
	}
	if f.first {
		if f.childType != 0 && f.childType != typ {
			b.fail(errors.Errorf("%v child in %v of %v: %w", typ, f.typ, f.childType, ErrTypeMismatch))
			return
		}
		f.first = false
		f.childType = typ
		b.w.WriteUint32(uint32(size))
		b.w.WriteUint32(uint32(typ))
	} else if f.childType != typ {
		b.fail(errors.Errorf("%v child in %v of %v: %w", typ, f.typ, f.childType, ErrTypeMismatch))
	}
}

// pad ends a value. Children of an Array or Choice are packed without padding.
func (b *Builder) pad() {
	if f := b.top(); f != nil && f.packed() {
		return
	}
	b.w.Align(alignment)
}

func (b *Builder) push(typ Type) *frame {
	if f := b.top(); f != nil && f.packed() {
		b.fail(errors.Errorf("%v inside %v: %w", typ, f.typ, ErrTypeMismatch))
	}
	if b.depth == maxDepth {
		b.fail(errors.Errorf("nesting deeper than %d: %w", maxDepth, ErrInvalid))
		return &frame{}
	}
	b.frames[b.depth] = frame{offset: b.w.Length(), typ: typ, first: true}
	b.depth++
	b.w.WriteUint32(0)
	b.w.WriteUint32(uint32(typ))
	return &b.frames[b.depth-1]
}

func (b *Builder) PushStruct() {
	b.push(TypeStruct)
}

func (b *Builder) PushObject(objectType, id uint32) {
	b.push(TypeObject)
	b.w.WriteUint32(objectType)
	b.w.WriteUint32(id)
}

func (b *Builder) PushSequence(unit uint32) {
	b.push(TypeSequence)
	b.w.WriteUint32(unit)
	b.w.WriteUint32(0)
}

// PushArray opens an array; the type of the first element fixes the child
// type. An empty array is closed with a None child.
func (b *Builder) PushArray() {
	b.push(TypeArray)
}

func (b *Builder) PushChoice(kind ChoiceKind, flags uint32) {
	b.push(TypeChoice)
	b.w.WriteUint32(uint32(kind))
	b.w.WriteUint32(flags)
}

// Prop starts a property inside an object; the next value is its value.
func (b *Builder) Prop(key, flags uint32) {
	if f := b.top(); f == nil || f.typ != TypeObject {
		b.fail(errors.Errorf("property outside object: %w", ErrInvalid))
	}
	b.w.WriteUint32(key)
	b.w.WriteUint32(flags)
}

// Control starts a sequence control; the next value is its value.
func (b *Builder) Control(offset, typ uint32) {
	if f := b.top(); f == nil || f.typ != TypeSequence {
		b.fail(errors.Errorf("control outside sequence: %w", ErrInvalid))
	}
	b.w.WriteUint32(offset)
	b.w.WriteUint32(typ)
}

// Pop closes the innermost container and returns it.
func (b *Builder) Pop() (Pod, error) {
	f := b.top()
	if f == nil {
		b.fail(errors.Errorf("pop without push: %w", ErrInvalid))
		return nil, b.err
	}
	if f.packed() && f.first {
		// Empty array or choice still carries a child header.
		size := f.childType.fixedSize()
		if size < 0 {
			size = 0
		}
		typ := f.childType
		if typ == 0 {
			typ = TypeNone
		}
		b.w.WriteUint32(uint32(size))
		b.w.WriteUint32(uint32(typ))
	}
	start, end := f.offset, b.w.Length()
	b.w.PutUint32At(start, uint32(end-start-headerSize))
	b.depth--
	b.pad()

	if err := b.Err(); err != nil {
		return nil, err
	}
	return Pod(b.w.Slice(start, end)), nil
}

func (b *Builder) None() {
	b.header(TypeNone, 0)
	b.pad()
}

func (b *Builder) Bool(v bool) {
	b.header(TypeBool, 4)
	if v {
		b.w.WriteUint32(1)
	} else {
		b.w.WriteUint32(0)
	}
	b.pad()
}

func (b *Builder) Id(v uint32) {
	b.header(TypeId, 4)
	b.w.WriteUint32(v)
	b.pad()
}

func (b *Builder) Int(v int32) {
	b.header(TypeInt, 4)
	b.w.WriteInt32(v)
	b.pad()
}

func (b *Builder) Long(v int64) {
	b.header(TypeLong, 8)
	b.w.WriteInt64(v)
	b.pad()
}

func (b *Builder) Float(v float32) {
	b.header(TypeFloat, 4)
	b.w.WriteFloat32(v)
	b.pad()
}

func (b *Builder) Double(v float64) {
	b.header(TypeDouble, 8)
	b.w.WriteFloat64(v)
	b.pad()
}

func (b *Builder) Fd(v int64) {
	b.header(TypeFd, 8)
	b.w.WriteInt64(v)
	b.pad()
}

// String writes s with a terminating NUL.
func (b *Builder) String(s string) {
	b.header(TypeString, len(s)+1)
	b.w.WriteString(s)
	b.w.ZeroPad(1)
	b.pad()
}

func (b *Builder) Bytes(p []byte) {
	b.header(TypeBytes, len(p))
	b.w.WriteSlice(p)
	b.pad()
}

func (b *Builder) Bitmap(p []byte) {
	b.header(TypeBitmap, len(p))
	b.w.WriteSlice(p)
	b.pad()
}

func (b *Builder) Rectangle(width, height uint32) {
	b.header(TypeRectangle, 8)
	b.w.WriteUint32(width)
	b.w.WriteUint32(height)
	b.pad()
}

func (b *Builder) Fraction(num, denom uint32) {
	b.header(TypeFraction, 8)
	b.w.WriteUint32(num)
	b.w.WriteUint32(denom)
	b.pad()
}

func (b *Builder) Pointer(typ uint32, addr uint64) {
	b.header(TypePointer, 16)
	b.w.WriteUint32(typ)
	b.w.WriteUint32(0)
	b.w.WriteUint64(addr)
	b.pad()
}

// Raw copies an already encoded value.
func (b *Builder) Raw(p Pod) {
	if f := b.top(); f != nil && f.packed() {
		b.fail(errors.Errorf("raw value inside %v: %w", f.typ, ErrTypeMismatch))
		return
	}
	b.w.WriteSlice(p)
	b.pad()
}

// Value encodes v and returns the encoded bytes. Values written as children
// of an Array or Choice have no standalone encoding and yield nil.
func (b *Builder) Value(v Value) (Pod, error) {
	start := b.w.Length()
	inPacked := false
	if f := b.top(); f != nil && f.packed() {
		inPacked = true
	}
	b.encode(v)
	if err := b.Err(); err != nil {
		return nil, err
	}
	if inPacked {
		return nil, nil
	}
	p := Pod(b.w.Slice(start, b.w.Length()))
	return p[:headerSize+int(p.Size())], nil
}

// Object builds an object with the given properties in order.
func (b *Builder) Object(objectType, id uint32, props ...Prop) (Pod, error) {
	b.PushObject(objectType, id)
	for _, p := range props {
		b.Prop(p.Key, p.Flags)
		b.encode(p.Value)
	}
	return b.Pop()
}

func (b *Builder) encode(v Value) {
	switch v := v.(type) {
	case None:
		b.None()
	case Bool:
		b.Bool(bool(v))
	case Id:
		b.Id(uint32(v))
	case Int:
		b.Int(int32(v))
	case Long:
		b.Long(int64(v))
	case Float:
		b.Float(float32(v))
	case Double:
		b.Double(float64(v))
	case Fd:
		b.Fd(int64(v))
	case String:
		b.String(string(v))
	case Bytes:
		b.Bytes(v)
	case Bitmap:
		b.Bitmap(v)
	case Rectangle:
		b.Rectangle(v.Width, v.Height)
	case Fraction:
		b.Fraction(v.Num, v.Denom)
	case Pointer:
		b.Pointer(v.PointerType, v.Address)
	case Array:
		b.push(TypeArray).childType = v.Child
		for _, e := range v.Values {
			b.encode(e)
		}
		b.Pop()
	case Choice:
		b.PushChoice(v.Kind, v.Flags)
		b.top().childType = v.Child
		for _, e := range v.Values {
			b.encode(e)
		}
		b.Pop()
	case Struct:
		b.PushStruct()
		for _, e := range v {
			b.encode(e)
		}
		b.Pop()
	case Object:
		b.Object(v.ObjectType, v.ID, v.Props...)
	case Sequence:
		b.PushSequence(v.Unit)
		for _, c := range v.Controls {
			b.Control(c.Offset, c.Type)
			b.encode(c.Value)
		}
		b.Pop()
	case nil:
		b.fail(errors.Errorf("nil value: %w", ErrInvalid))
	default:
		b.fail(errors.Errorf("unknown value %T: %w", v, ErrInvalid))
	}
}
