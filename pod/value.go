package pod

// Value is a decoded tagged value. The concrete type determines the tag:
// None, Bool, Id, Int, Long, Float, Double, String, Bytes, Rectangle,
// Fraction, Bitmap, Array, Struct, Object, Sequence, Pointer, Fd or Choice.
type Value interface {
	Type() Type
	isValue()
}

type (
	None   struct{}
	Bool   bool
	Id     uint32
	Int    int32
	Long   int64
	Float  float32
	Double float64
	String string
	Bytes  []byte
	Bitmap []byte
	Fd     int64
)

type Rectangle struct {
	Width, Height uint32
}

type Fraction struct {
	Num, Denom uint32
}

// Array is a homogeneous list of fixed-size values of type Child.
type Array struct {
	Child  Type
	Values []Value
}

// Struct is an ordered list of heterogeneous values.
type Struct []Value

// Prop is a single keyed property of an Object.
type Prop struct {
	Key   uint32
	Flags uint32
	Value Value
}

// Object is a typed, identified list of properties.
type Object struct {
	ObjectType uint32
	ID         uint32
	Props      []Prop
}

// Find returns the property with the given key, or nil.
func (o *Object) Find(key uint32) *Prop {
	for i := range o.Props {
		if o.Props[i].Key == key {
			return &o.Props[i]
		}
	}
	return nil
}

// Control is a timed entry of a Sequence.
type Control struct {
	Offset uint32
	Type   uint32
	Value  Value
}

type Sequence struct {
	Unit     uint32
	Controls []Control
}

type Pointer struct {
	PointerType uint32
	Address     uint64
}

// Choice is a set of acceptable values of type Child. Values[0] is the
// default; the meaning of the rest depends on Kind.
type Choice struct {
	Kind   ChoiceKind
	Flags  uint32
	Child  Type
	Values []Value
}

// Default returns the preferred value of the choice.
func (c *Choice) Default() Value {
	if len(c.Values) == 0 {
		return nil
	}
	return c.Values[0]
}

// Alternatives returns the candidate values of an Enum or Flags choice. A
// choice holding only its default offers the default itself.
func (c *Choice) Alternatives() []Value {
	if len(c.Values) > 1 {
		return c.Values[1:]
	}
	return c.Values
}

func (None) Type() Type      { return TypeNone }
func (Bool) Type() Type      { return TypeBool }
func (Id) Type() Type        { return TypeId }
func (Int) Type() Type       { return TypeInt }
func (Long) Type() Type      { return TypeLong }
func (Float) Type() Type     { return TypeFloat }
func (Double) Type() Type    { return TypeDouble }
func (String) Type() Type    { return TypeString }
func (Bytes) Type() Type     { return TypeBytes }
func (Bitmap) Type() Type    { return TypeBitmap }
func (Fd) Type() Type        { return TypeFd }
func (Rectangle) Type() Type { return TypeRectangle }
func (Fraction) Type() Type  { return TypeFraction }
func (Array) Type() Type     { return TypeArray }
func (Struct) Type() Type    { return TypeStruct }
func (Object) Type() Type    { return TypeObject }
func (Sequence) Type() Type  { return TypeSequence }
func (Pointer) Type() Type   { return TypePointer }
func (Choice) Type() Type    { return TypeChoice }

func (None) isValue()      {}
func (Bool) isValue()      {}
func (Id) isValue()        {}
func (Int) isValue()       {}
func (Long) isValue()      {}
func (Float) isValue()     {}
func (Double) isValue()    {}
func (String) isValue()    {}
func (Bytes) isValue()     {}
func (Bitmap) isValue()    {}
func (Fd) isValue()        {}
func (Rectangle) isValue() {}
func (Fraction) isValue()  {}
func (Array) isValue()     {}
func (Struct) isValue()    {}
func (Object) isValue()    {}
func (Sequence) isValue()  {}
func (Pointer) isValue()   {}
func (Choice) isValue()    {}

// NewRange returns a Range choice over def, min and max, which must share a type.
func NewRange(def, min, max Value) Choice {
	return Choice{Kind: ChoiceRange, Child: def.Type(), Values: []Value{def, min, max}}
}

// NewStep returns a Step choice.
func NewStep(def, min, max, step Value) Choice {
	return Choice{Kind: ChoiceStep, Child: def.Type(), Values: []Value{def, min, max, step}}
}

// NewEnum returns an Enum choice with the given default and alternatives.
func NewEnum(def Value, alts ...Value) Choice {
	vals := make([]Value, 0, len(alts)+1)
	vals = append(vals, def)
	vals = append(vals, alts...)
	return Choice{Kind: ChoiceEnum, Child: def.Type(), Values: vals}
}

// NewFlags returns a Flags choice with the given default and masks.
func NewFlags(def Value, masks ...Value) Choice {
	vals := make([]Value, 0, len(masks)+1)
	vals = append(vals, def)
	vals = append(vals, masks...)
	return Choice{Kind: ChoiceFlags, Child: def.Type(), Values: vals}
}
