package pod

import (
	"encoding/binary"
	"fmt"
)

var byteOrder = binary.LittleEndian

// Type is the tag stored in every value header.
type Type uint32

const (
	TypeNone Type = iota + 1
	TypeBool
	TypeId
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
	TypeBytes
	TypeRectangle
	TypeFraction
	TypeBitmap
	TypeArray
	TypeStruct
	TypeObject
	TypeSequence
	TypePointer
	TypeFd
	TypeChoice
	// TypePod matches any value in a ParseObject pattern.
	TypePod
)

var typeNames = [...]string{
	TypeNone:      "None",
	TypeBool:      "Bool",
	TypeId:        "Id",
	TypeInt:       "Int",
	TypeLong:      "Long",
	TypeFloat:     "Float",
	TypeDouble:    "Double",
	TypeString:    "String",
	TypeBytes:     "Bytes",
	TypeRectangle: "Rectangle",
	TypeFraction:  "Fraction",
	TypeBitmap:    "Bitmap",
	TypeArray:     "Array",
	TypeStruct:    "Struct",
	TypeObject:    "Object",
	TypeSequence:  "Sequence",
	TypePointer:   "Pointer",
	TypeFd:        "Fd",
	TypeChoice:    "Choice",
	TypePod:       "Pod",
}

func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint32(t))
}

// fixedSize returns the body size of types with a fixed-size body, or -1.
// Only these types may appear as Array or Choice children.
func (t Type) fixedSize() int {
	switch t {
	case TypeNone:
		return 0
	case TypeBool, TypeId, TypeInt, TypeFloat:
		return 4
	case TypeLong, TypeDouble, TypeFd, TypeRectangle, TypeFraction:
		return 8
	case TypePointer:
		return 16
	}
	return -1
}

// ChoiceKind selects how the values of a Choice are interpreted.
type ChoiceKind uint32

const (
	// ChoiceNone holds a single fixed value.
	ChoiceNone ChoiceKind = iota
	// ChoiceRange holds [default, min, max].
	ChoiceRange
	// ChoiceStep holds [default, min, max, step].
	ChoiceStep
	// ChoiceEnum holds [default, alternatives...].
	ChoiceEnum
	// ChoiceFlags holds [default, flag masks...].
	ChoiceFlags
)

func (k ChoiceKind) String() string {
	switch k {
	case ChoiceNone:
		return "None"
	case ChoiceRange:
		return "Range"
	case ChoiceStep:
		return "Step"
	case ChoiceEnum:
		return "Enum"
	case ChoiceFlags:
		return "Flags"
	}
	return fmt.Sprintf("ChoiceKind(%d)", uint32(k))
}

// Property flags.
const (
	PropReadOnly  uint32 = 1 << 0
	PropHardware  uint32 = 1 << 1
	PropHintDict  uint32 = 1 << 2
	PropMandatory uint32 = 1 << 3
)

const (
	headerSize = 8
	alignment  = 8
)

func padded(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}
