package pod

import (
	"bytes"

	"github.com/lanikai/alohaspa/internal/packet"

	errors "golang.org/x/xerrors"
)

// Pod is one encoded value: an 8-byte header followed by its body, without
// trailing padding. A Pod usually aliases a Builder's buffer.
type Pod []byte

// Parse checks that data starts with a complete value and returns it.
func Parse(data []byte) (Pod, error) {
	if len(data) < headerSize {
		return nil, errors.Errorf("%d bytes, need header: %w", len(data), ErrInvalid)
	}
	size := int(byteOrder.Uint32(data))
	if size > len(data)-headerSize {
		return nil, errors.Errorf("body of %d bytes, have %d: %w", size, len(data)-headerSize, ErrInvalid)
	}
	return Pod(data[:headerSize+size]), nil
}

// Size returns the body size.
func (p Pod) Size() uint32 {
	return byteOrder.Uint32(p)
}

func (p Pod) Type() Type {
	return Type(byteOrder.Uint32(p[4:]))
}

func (p Pod) Body() []byte {
	return p[headerSize : headerSize+int(p.Size())]
}

// IsObject reports whether p is an object of the given object type.
func (p Pod) IsObject(objectType uint32) bool {
	return len(p) >= headerSize+8 && p.Type() == TypeObject && byteOrder.Uint32(p[headerSize:]) == objectType
}

// ObjectID returns the id of an object value.
func (p Pod) ObjectID() uint32 {
	if len(p) < headerSize+8 || p.Type() != TypeObject {
		return 0
	}
	return byteOrder.Uint32(p[headerSize+4:])
}

// Equal reports whether two encodings are byte-identical.
func (p Pod) Equal(q Pod) bool {
	return bytes.Equal(p, q)
}

// Value decodes the full value tree.
func (p Pod) Value() (Value, error) {
	if len(p) < headerSize || int(p.Size()) > len(p)-headerSize {
		return nil, errors.Errorf("truncated value: %w", ErrInvalid)
	}
	return decode(p.Type(), p.Body())
}

// readChild reads one padded child value.
func readChild(r *packet.Reader) (Type, []byte, error) {
	if err := r.CheckRemaining(headerSize); err != nil {
		return 0, nil, errors.Errorf("child header: %w", ErrInvalid)
	}
	size := int(r.ReadUint32())
	typ := Type(r.ReadUint32())
	if err := r.CheckRemaining(size); err != nil {
		return 0, nil, errors.Errorf("%v child of %d bytes: %w", typ, size, ErrInvalid)
	}
	body := r.ReadSlice(size)
	r.Align(alignment)
	return typ, body, nil
}

func need(body []byte, n int, typ Type) error {
	if len(body) < n {
		return errors.Errorf("%v body of %d bytes, need %d: %w", typ, len(body), n, ErrInvalid)
	}
	return nil
}

func decode(typ Type, body []byte) (Value, error) {
	if n := typ.fixedSize(); n > 0 {
		if err := need(body, n, typ); err != nil {
			return nil, err
		}
	}
	r := packet.NewReader(body)
	switch typ {
	case TypeNone:
		return None{}, nil
	case TypeBool:
		return Bool(r.ReadUint32() != 0), nil
	case TypeId:
		return Id(r.ReadUint32()), nil
	case TypeInt:
		return Int(r.ReadInt32()), nil
	case TypeLong:
		return Long(r.ReadInt64()), nil
	case TypeFloat:
		return Float(r.ReadFloat32()), nil
	case TypeDouble:
		return Double(r.ReadFloat64()), nil
	case TypeFd:
		return Fd(r.ReadInt64()), nil
	case TypeRectangle:
		return Rectangle{r.ReadUint32(), r.ReadUint32()}, nil
	case TypeFraction:
		return Fraction{r.ReadUint32(), r.ReadUint32()}, nil
	case TypePointer:
		t := r.ReadUint32()
		r.Skip(4)
		return Pointer{t, r.ReadUint64()}, nil
	case TypeString:
		i := bytes.IndexByte(body, 0)
		if i < 0 {
			return nil, errors.Errorf("unterminated string: %w", ErrInvalid)
		}
		return String(body[:i]), nil
	case TypeBytes:
		return Bytes(append([]byte(nil), body...)), nil
	case TypeBitmap:
		return Bitmap(append([]byte(nil), body...)), nil
	case TypeArray:
		child, vals, err := decodePacked(r)
		if err != nil {
			return nil, err
		}
		return Array{Child: child, Values: vals}, nil
	case TypeChoice:
		if err := r.CheckRemaining(8); err != nil {
			return nil, errors.Errorf("choice: %w", ErrInvalid)
		}
		kind := ChoiceKind(r.ReadUint32())
		flags := r.ReadUint32()
		child, vals, err := decodePacked(r)
		if err != nil {
			return nil, err
		}
		return Choice{Kind: kind, Flags: flags, Child: child, Values: vals}, nil
	case TypeStruct:
		var s Struct
		for r.Remaining() > 0 {
			t, b, err := readChild(r)
			if err != nil {
				return nil, err
			}
			v, err := decode(t, b)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	case TypeObject:
		if err := r.CheckRemaining(8); err != nil {
			return nil, errors.Errorf("object: %w", ErrInvalid)
		}
		o := Object{ObjectType: r.ReadUint32(), ID: r.ReadUint32()}
		for r.Remaining() > 0 {
			if err := r.CheckRemaining(8); err != nil {
				return nil, errors.Errorf("property: %w", ErrInvalid)
			}
			key, flags := r.ReadUint32(), r.ReadUint32()
			t, b, err := readChild(r)
			if err != nil {
				return nil, err
			}
			v, err := decode(t, b)
			if err != nil {
				return nil, errors.Errorf("property %d: %w", key, err)
			}
			o.Props = append(o.Props, Prop{Key: key, Flags: flags, Value: v})
		}
		return o, nil
	case TypeSequence:
		if err := r.CheckRemaining(8); err != nil {
			return nil, errors.Errorf("sequence: %w", ErrInvalid)
		}
		s := Sequence{Unit: r.ReadUint32()}
		r.Skip(4)
		for r.Remaining() > 0 {
			if err := r.CheckRemaining(8); err != nil {
				return nil, errors.Errorf("control: %w", ErrInvalid)
			}
			off, ct := r.ReadUint32(), r.ReadUint32()
			t, b, err := readChild(r)
			if err != nil {
				return nil, err
			}
			v, err := decode(t, b)
			if err != nil {
				return nil, err
			}
			s.Controls = append(s.Controls, Control{Offset: off, Type: ct, Value: v})
		}
		return s, nil
	}
	return nil, errors.Errorf("unknown type %v: %w", typ, ErrInvalid)
}

// decodePacked reads a child header followed by bare child bodies.
func decodePacked(r *packet.Reader) (Type, []Value, error) {
	if err := r.CheckRemaining(headerSize); err != nil {
		return 0, nil, errors.Errorf("child header: %w", ErrInvalid)
	}
	size := int(r.ReadUint32())
	child := Type(r.ReadUint32())
	if child.fixedSize() != size {
		return 0, nil, errors.Errorf("%v child of size %d: %w", child, size, ErrInvalid)
	}
	if size == 0 {
		return child, nil, nil
	}
	var vals []Value
	for r.Remaining() >= size {
		v, err := decode(child, r.ReadSlice(size))
		if err != nil {
			return 0, nil, err
		}
		vals = append(vals, v)
	}
	return child, vals, nil
}
