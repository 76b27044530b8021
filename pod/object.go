package pod

import (
	"github.com/lanikai/alohaspa/internal/packet"

	errors "golang.org/x/xerrors"
)

// Field is one entry of a ParseObject pattern. Dest must be a pointer
// matching Type: *bool, *uint32 (Id), *int32 (Int), *int64 (Long, Fd),
// *float32, *float64, *string, *[]byte, *Rectangle, *Fraction, *Choice,
// *Array, *Struct, *Object, *[]uint32 (array of Id) or *Value. TypePod
// accepts any value into a *Pod or *Value.
type Field struct {
	Key      uint32
	Type     Type
	Optional bool
	Dest     interface{}
}

// ParseObject reads an object of the given object type and stores the
// properties named by fields. Properties not in fields are skipped. It
// returns the object id.
func ParseObject(p Pod, objectType uint32, fields ...Field) (uint32, error) {
	if len(p) < headerSize || p.Type() != TypeObject {
		return 0, errors.Errorf("not an object: %w", ErrTypeMismatch)
	}
	body := p.Body()
	if len(body) < 8 {
		return 0, errors.Errorf("object: %w", ErrInvalid)
	}
	r := packet.NewReader(body)
	if t := r.ReadUint32(); t != objectType {
		return 0, errors.Errorf("object type %#x, want %#x: %w", t, objectType, ErrTypeMismatch)
	}
	id := r.ReadUint32()

	const maxFields = 32
	var found [maxFields]bool
	if len(fields) > maxFields {
		return 0, errors.Errorf("%d fields in pattern: %w", len(fields), ErrInvalid)
	}
	for r.Remaining() > 0 {
		if err := r.CheckRemaining(8); err != nil {
			return 0, errors.Errorf("property: %w", ErrInvalid)
		}
		key := r.ReadUint32()
		r.Skip(4)
		start := r.Offset()
		typ, b, err := readChild(r)
		if err != nil {
			return 0, err
		}
		for i := range fields {
			if fields[i].Key != key {
				continue
			}
			raw := Pod(body[start : start+headerSize+len(b)])
			if err := assign(fields[i], raw, typ, b); err != nil {
				return 0, errors.Errorf("property %#x: %w", key, err)
			}
			found[i] = true
		}
	}
	for i, f := range fields {
		if !found[i] && !f.Optional {
			return 0, errors.Errorf("key %#x: %w", f.Key, ErrMissingProperty)
		}
	}
	return id, nil
}

func assign(f Field, raw Pod, typ Type, body []byte) error {
	if f.Type == TypePod {
		if dest, ok := f.Dest.(*Pod); ok {
			*dest = raw
			return nil
		}
	}
	v, err := decode(typ, body)
	if err != nil {
		return err
	}
	if c, ok := v.(Choice); ok && f.Type != TypeChoice && f.Type != TypePod {
		if c.Kind != ChoiceNone || len(c.Values) == 0 {
			return errors.Errorf("%v choice for %v: %w", c.Kind, f.Type, ErrTypeMismatch)
		}
		v = c.Values[0]
	}
	if f.Type == TypeChoice {
		if _, ok := v.(Choice); !ok {
			v = Choice{Kind: ChoiceNone, Child: v.Type(), Values: []Value{v}}
		}
	}
	if f.Type != TypePod && v.Type() != f.Type {
		return errors.Errorf("%v, want %v: %w", v.Type(), f.Type, ErrTypeMismatch)
	}

	switch dest := f.Dest.(type) {
	case *Value:
		*dest = v
		return nil
	case *[]uint32:
		a, ok := v.(Array)
		if !ok || a.Child != TypeId {
			break
		}
		ids := make([]uint32, len(a.Values))
		for i, e := range a.Values {
			ids[i] = uint32(e.(Id))
		}
		*dest = ids
		return nil
	}

	ok := true
	switch v := v.(type) {
	case Bool:
		var d *bool
		if d, ok = f.Dest.(*bool); ok {
			*d = bool(v)
		}
	case Id:
		var d *uint32
		if d, ok = f.Dest.(*uint32); ok {
			*d = uint32(v)
		}
	case Int:
		var d *int32
		if d, ok = f.Dest.(*int32); ok {
			*d = int32(v)
		}
	case Long:
		var d *int64
		if d, ok = f.Dest.(*int64); ok {
			*d = int64(v)
		}
	case Fd:
		var d *int64
		if d, ok = f.Dest.(*int64); ok {
			*d = int64(v)
		}
	case Float:
		var d *float32
		if d, ok = f.Dest.(*float32); ok {
			*d = float32(v)
		}
	case Double:
		var d *float64
		if d, ok = f.Dest.(*float64); ok {
			*d = float64(v)
		}
	case String:
		var d *string
		if d, ok = f.Dest.(*string); ok {
			*d = string(v)
		}
	case Bytes:
		var d *[]byte
		if d, ok = f.Dest.(*[]byte); ok {
			*d = v
		}
	case Rectangle:
		var d *Rectangle
		if d, ok = f.Dest.(*Rectangle); ok {
			*d = v
		}
	case Fraction:
		var d *Fraction
		if d, ok = f.Dest.(*Fraction); ok {
			*d = v
		}
	case Choice:
		var d *Choice
		if d, ok = f.Dest.(*Choice); ok {
			*d = v
		}
	case Array:
		var d *Array
		if d, ok = f.Dest.(*Array); ok {
			*d = v
		}
	case Struct:
		var d *Struct
		if d, ok = f.Dest.(*Struct); ok {
			*d = v
		}
	case Object:
		var d *Object
		if d, ok = f.Dest.(*Object); ok {
			*d = v
		}
	default:
		ok = false
	}
	if !ok {
		return errors.Errorf("cannot store %v in %T: %w", v.Type(), f.Dest, ErrTypeMismatch)
	}
	return nil
}

// DecodeObject decodes an object of any object type, keeping property order.
func DecodeObject(p Pod) (Object, error) {
	v, err := p.Value()
	if err != nil {
		return Object{}, err
	}
	o, ok := v.(Object)
	if !ok {
		return Object{}, errors.Errorf("%v, want Object: %w", v.Type(), ErrTypeMismatch)
	}
	return o, nil
}
