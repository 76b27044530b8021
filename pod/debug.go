package pod

import (
	"fmt"
	"io"
	"strings"
)

// Namer supplies human-readable names for object types and property keys.
// Either method may return "" to fall back to the numeric value.
type Namer interface {
	ObjectName(objectType uint32) string
	KeyName(objectType, key uint32) string
}

// Dump writes an indented description of v to w.
func Dump(w io.Writer, v Value, names Namer) error {
	d := dumper{w: w, names: names}
	d.value(0, v)
	return d.err
}

type dumper struct {
	w     io.Writer
	names Namer
	err   error
}

func (d *dumper) printf(indent int, format string, a ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s"+format+"\n", append([]interface{}{strings.Repeat("  ", indent)}, a...)...)
}

func (d *dumper) objectName(t uint32) string {
	if d.names != nil {
		if s := d.names.ObjectName(t); s != "" {
			return s
		}
	}
	return fmt.Sprintf("%#x", t)
}

func (d *dumper) keyName(t, key uint32) string {
	if d.names != nil {
		if s := d.names.KeyName(t, key); s != "" {
			return s
		}
	}
	return fmt.Sprintf("%#x", key)
}

func (d *dumper) value(indent int, v Value) {
	switch v := v.(type) {
	case Object:
		d.printf(indent, "Object: type %s, id %d", d.objectName(v.ObjectType), v.ID)
		for _, p := range v.Props {
			d.printf(indent+1, "Prop: key %s, flags %#x", d.keyName(v.ObjectType, p.Key), p.Flags)
			d.value(indent+2, p.Value)
		}
	case Struct:
		d.printf(indent, "Struct: %d fields", len(v))
		for _, e := range v {
			d.value(indent+1, e)
		}
	case Array:
		d.printf(indent, "Array: child %v, %d values", v.Child, len(v.Values))
		for _, e := range v.Values {
			d.value(indent+1, e)
		}
	case Choice:
		d.printf(indent, "Choice: kind %v, flags %#x, child %v", v.Kind, v.Flags, v.Child)
		for _, e := range v.Values {
			d.value(indent+1, e)
		}
	case Sequence:
		d.printf(indent, "Sequence: unit %d", v.Unit)
		for _, c := range v.Controls {
			d.printf(indent+1, "Control: offset %d, type %d", c.Offset, c.Type)
			d.value(indent+2, c.Value)
		}
	case String:
		d.printf(indent, "String %q", string(v))
	case Bytes:
		d.printf(indent, "Bytes %d", len(v))
	case Bitmap:
		d.printf(indent, "Bitmap %d", len(v))
	case Rectangle:
		d.printf(indent, "Rectangle %dx%d", v.Width, v.Height)
	case Fraction:
		d.printf(indent, "Fraction %d/%d", v.Num, v.Denom)
	case Pointer:
		d.printf(indent, "Pointer type %d %#x", v.PointerType, v.Address)
	case None:
		d.printf(indent, "None")
	case nil:
		d.printf(indent, "<nil>")
	default:
		d.printf(indent, "%v %v", v.Type(), v)
	}
}
