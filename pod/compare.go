package pod

import "bytes"

// Compare orders two scalar values of the same type. The second result is
// false when the values are of different types or are not ordered.
// Rectangles are ordered by area and Fractions by their rational value.
func Compare(a, b Value) (int, bool) {
	if a == nil || b == nil || a.Type() != b.Type() {
		return 0, false
	}
	switch a := a.(type) {
	case None:
		return 0, true
	case Bool:
		return cmpInt64(boolInt(bool(a)), boolInt(bool(b.(Bool)))), true
	case Id:
		return cmpUint64(uint64(a), uint64(b.(Id))), true
	case Int:
		return cmpInt64(int64(a), int64(b.(Int))), true
	case Long:
		return cmpInt64(int64(a), int64(b.(Long))), true
	case Fd:
		return cmpInt64(int64(a), int64(b.(Fd))), true
	case Float:
		return cmpFloat(float64(a), float64(b.(Float))), true
	case Double:
		return cmpFloat(float64(a), float64(b.(Double))), true
	case String:
		return cmpString(string(a), string(b.(String))), true
	case Rectangle:
		r := b.(Rectangle)
		if a == r {
			return 0, true
		}
		return cmpUint64(uint64(a.Width)*uint64(a.Height), uint64(r.Width)*uint64(r.Height)), true
	case Fraction:
		f := b.(Fraction)
		return cmpUint64(uint64(a.Num)*uint64(f.Denom), uint64(f.Num)*uint64(a.Denom)), true
	}
	return 0, false
}

// Equal reports whether two decoded values are identical.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a := a.(type) {
	case Bytes:
		return bytes.Equal(a, b.(Bytes))
	case Bitmap:
		return bytes.Equal(a, b.(Bitmap))
	case Array:
		o := b.(Array)
		return a.Child == o.Child && equalList(a.Values, o.Values)
	case Choice:
		o := b.(Choice)
		return a.Kind == o.Kind && a.Flags == o.Flags && a.Child == o.Child && equalList(a.Values, o.Values)
	case Struct:
		return equalList(a, b.(Struct))
	case Object:
		o := b.(Object)
		if a.ObjectType != o.ObjectType || a.ID != o.ID || len(a.Props) != len(o.Props) {
			return false
		}
		for i := range a.Props {
			p, q := a.Props[i], o.Props[i]
			if p.Key != q.Key || p.Flags != q.Flags || !Equal(p.Value, q.Value) {
				return false
			}
		}
		return true
	case Sequence:
		o := b.(Sequence)
		if a.Unit != o.Unit || len(a.Controls) != len(o.Controls) {
			return false
		}
		for i := range a.Controls {
			p, q := a.Controls[i], o.Controls[i]
			if p.Offset != q.Offset || p.Type != q.Type || !Equal(p.Value, q.Value) {
				return false
			}
		}
		return true
	}
	return a == b
}

func equalList(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
