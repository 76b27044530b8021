package pod

import (
	errors "golang.org/x/xerrors"
)

// Filter writes the intersection of p and filter into b and returns it. A
// nil filter copies p. Objects must have the same object type; their
// properties are intersected by key and properties present on one side only
// are copied. When the intersection is empty, ErrNoIntersection is returned
// and b is left as it was.
func Filter(b *Builder, p, filter Pod) (Pod, error) {
	state := b.State()
	if filter == nil {
		start := b.w.Length()
		b.Raw(p)
		if err := b.Err(); err != nil {
			b.Reset(state)
			return nil, err
		}
		return Pod(b.w.Slice(start, start+len(p))), nil
	}

	a, err := p.Value()
	if err != nil {
		return nil, err
	}
	c, err := filter.Value()
	if err != nil {
		return nil, err
	}
	v, err := FilterValue(a, c)
	if err != nil {
		return nil, err
	}
	res, err := b.Value(v)
	if err != nil {
		b.Reset(state)
		return nil, err
	}
	return res, nil
}

// FilterValue intersects two decoded values. See Filter.
func FilterValue(a, c Value) (Value, error) {
	ac, aChoice := a.(Choice)
	cc, cChoice := c.(Choice)
	if aChoice || cChoice {
		if !aChoice {
			ac = fixedChoice(a)
		}
		if !cChoice {
			cc = fixedChoice(c)
		}
		v, err := filterChoice(ac, cc)
		if err != nil {
			return nil, err
		}
		if fixed, ok := v.(Choice); ok && fixed.Kind == ChoiceNone && !aChoice {
			return fixed.Values[0], nil
		}
		return v, nil
	}

	if a.Type() != c.Type() {
		return nil, errors.Errorf("%v and %v: %w", a.Type(), c.Type(), ErrNoIntersection)
	}
	switch a := a.(type) {
	case Object:
		return filterObject(a, c.(Object))
	case Struct:
		return filterStruct(a, c.(Struct))
	}
	if !Equal(a, c) {
		return nil, errors.Errorf("%v values differ: %w", a.Type(), ErrNoIntersection)
	}
	return a, nil
}

func fixedChoice(v Value) Choice {
	return Choice{Kind: ChoiceNone, Child: v.Type(), Values: []Value{v}}
}

func filterObject(a, c Object) (Value, error) {
	if a.ObjectType != c.ObjectType {
		return nil, errors.Errorf("object type %#x and %#x: %w", a.ObjectType, c.ObjectType, ErrNoIntersection)
	}
	out := Object{ObjectType: a.ObjectType, ID: a.ID, Props: make([]Prop, 0, len(a.Props)+len(c.Props))}
	for _, p := range a.Props {
		q := c.Find(p.Key)
		if q == nil {
			out.Props = append(out.Props, p)
			continue
		}
		v, err := FilterValue(p.Value, q.Value)
		if err != nil {
			return nil, errors.Errorf("key %#x: %w", p.Key, err)
		}
		out.Props = append(out.Props, Prop{Key: p.Key, Flags: p.Flags, Value: v})
	}
	for _, q := range c.Props {
		if a.Find(q.Key) == nil {
			out.Props = append(out.Props, q)
		}
	}
	return out, nil
}

func filterStruct(a, c Struct) (Value, error) {
	if len(a) != len(c) {
		return nil, errors.Errorf("struct of %d and %d fields: %w", len(a), len(c), ErrNoIntersection)
	}
	out := make(Struct, len(a))
	for i := range a {
		v, err := FilterValue(a[i], c[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *Choice) finite() bool {
	switch c.Kind {
	case ChoiceNone, ChoiceEnum:
		return true
	case ChoiceRange, ChoiceStep:
		return len(c.Values) < 3
	}
	return false
}

// members returns the candidate values of a finite choice.
func (c *Choice) members() []Value {
	if c.Kind == ChoiceEnum {
		return c.Alternatives()
	}
	return c.Values[:1]
}

// contains reports whether v is acceptable to c.
func (c *Choice) contains(v Value) bool {
	switch {
	case c.Kind == ChoiceFlags:
		m, ok := flagMask(c)
		n, ok2 := toInt(v)
		return ok && ok2 && n&^m == 0
	case c.finite():
		for _, m := range c.members() {
			if Equal(v, m) {
				return true
			}
		}
		return false
	case c.Kind == ChoiceRange:
		return inRange(v, c.Values[1], c.Values[2])
	case c.Kind == ChoiceStep:
		return inRange(v, c.Values[1], c.Values[2]) &&
			(len(c.Values) < 4 || onStep(v, c.Values[1], c.Values[3]))
	}
	return false
}

func filterChoice(a, c Choice) (Value, error) {
	if len(a.Values) == 0 || len(c.Values) == 0 {
		return nil, errors.Errorf("empty choice: %w", ErrNoIntersection)
	}
	if a.Child != c.Child {
		return nil, errors.Errorf("%v and %v choices: %w", a.Child, c.Child, ErrNoIntersection)
	}

	switch {
	case a.Kind == ChoiceFlags && c.Kind == ChoiceFlags:
		return filterFlags(a, c)
	case a.finite():
		return filterFinite(a, c, a.members(), &c)
	case c.finite():
		return filterFinite(a, c, c.members(), &a)
	case a.Kind == ChoiceFlags || c.Kind == ChoiceFlags:
		return nil, errors.Errorf("%v and %v choices: %w", a.Kind, c.Kind, ErrNoIntersection)
	}
	return filterRange(a, c)
}

// filterFinite keeps the candidates accepted by other.
func filterFinite(a, c Choice, candidates []Value, other *Choice) (Value, error) {
	common := make([]Value, 0, len(candidates))
	for _, v := range candidates {
		if other.contains(v) {
			common = append(common, v)
		}
	}
	if len(common) == 0 {
		return nil, errors.Errorf("%v and %v choices: %w", a.Kind, c.Kind, ErrNoIntersection)
	}
	if a.Kind == ChoiceNone || c.Kind == ChoiceNone {
		return Choice{Kind: ChoiceNone, Flags: a.Flags, Child: a.Child, Values: common[:1]}, nil
	}

	def := common[0]
	if containsValue(common, a.Values[0]) {
		def = a.Values[0]
	}
	if len(common) == 1 && len(a.Values) == 1 {
		return Choice{Kind: ChoiceEnum, Flags: a.Flags, Child: a.Child, Values: common}, nil
	}
	vals := make([]Value, 0, len(common)+1)
	vals = append(vals, def)
	vals = append(vals, common...)
	return Choice{Kind: ChoiceEnum, Flags: a.Flags, Child: a.Child, Values: vals}, nil
}

func containsValue(list []Value, v Value) bool {
	for _, e := range list {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

func filterFlags(a, c Choice) (Value, error) {
	ma, ok := flagMask(&a)
	mc, ok2 := flagMask(&c)
	if !ok || !ok2 {
		return nil, errors.Errorf("flags of %v: %w", a.Child, ErrNoIntersection)
	}
	m := ma & mc
	if m == 0 {
		return nil, errors.Errorf("flags %#x and %#x: %w", ma, mc, ErrNoIntersection)
	}
	def, _ := toInt(a.Values[0])
	return Choice{
		Kind:   ChoiceFlags,
		Flags:  a.Flags,
		Child:  a.Child,
		Values: []Value{fromInt(a.Child, def&m), fromInt(a.Child, m)},
	}, nil
}

func flagMask(c *Choice) (int64, bool) {
	var m int64
	for _, v := range c.Alternatives() {
		n, ok := toInt(v)
		if !ok {
			return 0, false
		}
		m |= n
	}
	return m, true
}

func filterRange(a, c Choice) (Value, error) {
	min := maxValue(a.Values[1], c.Values[1])
	max := minValue(a.Values[2], c.Values[2])
	if !inRange(min, min, max) {
		return nil, errors.Errorf("%v..%v: %w", min, max, ErrNoIntersection)
	}

	kind := ChoiceRange
	var base, step Value
	switch {
	case a.Kind == ChoiceStep && c.Kind == ChoiceStep && len(a.Values) > 3 && len(c.Values) > 3:
		sa, _ := toInt(a.Values[3])
		sc, _ := toInt(c.Values[3])
		if sa <= 0 || sc <= 0 {
			return nil, errors.Errorf("step %d and %d: %w", sa, sc, ErrNoIntersection)
		}
		fine, coarse := a, c
		if sa > sc {
			fine, coarse = c, a
		}
		fs, _ := toInt(fine.Values[3])
		cs, _ := toInt(coarse.Values[3])
		if cs%fs != 0 || !onStep(coarse.Values[1], fine.Values[1], fine.Values[3]) {
			return nil, errors.Errorf("step %d and %d: %w", sa, sc, ErrNoIntersection)
		}
		kind, base, step = ChoiceStep, coarse.Values[1], coarse.Values[3]
	case a.Kind == ChoiceStep && len(a.Values) > 3:
		kind, base, step = ChoiceStep, a.Values[1], a.Values[3]
	case c.Kind == ChoiceStep && len(c.Values) > 3:
		kind, base, step = ChoiceStep, c.Values[1], c.Values[3]
	}

	def := clamp(a.Values[0], min, max)
	if kind == ChoiceStep {
		var ok bool
		if min, max, ok = alignRange(min, max, base, step); !ok {
			return nil, errors.Errorf("no step of %v in range: %w", step, ErrNoIntersection)
		}
		def = clamp(snap(def, base, step), min, max)
		return Choice{Kind: kind, Flags: a.Flags, Child: a.Child, Values: []Value{def, min, max, step}}, nil
	}
	return Choice{Kind: kind, Flags: a.Flags, Child: a.Child, Values: []Value{def, min, max}}, nil
}

func inRange(v, min, max Value) bool {
	if r, ok := v.(Rectangle); ok {
		lo, ok1 := min.(Rectangle)
		hi, ok2 := max.(Rectangle)
		return ok1 && ok2 &&
			r.Width >= lo.Width && r.Width <= hi.Width &&
			r.Height >= lo.Height && r.Height <= hi.Height
	}
	lo, ok1 := Compare(v, min)
	hi, ok2 := Compare(v, max)
	return ok1 && ok2 && lo >= 0 && hi <= 0
}

func onStep(v, base, step Value) bool {
	if r, ok := v.(Rectangle); ok {
		b, s := base.(Rectangle), step.(Rectangle)
		return (s.Width == 0 || (r.Width-b.Width)%s.Width == 0) &&
			(s.Height == 0 || (r.Height-b.Height)%s.Height == 0)
	}
	n, ok1 := toInt(v)
	b, ok2 := toInt(base)
	s, ok3 := toInt(step)
	if !ok1 || !ok2 || !ok3 || s == 0 {
		return true
	}
	return (n-b)%s == 0
}

// alignRange shrinks [min, max] to the grid base + k*step.
func alignRange(min, max, base, step Value) (Value, Value, bool) {
	lo, ok1 := toInt(min)
	hi, ok2 := toInt(max)
	b, ok3 := toInt(base)
	s, ok4 := toInt(step)
	if !ok1 || !ok2 || !ok3 || !ok4 || s <= 0 {
		return min, max, true
	}
	lo = b + ceilDiv(lo-b, s)*s
	hi = b + floorDiv(hi-b, s)*s
	if lo > hi {
		return min, max, false
	}
	return fromInt(min.Type(), lo), fromInt(max.Type(), hi), true
}

func snap(v, base, step Value) Value {
	n, ok1 := toInt(v)
	b, ok2 := toInt(base)
	s, ok3 := toInt(step)
	if !ok1 || !ok2 || !ok3 || s <= 0 {
		return v
	}
	return fromInt(v.Type(), b+floorDiv(n-b, s)*s)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

func clamp(v, min, max Value) Value {
	if r, ok := v.(Rectangle); ok {
		lo, hi := min.(Rectangle), max.(Rectangle)
		return Rectangle{clampU32(r.Width, lo.Width, hi.Width), clampU32(r.Height, lo.Height, hi.Height)}
	}
	if n, ok := Compare(v, min); ok && n < 0 {
		return min
	}
	if n, ok := Compare(v, max); ok && n > 0 {
		return max
	}
	return v
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxValue(a, b Value) Value {
	if r, ok := a.(Rectangle); ok {
		o := b.(Rectangle)
		if o.Width > r.Width {
			r.Width = o.Width
		}
		if o.Height > r.Height {
			r.Height = o.Height
		}
		return r
	}
	if n, _ := Compare(a, b); n < 0 {
		return b
	}
	return a
}

func minValue(a, b Value) Value {
	if r, ok := a.(Rectangle); ok {
		o := b.(Rectangle)
		if o.Width < r.Width {
			r.Width = o.Width
		}
		if o.Height < r.Height {
			r.Height = o.Height
		}
		return r
	}
	if n, _ := Compare(a, b); n > 0 {
		return b
	}
	return a
}

func toInt(v Value) (int64, bool) {
	switch v := v.(type) {
	case Int:
		return int64(v), true
	case Long:
		return int64(v), true
	case Id:
		return int64(v), true
	}
	return 0, false
}

func fromInt(t Type, n int64) Value {
	switch t {
	case TypeInt:
		return Int(n)
	case TypeId:
		return Id(n)
	}
	return Long(n)
}

// Fixate replaces every choice in v with its default value.
func Fixate(v Value) Value {
	switch v := v.(type) {
	case Choice:
		if len(v.Values) > 0 {
			return v.Values[0]
		}
	case Object:
		out := Object{ObjectType: v.ObjectType, ID: v.ID, Props: make([]Prop, len(v.Props))}
		for i, p := range v.Props {
			out.Props[i] = Prop{Key: p.Key, Flags: p.Flags, Value: Fixate(p.Value)}
		}
		return out
	case Struct:
		out := make(Struct, len(v))
		for i, e := range v {
			out[i] = Fixate(e)
		}
		return out
	}
	return v
}
