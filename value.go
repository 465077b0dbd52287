package cp2kinput

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds, one per implementation of Value.
const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindNumber
	KindBool
	KindSection
	KindRepeated
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSection:
		return "section"
	case KindRepeated:
		return "repeated"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a node of an input tree. The set of implementations is closed:
// String, Int, Float, Number, Bool, Section and Repeated.
type Value interface {
	Kind() Kind
	// Clone returns a deep copy. Scalars return themselves.
	Clone() Value
	value()
}

// String is a text keyword value, rendered verbatim.
type String string

// Int is an integer keyword value.
type Int int64

// Float is a floating-point keyword value.
type Float float64

// Number is a numeric literal kept in its original textual form, as
// produced by json.Decoder.UseNumber.
type Number string

// Bool renders as TrueLiteral or FalseLiteral, never as a number.
type Bool bool

// Section maps keys to values. The ParamKey entry, if present, is the
// section's positional parameter rather than a keyword.
type Section map[string]Value

// Repeated renders its enclosing key once per element, in order.
type Repeated []Value

func (String) Kind() Kind   { return KindString }
func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (Number) Kind() Kind   { return KindNumber }
func (Bool) Kind() Kind     { return KindBool }
func (Section) Kind() Kind  { return KindSection }
func (Repeated) Kind() Kind { return KindRepeated }

func (v String) Clone() Value { return v }
func (v Int) Clone() Value    { return v }
func (v Float) Clone() Value  { return v }
func (v Number) Clone() Value { return v }
func (v Bool) Clone() Value   { return v }

func (s Section) Clone() Value { return s.clone() }

func (r Repeated) Clone() Value {
	if r == nil {
		return Repeated(nil)
	}
	out := make(Repeated, len(r))
	for i, v := range r {
		out[i] = cloneValue(v)
	}
	return out
}

func (String) value()   {}
func (Int) value()      {}
func (Float) value()    {}
func (Number) value()   {}
func (Bool) value()     {}
func (Section) value()  {}
func (Repeated) value() {}

func (v String) String() string { return string(v) }
func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Number) String() string { return string(v) }

// String formats the shortest representation that parses back to the same
// float64. Magnitudes in [1e-4, 1e16) and zero use positional notation,
// others use an exponent; whole numbers keep a decimal point ("280.0").
func (v Float) String() string {
	f := float64(v)
	format := byte('g')
	if abs := math.Abs(f); abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		format = 'f'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func (v Bool) String() string {
	if v {
		return TrueLiteral
	}
	return FalseLiteral
}

// clone is Clone without the interface boxing.
func (s Section) clone() Section {
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

// Keys returns the section's keys in rendering order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Param returns the section's positional parameter.
func (s Section) Param() (Value, bool) {
	v, ok := s[ParamKey]
	return v, ok
}

func cloneValue(v Value) Value {
	if v == nil {
		return nil
	}
	return v.Clone()
}

// IsScalar reports whether v is neither a Section nor a Repeated.
func IsScalar(v Value) bool {
	switch v.(type) {
	case Section, Repeated:
		return false
	default:
		return v != nil
	}
}
