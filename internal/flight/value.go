package flight

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is one loosely typed field of a state vector. Exactly one variant is
// populated, selected by Kind.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Null returns the "no value" variant.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a floating point number.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind reports the populated variant.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string variant.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsBool returns the boolean variant.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsFloat returns the numeric value for both the integer and float variants.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsInt returns the integer variant.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// UnmarshalJSON probes bool, integer, float and string in that order. Anything
// else (objects, arrays, null) decodes to the null variant; it never fails.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*v = Null()
		return nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		*v = Bool(b)
		return nil
	}
	var i int64
	if err := json.Unmarshal(raw, &i); err == nil {
		*v = Int(i)
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		*v = Float(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*v = String(s)
		return nil
	}

	*v = Null()
	return nil
}

// MarshalJSON writes the populated variant, or null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// Vector is a positionally encoded state vector.
type Vector []Value

// At returns the value at index i, or Null when the vector is too short.
func (vec Vector) At(i int) Value {
	if i < 0 || i >= len(vec) {
		return Null()
	}
	return vec[i]
}
