package vm

import (
	"sort"
	"strings"
)

// Value is a runtime value held in the environment or produced by an
// expression. The set of implementations is closed.
type Value interface {
	isValue()
	AsBool() bool
	// Cmp orders the receiver against other. ok is false when the two values
	// cannot be ordered; Cmp returns 0, true only for equal values.
	Cmp(other Value) (c int, ok bool)
	Clone() Value
}

type BoolValue bool

func (BoolValue) isValue() {}

var (
	BoolTrue  = BoolValue(true)
	BoolFalse = BoolValue(false)
)

func (b BoolValue) AsBool() bool {
	return bool(b)
}

func (b BoolValue) Cmp(other Value) (int, bool) {
	o, ok := other.(BoolValue)
	if !ok {
		return 0, false
	}
	switch {
	case b == o:
		return 0, true
	case !bool(b):
		return -1, true
	default:
		return 1, true
	}
}

func (b BoolValue) Clone() Value { return b }

type StrValue string

func (StrValue) isValue() {}

func (s StrValue) AsBool() bool {
	return s != ""
}

func (s StrValue) Cmp(other Value) (int, bool) {
	o, ok := other.(StrValue)
	if !ok {
		return 0, false
	}
	return strings.Compare(string(s), string(o)), true
}

func (s StrValue) Clone() Value { return s }

type IntValue int

func (IntValue) isValue() {}

func (i IntValue) AsBool() bool {
	return i != 0
}

func (i IntValue) Cmp(other Value) (int, bool) {
	switch o := other.(type) {
	case IntValue:
		return cmpOrdered(int(i), int(o)), true
	case FloatValue:
		return cmpOrdered(float64(i), float64(o)), true
	}
	return 0, false
}

func (i IntValue) Clone() Value { return i }

type FloatValue float64

func (FloatValue) isValue() {}

func (f FloatValue) AsBool() bool {
	return f != 0
}

func (f FloatValue) Cmp(other Value) (int, bool) {
	switch o := other.(type) {
	case FloatValue:
		return cmpOrdered(float64(f), float64(o)), true
	case IntValue:
		return cmpOrdered(float64(f), float64(o)), true
	}
	return 0, false
}

func (f FloatValue) Clone() Value { return f }

type NoneValue struct{}

func (NoneValue) isValue() {}

var None = NoneValue{}

func (NoneValue) AsBool() bool { return false }

func (NoneValue) Cmp(other Value) (int, bool) {
	if _, ok := other.(NoneValue); ok {
		return 0, true
	}
	return 0, false
}

func (n NoneValue) Clone() Value { return n }

type ArrayValue []Value

func (ArrayValue) isValue() {}

func (a ArrayValue) AsBool() bool {
	return len(a) != 0
}

// Cmp orders arrays lexicographically.
func (a ArrayValue) Cmp(other Value) (int, bool) {
	o, ok := other.(ArrayValue)
	if !ok {
		return 0, false
	}
	for i := 0; i < len(a) && i < len(o); i++ {
		c, ok := a[i].Cmp(o[i])
		if !ok {
			return 0, false
		}
		if c != 0 {
			return c, true
		}
	}
	return cmpOrdered(len(a), len(o)), true
}

func (a ArrayValue) Clone() Value {
	out := make(ArrayValue, len(a))
	for i, v := range a {
		out[i] = v.Clone()
	}
	return out
}

type StructValue map[string]Value

func (StructValue) isValue() {}

func (s StructValue) AsBool() bool {
	return len(s) != 0
}

// Cmp only reports equality; structs have no order.
func (s StructValue) Cmp(other Value) (int, bool) {
	o, ok := other.(StructValue)
	if !ok || len(s) != len(o) {
		return 0, false
	}
	for k, v := range s {
		ov, ok := o[k]
		if !ok {
			return 0, false
		}
		if c, ok := v.Cmp(ov); !ok || c != 0 {
			return 0, false
		}
	}
	return 0, true
}

func (s StructValue) Clone() Value {
	out := make(StructValue, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the struct's field names in sorted order.
func (s StructValue) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// TypeName returns the user-facing type name of a value.
func TypeName(v Value) string {
	switch v.(type) {
	case ArrayValue:
		return "array"
	case StructValue:
		return "struct"
	case IntValue:
		return "int"
	case FloatValue:
		return "float"
	case StrValue:
		return "string"
	case BoolValue:
		return "bool"
	case NoneValue:
		return "none"
	default:
		return "unknown"
	}
}
