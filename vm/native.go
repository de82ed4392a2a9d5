package vm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FromNative converts a decoded JSON/TOML/msgpack value into a Value.
// Integral json.Numbers become IntValue.
func FromNative(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return None, nil
	case Value:
		return v, nil
	case bool:
		return BoolValue(v), nil
	case string:
		return StrValue(v), nil
	case []byte:
		return StrValue(v), nil
	case int:
		return IntValue(v), nil
	case int8:
		return IntValue(v), nil
	case int16:
		return IntValue(v), nil
	case int32:
		return IntValue(v), nil
	case int64:
		return IntValue(v), nil
	case uint8:
		return IntValue(v), nil
	case uint16:
		return IntValue(v), nil
	case uint32:
		return IntValue(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int", v)
		}
		return IntValue(v), nil
	case float32:
		return FloatValue(v), nil
	case float64:
		return FloatValue(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return IntValue(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", v.String(), err)
		}
		return FloatValue(f), nil
	case []any:
		out := make(ArrayValue, len(v))
		for i, e := range v {
			ev, err := FromNative(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(StructValue, len(v))
		for k, e := range v {
			ev, err := FromNative(e)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			out[k] = ev
		}
		return out, nil
	case map[any]any:
		out := make(StructValue, len(v))
		for k, e := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("struct key %v is not a string", k)
			}
			ev, err := FromNative(e)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", ks, err)
			}
			out[ks] = ev
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", x)
}

// FromParams converts a parameter map into environment values.
func FromParams(params map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(params))
	for k, v := range params {
		val, err := FromNative(v)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

// ToNative converts a Value into plain Go values suitable for JSON.
func ToNative(v Value) any {
	switch val := v.(type) {
	case BoolValue:
		return bool(val)
	case StrValue:
		return string(val)
	case IntValue:
		return int64(val)
	case FloatValue:
		return float64(val)
	case ArrayValue:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = ToNative(e)
		}
		return out
	case StructValue:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = ToNative(e)
		}
		return out
	}
	return nil
}

// Repr renders a value as expression source text that CompileExpr accepts
// for scalar values.
func Repr(v Value) string {
	switch val := v.(type) {
	case BoolValue:
		if val {
			return "True"
		}
		return "False"
	case StrValue:
		return strconv.Quote(string(val))
	case IntValue:
		return strconv.Itoa(int(val))
	case FloatValue:
		s := strconv.FormatFloat(float64(val), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case NoneValue:
		return "None"
	case ArrayValue:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = Repr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case StructValue:
		keys := val.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + Repr(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("<%T>", v)
}

// Wire is a deterministic, serializer-friendly encoding of a Value. Struct
// fields are stored in sorted key order so equal values encode identically.
type Wire struct {
	T uint8
	I int64
	F float64
	S string
	K []string
	L []Wire
}

const (
	wireNone uint8 = iota
	wireBool
	wireInt
	wireFloat
	wireStr
	wireArray
	wireStruct
)

func ToWire(v Value) Wire {
	switch val := v.(type) {
	case BoolValue:
		w := Wire{T: wireBool}
		if val {
			w.I = 1
		}
		return w
	case IntValue:
		return Wire{T: wireInt, I: int64(val)}
	case FloatValue:
		return Wire{T: wireFloat, F: float64(val)}
	case StrValue:
		return Wire{T: wireStr, S: string(val)}
	case ArrayValue:
		w := Wire{T: wireArray, L: make([]Wire, len(val))}
		for i, e := range val {
			w.L[i] = ToWire(e)
		}
		return w
	case StructValue:
		keys := val.Keys()
		w := Wire{T: wireStruct, K: keys, L: make([]Wire, len(keys))}
		for i, k := range keys {
			w.L[i] = ToWire(val[k])
		}
		return w
	}
	return Wire{T: wireNone}
}

func FromWire(w Wire) (Value, error) {
	switch w.T {
	case wireNone:
		return None, nil
	case wireBool:
		return BoolValue(w.I != 0), nil
	case wireInt:
		return IntValue(w.I), nil
	case wireFloat:
		return FloatValue(w.F), nil
	case wireStr:
		return StrValue(w.S), nil
	case wireArray:
		out := make(ArrayValue, len(w.L))
		for i, e := range w.L {
			v, err := FromWire(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case wireStruct:
		if len(w.K) != len(w.L) {
			return nil, fmt.Errorf("struct encoding has %d keys and %d values", len(w.K), len(w.L))
		}
		out := make(StructValue, len(w.K))
		for i, k := range w.K {
			v, err := FromWire(w.L[i])
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown value encoding %d", w.T)
}
