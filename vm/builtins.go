package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BuiltinRegistry maps builtin function names to their implementations.
// Builtins are pure: they read their arguments and never the environment.
var BuiltinRegistry = map[string]func(args []Value) (Value, error){
	"range": builtinRange,
	"len":   builtinLen,
	"abs":   builtinAbs,
	"int":   builtinInt,
	"float": builtinFloat,
	"str":   builtinStr,
	"min":   builtinMin,
	"max":   builtinMax,
}

// Call applies a builtin to its evaluated arguments.
type Call struct {
	Fn   string
	Args []Expr
}

func (c *Call) Eval(s Scope) (Value, error) {
	fn, ok := BuiltinRegistry[c.Fn]
	if !ok {
		return nil, fmt.Errorf("unknown function %s", c.Fn)
	}
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := a.Eval(s)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn(args)
}

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Fn + "(" + strings.Join(parts, ", ") + ")"
}

// builtinRange implements range(stop), range(start, stop) and
// range(start, stop, step).
func builtinRange(args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("range() takes 1 to 3 arguments, got %d", len(args))
	}
	ints := make([]int, len(args))
	for i, a := range args {
		n, ok := a.(IntValue)
		if !ok {
			return nil, fmt.Errorf("range() arguments must be integers, got %s", TypeName(a))
		}
		ints[i] = int(n)
	}
	start, stop, step := 0, ints[0], 1
	if len(ints) > 1 {
		start, stop = ints[0], ints[1]
	}
	if len(ints) == 3 {
		step = ints[2]
	}
	if step == 0 {
		return nil, fmt.Errorf("range() step argument must not be zero")
	}
	n := rangeLen(start, stop, step)
	if n > MaxRangeLen {
		return nil, fmt.Errorf("range() would produce %d elements, more than the limit of %d", n, MaxRangeLen)
	}
	result := make(ArrayValue, n)
	v := start
	for i := range result {
		result[i] = IntValue(v)
		// wraps only after the last element has been stored
		v += step
	}
	return result, nil
}

// MaxRangeLen is the largest array range() will build.
const MaxRangeLen = 1 << 20

// rangeLen counts the elements of range(start, stop, step) without
// overflowing, whatever the operands.
func rangeLen(start, stop, step int) uint64 {
	var span, stride uint64
	switch {
	case step > 0 && start < stop:
		span = uint64(stop) - uint64(start)
		stride = uint64(step)
	case step < 0 && start > stop:
		span = uint64(start) - uint64(stop)
		stride = uint64(-(step + 1)) + 1
	default:
		return 0
	}
	return (span-1)/stride + 1
}

func builtinLen(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len() takes exactly 1 argument, got %d", len(args))
	}
	switch val := args[0].(type) {
	case ArrayValue:
		return IntValue(len(val)), nil
	case StrValue:
		return IntValue(len(val)), nil
	case StructValue:
		return IntValue(len(val)), nil
	}
	return nil, fmt.Errorf("len() argument must be array, string, or struct, got %s", TypeName(args[0]))
}

func builtinAbs(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("abs() takes exactly 1 argument, got %d", len(args))
	}
	switch val := args[0].(type) {
	case IntValue:
		if val == math.MinInt {
			return nil, fmt.Errorf("abs(): %w", ErrIntegerOverflow)
		}
		if val < 0 {
			return -val, nil
		}
		return val, nil
	case FloatValue:
		return FloatValue(math.Abs(float64(val))), nil
	}
	return nil, fmt.Errorf("abs() argument must be a number, got %s", TypeName(args[0]))
}

func builtinInt(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("int() takes exactly 1 argument, got %d", len(args))
	}
	switch val := args[0].(type) {
	case IntValue:
		return val, nil
	case FloatValue:
		return IntValue(math.Trunc(float64(val))), nil
	case BoolValue:
		if val {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	case StrValue:
		n, err := strconv.Atoi(strings.TrimSpace(string(val)))
		if err != nil {
			return nil, fmt.Errorf("int(): invalid literal %q", string(val))
		}
		return IntValue(n), nil
	}
	return nil, fmt.Errorf("int() argument must be a number or string, got %s", TypeName(args[0]))
}

func builtinFloat(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("float() takes exactly 1 argument, got %d", len(args))
	}
	switch val := args[0].(type) {
	case IntValue:
		return FloatValue(val), nil
	case FloatValue:
		return val, nil
	case StrValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil {
			return nil, fmt.Errorf("float(): invalid literal %q", string(val))
		}
		return FloatValue(f), nil
	}
	return nil, fmt.Errorf("float() argument must be a number or string, got %s", TypeName(args[0]))
}

func builtinStr(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str() takes exactly 1 argument, got %d", len(args))
	}
	if s, ok := args[0].(StrValue); ok {
		return s, nil
	}
	return StrValue(Repr(args[0])), nil
}

func builtinMin(args []Value) (Value, error) {
	return extremum("min", args, -1)
}

func builtinMax(args []Value) (Value, error) {
	return extremum("max", args, 1)
}

// extremum accepts either several arguments or a single array.
func extremum(name string, args []Value, want int) (Value, error) {
	if len(args) == 1 {
		if arr, ok := args[0].(ArrayValue); ok {
			args = arr
		}
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s() of an empty sequence", name)
	}
	best := args[0]
	for _, v := range args[1:] {
		c, ok := v.Cmp(best)
		if !ok {
			return nil, fmt.Errorf("%s(): cannot compare %s and %s", name, TypeName(v), TypeName(best))
		}
		if c == want {
			best = v
		}
	}
	return best, nil
}
