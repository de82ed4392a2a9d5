package vm

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrIntegerOverflow = errors.New("integer overflow")
)

// BinaryOp applies a non-short-circuit binary operator.
func BinaryOp(op Operator, a, b Value) (Value, error) {
	switch op {
	case OpAdd:
		return add(a, b)
	case OpSub, OpMul, OpDiv, OpFloorDiv, OpMod:
		return numericOp(op, a, b)
	case OpEq, OpNe:
		c, ok := a.Cmp(b)
		// Values that cannot be compared are not equal.
		eq := ok && c == 0
		if op == OpNe {
			eq = !eq
		}
		return BoolValue(eq), nil
	case OpLt, OpLe, OpGt, OpGe:
		c, ok := a.Cmp(b)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s %s %s", TypeName(a), op, TypeName(b))
		}
		var r bool
		switch op {
		case OpLt:
			r = c < 0
		case OpLe:
			r = c <= 0
		case OpGt:
			r = c > 0
		case OpGe:
			r = c >= 0
		}
		return BoolValue(r), nil
	}
	return nil, fmt.Errorf("bad binary operator %s", op)
}

func add(a, b Value) (Value, error) {
	switch av := a.(type) {
	case IntValue, FloatValue:
		return numericOp(OpAdd, a, b)
	case StrValue:
		if bv, ok := b.(StrValue); ok {
			return av + bv, nil
		}
	case ArrayValue:
		if bv, ok := b.(ArrayValue); ok {
			out := make(ArrayValue, 0, len(av)+len(bv))
			out = append(out, av...)
			return append(out, bv...), nil
		}
	}
	return nil, fmt.Errorf("cannot add %s and %s", TypeName(a), TypeName(b))
}

func numericOp(op Operator, a, b Value) (Value, error) {
	switch av := a.(type) {
	case FloatValue:
		switch bv := b.(type) {
		case FloatValue:
			return floatOp(op, float64(av), float64(bv))
		case IntValue:
			return floatOp(op, float64(av), float64(bv))
		}
	case IntValue:
		switch bv := b.(type) {
		case FloatValue:
			return floatOp(op, float64(av), float64(bv))
		case IntValue:
			return intOp(op, int(av), int(bv))
		}
	}
	return nil, fmt.Errorf("cannot apply %s to %s and %s", op, TypeName(a), TypeName(b))
}

func floatOp(op Operator, a, b float64) (Value, error) {
	switch op {
	case OpAdd:
		return FloatValue(a + b), nil
	case OpSub:
		return FloatValue(a - b), nil
	case OpMul:
		return FloatValue(a * b), nil
	}
	if b == 0 {
		return nil, ErrDivisionByZero
	}
	switch op {
	case OpDiv:
		return FloatValue(a / b), nil
	case OpFloorDiv:
		return FloatValue(math.Floor(a / b)), nil
	case OpMod:
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return FloatValue(m), nil
	}
	return nil, fmt.Errorf("bad numeric operator %s", op)
}

// intOp never wraps: results outside the int range are ErrIntegerOverflow.
func intOp(op Operator, a, b int) (Value, error) {
	switch op {
	case OpAdd:
		if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
			return nil, overflow(op, a, b)
		}
		return IntValue(a + b), nil
	case OpSub:
		if (b < 0 && a > math.MaxInt+b) || (b > 0 && a < math.MinInt+b) {
			return nil, overflow(op, a, b)
		}
		return IntValue(a - b), nil
	case OpMul:
		if a == 0 || b == 0 {
			return IntValue(0), nil
		}
		c := a * b
		if c/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
			return nil, overflow(op, a, b)
		}
		return IntValue(c), nil
	}
	if b == 0 {
		return nil, ErrDivisionByZero
	}
	if op == OpFloorDiv && a == math.MinInt && b == -1 {
		return nil, overflow(op, a, b)
	}
	switch op {
	case OpDiv:
		return FloatValue(float64(a) / float64(b)), nil
	case OpFloorDiv:
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return IntValue(q), nil
	case OpMod:
		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return IntValue(m), nil
	}
	return nil, fmt.Errorf("bad numeric operator %s", op)
}

func overflow(op Operator, a, b int) error {
	return fmt.Errorf("%w: %d %s %d", ErrIntegerOverflow, a, op, b)
}
