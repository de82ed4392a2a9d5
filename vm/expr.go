package vm

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Scope resolves variable names during evaluation.
type Scope interface {
	Lookup(name string) (Value, bool)
}

// Expr is an operand expression of an instruction.
type Expr interface {
	Eval(s Scope) (Value, error)
	String() string
}

var ErrUndefined = errors.New("undefined variable")

type Operator uint8

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpPos
)

func (o Operator) String() string {
	switch o {
	case OpAdd, OpPos:
		return "+"
	case OpSub, OpNeg:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpFloorDiv:
		return "//"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	}
	return fmt.Sprintf("Operator(%d)", uint8(o))
}

type Literal struct {
	Value Value
}

func (l *Literal) Eval(Scope) (Value, error) {
	return l.Value.Clone(), nil
}

func (l *Literal) String() string {
	return Repr(l.Value)
}

type Ident struct {
	Name string
}

func (id *Ident) Eval(s Scope) (Value, error) {
	v, ok := s.Lookup(id.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefined, id.Name)
	}
	return v, nil
}

func (id *Ident) String() string {
	return id.Name
}

type Unary struct {
	Op Operator
	X  Expr
}

func (u *Unary) Eval(s Scope) (Value, error) {
	x, err := u.X.Eval(s)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case OpNot:
		return BoolValue(!x.AsBool()), nil
	case OpNeg:
		switch v := x.(type) {
		case IntValue:
			if v == math.MinInt {
				return nil, fmt.Errorf("%w: -(%d)", ErrIntegerOverflow, v)
			}
			return -v, nil
		case FloatValue:
			return -v, nil
		}
	case OpPos:
		switch x.(type) {
		case IntValue, FloatValue:
			return x, nil
		}
	default:
		return nil, fmt.Errorf("bad unary operator %s", u.Op)
	}
	return nil, fmt.Errorf("unary %s not defined on %s", u.Op, TypeName(x))
}

func (u *Unary) String() string {
	if u.Op == OpNot {
		return fmt.Sprintf("(not %s)", u.X)
	}
	return fmt.Sprintf("(%s%s)", u.Op, u.X)
}

type Binary struct {
	Op   Operator
	X, Y Expr
}

func (b *Binary) Eval(s Scope) (Value, error) {
	x, err := b.X.Eval(s)
	if err != nil {
		return nil, err
	}
	// and/or short-circuit and yield an operand, as in Starlark.
	switch b.Op {
	case OpAnd:
		if !x.AsBool() {
			return x, nil
		}
		return b.Y.Eval(s)
	case OpOr:
		if x.AsBool() {
			return x, nil
		}
		return b.Y.Eval(s)
	}
	y, err := b.Y.Eval(s)
	if err != nil {
		return nil, err
	}
	return BinaryOp(b.Op, x, y)
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.X, b.Op, b.Y)
}

// Index is X[Key] over arrays, strings and structs.
type Index struct {
	X, Key Expr
}

func (ix *Index) Eval(s Scope) (Value, error) {
	x, err := ix.X.Eval(s)
	if err != nil {
		return nil, err
	}
	k, err := ix.Key.Eval(s)
	if err != nil {
		return nil, err
	}
	return getAttribute(x, k)
}

func (ix *Index) String() string {
	return fmt.Sprintf("%s[%s]", ix.X, ix.Key)
}

// Attr is X.Name over structs.
type Attr struct {
	X    Expr
	Name string
}

func (a *Attr) Eval(s Scope) (Value, error) {
	x, err := a.X.Eval(s)
	if err != nil {
		return nil, err
	}
	st, ok := x.(StructValue)
	if !ok {
		return nil, fmt.Errorf("cannot read field %s of %s", a.Name, TypeName(x))
	}
	v, ok := st[a.Name]
	if !ok {
		return nil, fmt.Errorf("struct has no field %s", a.Name)
	}
	return v, nil
}

func (a *Attr) String() string {
	return fmt.Sprintf("%s.%s", a.X, a.Name)
}

func getAttribute(obj, key Value) (Value, error) {
	switch o := obj.(type) {
	case StructValue:
		k, ok := key.(StrValue)
		if !ok {
			return nil, fmt.Errorf("struct key must be a string, got %s", TypeName(key))
		}
		if val, ok := o[string(k)]; ok {
			return val, nil
		}
		return nil, fmt.Errorf("key %s not found in struct", k)
	case ArrayValue:
		idx, ok := key.(IntValue)
		if !ok {
			return nil, fmt.Errorf("array index must be an integer, got %s", TypeName(key))
		}
		i := int(idx)
		if i < 0 {
			i += len(o)
		}
		if i < 0 || i >= len(o) {
			return nil, fmt.Errorf("index %d out of bounds for array of length %d", int(idx), len(o))
		}
		return o[i], nil
	case StrValue:
		idx, ok := key.(IntValue)
		if !ok {
			return nil, fmt.Errorf("string index must be an integer, got %s", TypeName(key))
		}
		i := int(idx)
		if i < 0 {
			i += len(o)
		}
		if i < 0 || i >= len(o) {
			return nil, fmt.Errorf("index %d out of bounds for string of length %d", int(idx), len(o))
		}
		return o[i : i+1], nil
	}
	return nil, fmt.Errorf("cannot index %s", TypeName(obj))
}

// FreeVars returns the sorted, de-duplicated variable names e reads.
func FreeVars(exprs ...Expr) []string {
	seen := make(map[string]bool)
	var walk func(e Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case *Ident:
			seen[v.Name] = true
		case *Unary:
			walk(v.X)
		case *Binary:
			walk(v.X)
			walk(v.Y)
		case *Index:
			walk(v.X)
			walk(v.Key)
		case *Attr:
			walk(v.X)
		case *Call:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	for _, e := range exprs {
		walk(e)
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
