package vm

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"go.starlark.net/syntax"
)

// CompileExpr parses Starlark expression syntax into an Expr. Only the
// operand subset the instruction set needs is accepted.
func CompileExpr(src string) (Expr, error) {
	opts := syntax.FileOptions{}
	e, err := opts.ParseExpr("expr", src, 0)
	if err != nil {
		return nil, err
	}
	return expr(e)
}

// MustCompileExpr is CompileExpr for literals known to be valid.
func MustCompileExpr(src string) Expr {
	e, err := CompileExpr(src)
	if err != nil {
		panic(err)
	}
	return e
}

func expr(e syntax.Expr) (Expr, error) {
	switch v := e.(type) {
	case *syntax.Literal:
		return literal(v)
	case *syntax.Ident:
		switch v.Name {
		case "True":
			return &Literal{Value: BoolTrue}, nil
		case "False":
			return &Literal{Value: BoolFalse}, nil
		case "None":
			return &Literal{Value: None}, nil
		}
		return &Ident{Name: v.Name}, nil
	case *syntax.ParenExpr:
		return expr(v.X)
	case *syntax.UnaryExpr:
		var op Operator
		switch v.Op {
		case syntax.NOT:
			op = OpNot
		case syntax.MINUS:
			op = OpNeg
		case syntax.PLUS:
			op = OpPos
		default:
			return nil, fmt.Errorf("unsupported unary operator %s", v.Op)
		}
		x, err := expr(v.X)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, X: x}, nil
	case *syntax.BinaryExpr:
		op, err := binOp(v.Op)
		if err != nil {
			return nil, err
		}
		x, err := expr(v.X)
		if err != nil {
			return nil, err
		}
		y, err := expr(v.Y)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, X: x, Y: y}, nil
	case *syntax.IndexExpr:
		x, err := expr(v.X)
		if err != nil {
			return nil, err
		}
		k, err := expr(v.Y)
		if err != nil {
			return nil, err
		}
		return &Index{X: x, Key: k}, nil
	case *syntax.CallExpr:
		fn, ok := v.Fn.(*syntax.Ident)
		if !ok {
			return nil, fmt.Errorf("only builtin functions can be called")
		}
		if _, ok := BuiltinRegistry[fn.Name]; !ok {
			return nil, fmt.Errorf("unknown function %s", fn.Name)
		}
		call := &Call{Fn: fn.Name}
		for _, a := range v.Args {
			x, err := expr(a)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, x)
		}
		return call, nil
	case *syntax.DotExpr:
		x, err := expr(v.X)
		if err != nil {
			return nil, err
		}
		return &Attr{X: x, Name: v.Name.Name}, nil
	}
	return nil, fmt.Errorf("unsupported expression %T", e)
}

func literal(v *syntax.Literal) (Expr, error) {
	switch v.Token {
	case syntax.INT:
		switch n := v.Value.(type) {
		case int64:
			return &Literal{Value: IntValue(n)}, nil
		case *big.Int:
			return nil, fmt.Errorf("integer literal %s out of range", n)
		}
	case syntax.FLOAT:
		if f, ok := v.Value.(float64); ok {
			return &Literal{Value: FloatValue(f)}, nil
		}
	case syntax.STRING, syntax.BYTES:
		if s, ok := v.Value.(string); ok {
			return &Literal{Value: StrValue(s)}, nil
		}
	}
	return nil, fmt.Errorf("unsupported literal %s", v.Raw)
}

func binOp(t syntax.Token) (Operator, error) {
	switch t {
	case syntax.PLUS:
		return OpAdd, nil
	case syntax.MINUS:
		return OpSub, nil
	case syntax.STAR:
		return OpMul, nil
	case syntax.SLASH:
		return OpDiv, nil
	case syntax.SLASHSLASH:
		return OpFloorDiv, nil
	case syntax.PERCENT:
		return OpMod, nil
	case syntax.EQL:
		return OpEq, nil
	case syntax.NEQ:
		return OpNe, nil
	case syntax.LT:
		return OpLt, nil
	case syntax.LE:
		return OpLe, nil
	case syntax.GT:
		return OpGt, nil
	case syntax.GE:
		return OpGe, nil
	case syntax.AND:
		return OpAnd, nil
	case syntax.OR:
		return OpOr, nil
	}
	return 0, fmt.Errorf("unsupported binary operator %s", t)
}

// EndLabel always resolves to the length of the program.
const EndLabel = "end"

// A Builder assembles a Program, resolving symbolic jump labels into
// relative displacements when the program is built.
type Builder struct {
	ops    []pendingOp
	labels map[string]int
}

type pendingOp struct {
	inst  Instruction
	tag   int
	label string // jump label, resolved in Build
}

func NewBuilder() *Builder {
	return &Builder{
		labels: make(map[string]int),
	}
}

// Emit appends an instruction tagged with its index.
func (b *Builder) Emit(inst Instruction) *Builder {
	return b.EmitTagged(inst, len(b.ops))
}

func (b *Builder) EmitTagged(inst Instruction, tag int) *Builder {
	b.ops = append(b.ops, pendingOp{inst: inst, tag: tag})
	return b
}

// EmitJump appends a Condition or Goto whose Target is filled in from label.
func (b *Builder) EmitJump(inst Instruction, label string) *Builder {
	return b.EmitJumpTagged(inst, label, len(b.ops))
}

func (b *Builder) EmitJumpTagged(inst Instruction, label string, tag int) *Builder {
	b.ops = append(b.ops, pendingOp{inst: inst, tag: tag, label: label})
	return b
}

func (b *Builder) NewLabel() string {
	return uuid.NewString()
}

// Label binds name to the next instruction emitted.
func (b *Builder) Label(name string) error {
	if name == EndLabel {
		return fmt.Errorf("label %q is reserved", name)
	}
	if _, ok := b.labels[name]; ok {
		return fmt.Errorf("duplicate label %q", name)
	}
	b.labels[name] = len(b.ops)
	return nil
}

func (b *Builder) mustLabel(name string) {
	if err := b.Label(name); err != nil {
		panic(err)
	}
}

// If emits body guarded by cond.
//
//	if not cond goto end
//	<body>
//	end:
func (b *Builder) If(cond Expr, body func(*Builder)) *Builder {
	end := b.NewLabel()
	b.EmitJump(&Condition{Cond: &Unary{Op: OpNot, X: cond}}, end)
	body(b)
	b.mustLabel(end)
	return b
}

// While emits a pre-tested loop.
//
//	start:
//	if not cond goto end
//	<body>
//	goto start
//	end:
func (b *Builder) While(cond Expr, body func(*Builder)) *Builder {
	start := b.NewLabel()
	end := b.NewLabel()
	b.mustLabel(start)
	b.EmitJump(&Condition{Cond: &Unary{Op: OpNot, X: cond}}, end)
	body(b)
	b.EmitJump(&Goto{}, start)
	b.mustLabel(end)
	return b
}

// Build resolves labels and validates the result.
func (b *Builder) Build() (*Program, error) {
	code := make([]Entry, len(b.ops))
	for i, op := range b.ops {
		inst := op.inst
		if op.label != "" {
			dest, ok := b.labels[op.label]
			if op.label == EndLabel {
				dest, ok = len(b.ops), true
			}
			if !ok {
				return nil, fmt.Errorf("instruction %d: unknown label %q", i, op.label)
			}
			disp := dest - i
			switch in := inst.(type) {
			case *Condition:
				inst = &Condition{Cond: in.Cond, Target: disp}
			case *Goto:
				inst = &Goto{Target: disp}
			default:
				return nil, fmt.Errorf("instruction %d: %s cannot jump to a label", i, inst.Kind())
			}
		}
		code[i] = Entry{Inst: inst, Tag: op.tag}
	}
	p := NewProgram(code)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
