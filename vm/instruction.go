package vm

import (
	"errors"
	"fmt"
	"strings"
)

// Handler executes one instruction and reports how far the program counter
// moves. There is one method per instruction kind, so adding a kind to the
// set breaks every Handler implementation until it handles the new kind.
type Handler interface {
	HandleAssign(in *Assign, tag int) (int, error)
	HandleCondition(in *Condition, tag int) (int, error)
	HandleMove(in *Move, tag int) (int, error)
	HandlePen(in *Pen, tag int) (int, error)
	HandleGoto(in *Goto, tag int) (int, error)
	HandleNoOp(in *NoOp, tag int) (int, error)
}

// Instruction is one lowered statement. Instructions are immutable once
// built.
type Instruction interface {
	isInstruction()
	Kind() Kind
	// Dispatch calls the Handler method matching the instruction's kind.
	Dispatch(h Handler, tag int) (int, error)
	// Displacements lists every displacement the instruction can produce.
	Displacements() []int
	// Exprs lists the operand expressions, in evaluation order.
	Exprs() []Expr
	// Validate checks operand shapes.
	Validate() error
	String() string
}

var (
	ErrMalformed   = errors.New("malformed instruction")
	ErrUnknownKind = errors.New("unknown instruction kind")
)

// Assign evaluates Value and stores it in Var.
type Assign struct {
	Var   string
	Value Expr
}

func (*Assign) isInstruction() {}
func (*Assign) Kind() Kind       { return KindAssign }
func (in *Assign) Dispatch(h Handler, tag int) (int, error) {
	return h.HandleAssign(in, tag)
}
func (*Assign) Displacements() []int { return []int{1} }
func (in *Assign) Exprs() []Expr     { return []Expr{in.Value} }

func (in *Assign) Validate() error {
	if in.Var == "" {
		return fmt.Errorf("%w: assignment without a variable", ErrMalformed)
	}
	if !isIdent(in.Var) {
		return fmt.Errorf("%w: %q is not a valid variable name", ErrMalformed, in.Var)
	}
	if in.Value == nil {
		return fmt.Errorf("%w: assignment to %s has no expression", ErrMalformed, in.Var)
	}
	return nil
}

func (in *Assign) String() string {
	return fmt.Sprintf("%s := %s", in.Var, exprString(in.Value))
}

// Condition moves the program counter by Target when Cond holds and falls
// through otherwise.
type Condition struct {
	Cond   Expr
	Target int
}

func (*Condition) isInstruction() {}
func (*Condition) Kind() Kind       { return KindCondition }
func (in *Condition) Dispatch(h Handler, tag int) (int, error) {
	return h.HandleCondition(in, tag)
}
func (in *Condition) Displacements() []int { return []int{1, in.Target} }
func (in *Condition) Exprs() []Expr        { return []Expr{in.Cond} }

func (in *Condition) Validate() error {
	if in.Cond == nil {
		return fmt.Errorf("%w: condition has no expression", ErrMalformed)
	}
	return nil
}

func (in *Condition) String() string {
	return fmt.Sprintf("if %s goto %+d", exprString(in.Cond), in.Target)
}

// Move drives the cursor.
type Move struct {
	Dir    Direction
	Amount Expr
}

func (*Move) isInstruction() {}
func (*Move) Kind() Kind       { return KindMove }
func (in *Move) Dispatch(h Handler, tag int) (int, error) {
	return h.HandleMove(in, tag)
}
func (*Move) Displacements() []int { return []int{1} }
func (in *Move) Exprs() []Expr     { return []Expr{in.Amount} }

func (in *Move) Validate() error {
	if !in.Dir.valid() {
		return fmt.Errorf("%w: bad direction %s", ErrMalformed, in.Dir)
	}
	if in.Amount == nil {
		return fmt.Errorf("%w: %s has no amount", ErrMalformed, in.Dir)
	}
	return nil
}

func (in *Move) String() string {
	return fmt.Sprintf("%s %s", in.Dir, exprString(in.Amount))
}

// Pen changes the pen state. Width is optional.
type Pen struct {
	Mode  PenMode
	Color string
	Width Expr
}

func (*Pen) isInstruction() {}
func (*Pen) Kind() Kind       { return KindPen }
func (in *Pen) Dispatch(h Handler, tag int) (int, error) {
	return h.HandlePen(in, tag)
}
func (*Pen) Displacements() []int { return []int{1} }

func (in *Pen) Exprs() []Expr {
	if in.Width == nil {
		return nil
	}
	return []Expr{in.Width}
}

func (in *Pen) Validate() error {
	if !in.Mode.valid() {
		return fmt.Errorf("%w: bad pen mode %s", ErrMalformed, in.Mode)
	}
	if strings.ContainsAny(in.Color, " \t\n") {
		return fmt.Errorf("%w: bad pen color %q", ErrMalformed, in.Color)
	}
	return nil
}

func (in *Pen) String() string {
	var b strings.Builder
	b.WriteString(in.Mode.String())
	if in.Color != "" {
		fmt.Fprintf(&b, " color=%s", in.Color)
	}
	if in.Width != nil {
		fmt.Fprintf(&b, " width=%s", in.Width)
	}
	return b.String()
}

// Goto moves the program counter by Target unconditionally.
type Goto struct {
	Target int
}

func (*Goto) isInstruction() {}
func (*Goto) Kind() Kind       { return KindGoto }
func (in *Goto) Dispatch(h Handler, tag int) (int, error) {
	return h.HandleGoto(in, tag)
}
func (in *Goto) Displacements() []int { return []int{in.Target} }
func (*Goto) Exprs() []Expr           { return nil }
func (*Goto) Validate() error         { return nil }

func (in *Goto) String() string {
	return fmt.Sprintf("goto %+d", in.Target)
}

type NoOp struct{}

func (*NoOp) isInstruction() {}
func (*NoOp) Kind() Kind       { return KindNoOp }
func (in *NoOp) Dispatch(h Handler, tag int) (int, error) {
	return h.HandleNoOp(in, tag)
}
func (*NoOp) Displacements() []int { return []int{1} }
func (*NoOp) Exprs() []Expr        { return nil }
func (*NoOp) Validate() error      { return nil }
func (*NoOp) String() string       { return "noop" }

func exprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
