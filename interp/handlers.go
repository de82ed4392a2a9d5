package interp

import (
	"fmt"

	"github.com/chironlang/chiron/vm"
)

var _ vm.Handler = (*Engine)(nil)

func (e *Engine) HandleAssign(in *vm.Assign, tag int) (int, error) {
	v, err := in.Value.Eval(e.Env)
	if err != nil {
		return 0, evalError(err)
	}
	e.Env.Store(in.Var, v)
	return 1, nil
}

// HandleCondition branches by Target when the condition is truthy.
func (e *Engine) HandleCondition(in *vm.Condition, tag int) (int, error) {
	v, err := in.Cond.Eval(e.Env)
	if err != nil {
		return 0, evalError(err)
	}
	if v.AsBool() {
		return in.Target, nil
	}
	return 1, nil
}

func (e *Engine) HandleMove(in *vm.Move, tag int) (int, error) {
	amount, err := e.number(in.Amount)
	if err != nil {
		return 0, err
	}
	if err := e.Renderer.Move(in.Dir, amount); err != nil {
		return 0, fmt.Errorf("renderer: %w", err)
	}
	return 1, nil
}

func (e *Engine) HandlePen(in *vm.Pen, tag int) (int, error) {
	state := vm.PenState{Mode: in.Mode, Color: in.Color}
	if in.Width != nil {
		w, err := e.number(in.Width)
		if err != nil {
			return 0, err
		}
		if w < 0 {
			return 0, evalError(fmt.Errorf("negative pen width %g", w))
		}
		state.Width, state.HasWidth = w, true
	}
	if err := e.Renderer.Pen(state); err != nil {
		return 0, fmt.Errorf("renderer: %w", err)
	}
	return 1, nil
}

func (e *Engine) HandleGoto(in *vm.Goto, tag int) (int, error) {
	return in.Target, nil
}

func (e *Engine) HandleNoOp(in *vm.NoOp, tag int) (int, error) {
	return 1, nil
}

func (e *Engine) number(x vm.Expr) (float64, error) {
	v, err := x.Eval(e.Env)
	if err != nil {
		return 0, evalError(err)
	}
	switch n := v.(type) {
	case vm.IntValue:
		return float64(n), nil
	case vm.FloatValue:
		return float64(n), nil
	}
	return 0, evalError(fmt.Errorf("%s is %s, want a number", x, vm.TypeName(v)))
}
