package interp

import (
	"github.com/chironlang/chiron/vm"
	"github.com/google/uuid"
)

// Engine runs a Program against an Env. It owns the program counter;
// instruction handlers only report displacements.
type Engine struct {
	Program  *vm.Program
	Env      *Env
	Renderer Renderer

	// Hook, when set, is called once after normal termination.
	Hook Hook
	// Observer, when set, sees every completed dispatch.
	Observer Observer
	// MaxSteps aborts the run with ErrStepLimit once that many
	// instructions have been dispatched. Zero means no limit.
	MaxSteps int

	RunID    string
	pc       int
	steps    int
	finished bool
}

// New creates an engine for p. A nil renderer discards drawing.
func New(p *vm.Program, r Renderer) *Engine {
	if r == nil {
		r = nopRenderer{}
	}
	e := &Engine{
		Program:  p,
		Renderer: r,
	}
	e.InitProgramContext(nil)
	return e
}

// InitProgramContext resets the engine to the start of the program with
// an environment seeded from params.
func (e *Engine) InitProgramContext(params map[string]vm.Value) {
	e.Env = NewEnv(params)
	e.RunID = uuid.NewString()
	e.pc = 0
	e.steps = 0
	e.finished = false
}

func (e *Engine) PC() int {
	return e.pc
}

// Steps is the number of instructions dispatched so far.
func (e *Engine) Steps() int {
	return e.steps
}

// Done reports whether the program counter has reached the end.
func (e *Engine) Done() bool {
	return e.pc >= e.Program.Len()
}

// Finished reports whether the end-of-program sequence has run.
func (e *Engine) Finished() bool {
	return e.finished
}
