package interp

import (
	"context"

	"github.com/chironlang/chiron/vm"
)

// EndMessage is shown by the renderer when a program runs to completion.
const EndMessage = "End, Press ESC"

// Renderer receives the drawing side effects of Move and Pen instructions.
// A run owns its renderer; calls are never concurrent.
type Renderer interface {
	Move(dir vm.Direction, amount float64) error
	Pen(state vm.PenState) error
	// Finish is called once when the program counter reaches the end.
	Finish(msg string) error
	// AwaitDismiss blocks until the user dismisses the output or ctx ends.
	AwaitDismiss(ctx context.Context) error
}

// Hook runs once after normal termination, after the renderer has been
// finished and before the dismissal wait.
type Hook func(e *Engine)

// Checkpoint is called before each dispatch with the entry about to run.
// A non-nil error aborts the run.
type Checkpoint func(ctx context.Context, e *Engine, entry vm.Entry) error

// StepEvent describes one completed dispatch.
type StepEvent struct {
	Step int
	PC   int
	Tag  int
	Kind vm.Kind
	Next int
	Env  *Env
}

// Observer is told about every completed dispatch.
type Observer interface {
	Observe(ev StepEvent) error
}

type nopRenderer struct{}

func (nopRenderer) Move(vm.Direction, float64) error { return nil }
func (nopRenderer) Pen(vm.PenState) error { return nil }
func (nopRenderer) Finish(string) error { return nil }
func (nopRenderer) AwaitDismiss(context.Context) error { return nil }
