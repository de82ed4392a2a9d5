package interp

import (
	"errors"
	"fmt"

	"github.com/chironlang/chiron/vm"
)

var (
	ErrOutOfBounds = vm.ErrOutOfBounds
	ErrMalformed   = vm.ErrMalformed
	ErrUnknownKind = vm.ErrUnknownKind
	ErrEvaluation  = errors.New("evaluation failed")
	ErrStepLimit   = errors.New("step limit reached")
)

// ExecError is a fatal execution error, located at the instruction that
// caused it. Tag is -1 when no instruction could be fetched.
type ExecError struct {
	PC   int
	Tag  int
	Kind vm.Kind
	Err  error
}

func (e *ExecError) Error() string {
	if e.Tag < 0 {
		return fmt.Sprintf("pc %d: %v", e.PC, e.Err)
	}
	return fmt.Sprintf("pc %d (tag %d, %s): %v", e.PC, e.Tag, e.Kind, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func evalError(err error) error {
	return fmt.Errorf("%w: %w", ErrEvaluation, err)
}
