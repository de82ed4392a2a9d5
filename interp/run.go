package interp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Run executes the program to completion.
func (e *Engine) Run(ctx context.Context) error {
	return e.RunWith(ctx, nil)
}

// RunWith executes the program to completion, calling checkpoint before
// every dispatch. ctx is checked between instructions.
func (e *Engine) RunWith(ctx context.Context, checkpoint Checkpoint) error {
	log.Debug().
		Str("run", e.RunID).
		Int("instructions", e.Program.Len()).
		Int("max_steps", e.MaxSteps).
		Msg("RunWith: starting")
	for !e.Done() {
		if err := ctx.Err(); err != nil {
			log.Debug().Str("run", e.RunID).Int("pc", e.pc).Msg("RunWith: cancelled")
			return err
		}
		entry, err := e.Fetch()
		if err != nil {
			return err
		}
		if e.MaxSteps > 0 && e.steps >= e.MaxSteps {
			log.Debug().Str("run", e.RunID).Int("steps", e.steps).Msg("RunWith: step limit")
			return &ExecError{PC: e.pc, Tag: entry.Tag, Kind: kindOf(entry),
				Err: fmt.Errorf("%w after %d instructions", ErrStepLimit, e.steps)}
		}
		if checkpoint != nil {
			if err := checkpoint(ctx, e, entry); err != nil {
				return err
			}
		}
		if err := e.Exec(entry); err != nil {
			return err
		}
	}
	return e.finish(ctx)
}

// finish runs the end-of-program sequence: renderer finalization, the
// hook, then the dismissal wait. It runs at most once per run.
func (e *Engine) finish(ctx context.Context) error {
	if e.finished {
		return nil
	}
	e.finished = true
	if n := e.Program.Len(); e.pc > n {
		log.Warn().Str("run", e.RunID).Int("pc", e.pc).Int("len", n).Msg("program counter overshot the end of the program")
	}
	log.Debug().Str("run", e.RunID).Int("steps", e.steps).Msg("RunWith: finished")
	if err := e.Renderer.Finish(EndMessage); err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	if e.Hook != nil {
		e.Hook(e)
	}
	return e.Renderer.AwaitDismiss(ctx)
}
