package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chironlang/chiron/debug"
	"github.com/chironlang/chiron/exec"
	"github.com/chironlang/chiron/interp"
	"github.com/chironlang/chiron/render"
	"github.com/chironlang/chiron/vm"
	"github.com/rs/zerolog/log"
)

// TerminalPath is where the ESC wait reads keys from.
const TerminalPath = "/dev/tty"

// An Executor is the context and entrypoint for running a program
type Executor struct {
	Program *vm.Program
	Spec    *Spec
	Params  map[string]vm.Value

	Engine   *interp.Engine
	Debugger *debug.Controller
	Recorder *exec.Recorder
	Renderer interp.Renderer

	// In and Out carry the debugger session and the state dump.
	In       io.Reader
	Out      io.Writer
	Reporter Reporter

	closers []io.Closer
}

// RunResult summarizes a completed or failed run. Trajectory is nil
// unless the run was recorded.
type RunResult struct {
	Success    bool
	Err        error
	Env        *interp.Env
	Trajectory []int
	Statistics RunStatistics
}

type RunStatistics struct {
	// Recorded is set when the run kept a trace; DistinctStates is only
	// meaningful then.
	Recorded       bool
	Instructions   int
	Steps          int
	DistinctStates int
	FinalPC        int
	Breakpoints    int
	Suspensions    int
}

// Initialize builds the renderer, engine and, in debug mode, the
// debugger.
func (e *Executor) Initialize() error {
	if e.In == nil {
		e.In = os.Stdin
	}
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Reporter == nil {
		e.Reporter = &SilentReporter{}
	}
	r, err := e.buildRenderer()
	if err != nil {
		return err
	}
	e.Renderer = r

	e.Engine = interp.New(e.Program, r)
	e.Engine.InitProgramContext(e.Params)
	e.Engine.MaxSteps = e.Spec.Run.MaxSteps
	if e.Spec.Run.Hooks {
		e.Engine.Hook = StateDumpHook(e.Out)
	}
	if e.Spec.Run.Record {
		e.Recorder = exec.NewRecorder(nil)
		e.Engine.Observer = e.Recorder
	}
	if e.Spec.Run.Debug {
		e.Debugger = debug.New(e.Engine, e.In, e.Out)
	}
	log.Debug().
		Str("run", e.Engine.RunID).
		Str("program", e.Spec.Run.Program).
		Int("params", len(e.Params)).
		Bool("debug", e.Spec.Run.Debug).
		Msg("Initialize: executor ready")
	return nil
}

func (e *Executor) buildRenderer() (interp.Renderer, error) {
	var dismiss render.Dismisser
	if e.Spec.Run.Wait {
		dismiss = render.KeyDismisser(TerminalPath)
	}
	if e.Spec.Run.SVG == "" {
		h := render.NewHeadless()
		h.Dismiss = dismiss
		return h, nil
	}
	f, err := os.Create(e.Spec.Run.SVG)
	if err != nil {
		return nil, fmt.Errorf("svg: %w", err)
	}
	e.closers = append(e.closers, f)
	s := render.NewSVG(f)
	s.Dismiss = dismiss
	return s, nil
}

// RunModel runs the program to completion. Execution failures are
// reported in the result; the returned error is reserved for setup
// problems.
func (e *Executor) RunModel(ctx context.Context) (*RunResult, error) {
	if e.Engine == nil {
		return nil, errors.New("executor not initialized")
	}
	e.Reporter.Printf("Running %s (%d instructions)\n", e.Spec.Run.Program, e.Program.Len())

	var err error
	if e.Debugger != nil {
		err = e.Debugger.Run(ctx)
	} else {
		err = e.Engine.Run(ctx)
	}
	res := &RunResult{
		Success: err == nil,
		Err:     err,
		Env:     e.Engine.Env,
		Statistics: RunStatistics{
			Instructions: e.Program.Len(),
			Steps:        e.Engine.Steps(),
			FinalPC:      e.Engine.PC(),
		},
	}
	if e.Recorder != nil {
		res.Trajectory = e.Recorder.Trajectory()
		res.Statistics.Recorded = true
		res.Statistics.DistinctStates = e.Recorder.DistinctStates()
	}
	if e.Debugger != nil {
		res.Statistics.Breakpoints = len(e.Debugger.Breakpoints())
		res.Statistics.Suspensions = len(e.Debugger.History())
	}
	if err != nil {
		log.Debug().Err(err).Str("run", e.Engine.RunID).Msg("RunModel: run failed")
	}
	return res, nil
}

// Close releases files opened for the run.
func (e *Executor) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}
