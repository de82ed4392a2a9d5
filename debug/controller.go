// Package debug layers an interactive breakpoint debugger over the
// dispatch engine.
package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/chironlang/chiron/interp"
	"github.com/chironlang/chiron/vm"
	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
)

// Suspension records one stop of the debugger.
type Suspension struct {
	PC   int
	Tag  int
	Kind vm.Kind
}

// Controller pauses an engine before instructions whose tag is a
// breakpoint, or before the next instruction after a step command, and
// reads commands while paused.
type Controller struct {
	Engine *interp.Engine

	// Trace prints the program counter and the instruction before each
	// dispatch.
	Trace bool

	in          *bufio.Scanner
	out         io.Writer
	breakpoints map[int]bool
	stepping    bool
	detached    bool
	history     []Suspension
}

// New creates a controller with a breakpoint on every tag of the engine's
// program.
func New(e *interp.Engine, in io.Reader, out io.Writer) *Controller {
	c := &Controller{
		Engine:      e,
		Trace:       true,
		in:          bufio.NewScanner(in),
		out:         out,
		breakpoints: make(map[int]bool),
	}
	for _, tag := range e.Program.Tags() {
		c.breakpoints[tag] = true
	}
	return c
}

// Run executes the program under the debugger. It follows the engine's
// contract for termination, errors and the end hook.
func (c *Controller) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, color.Bold.Sprint("Entering debugger"))
	return c.Engine.RunWith(ctx, c.checkpoint)
}

func (c *Controller) checkpoint(ctx context.Context, e *interp.Engine, entry vm.Entry) error {
	if c.ShouldSuspend(entry.Tag) {
		c.stepping = false
		if err := c.suspend(ctx, e.PC(), entry); err != nil {
			return err
		}
	}
	if c.Trace {
		fmt.Fprintf(c.out, "Program counter: %d\n", e.PC())
		fmt.Fprintf(c.out, "Executing: %s @ tag %d\n", entry.Inst.Kind(), entry.Tag)
	}
	return nil
}

// ShouldSuspend reports whether the instruction carrying tag would pause
// execution.
func (c *Controller) ShouldSuspend(tag int) bool {
	if c.detached {
		return false
	}
	return c.breakpoints[tag] || c.stepping
}

func (c *Controller) suspend(ctx context.Context, pc int, entry vm.Entry) error {
	c.history = append(c.history, Suspension{PC: pc, Tag: entry.Tag, Kind: entry.Inst.Kind()})
	fmt.Fprintf(c.out, "\n%s %s\n", color.Yellow.Sprintf("Paused at tag %d:", entry.Tag), entry.Inst)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, color.Cyan.Sprint("(debug) "))
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return fmt.Errorf("reading debugger input: %w", err)
			}
			c.detach()
			return nil
		}
		if c.Execute(c.in.Text()) {
			return nil
		}
	}
}

// detach turns the debugger off for the rest of the run once its input is
// exhausted.
func (c *Controller) detach() {
	log.Warn().Int("pc", c.Engine.PC()).Msg("debugger input closed; continuing without breakpoints")
	fmt.Fprintln(c.out)
	c.breakpoints = make(map[int]bool)
	c.stepping = false
	c.detached = true
}

// Breakpoints returns the breakpoint set in ascending tag order.
func (c *Controller) Breakpoints() []int {
	out := make([]int, 0, len(c.breakpoints))
	for tag := range c.breakpoints {
		out = append(out, tag)
	}
	sort.Ints(out)
	return out
}

func (c *Controller) Stepping() bool {
	return c.stepping
}

func (c *Controller) Detached() bool {
	return c.detached
}

// History lists every suspension so far, oldest first.
func (c *Controller) History() []Suspension {
	return c.history
}
