package model

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chironlang/chiron/exec"
	"github.com/chironlang/chiron/interp"
	"github.com/gookit/color"
)

const (
	heavyRule = "================================================================================"
	lightRule = "--------------------------------------------------------------------------------"
)

// FormatRunError formats a failed run for display, including the
// location of the failing instruction and the environment at that point.
func FormatRunError(res *RunResult) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint(heavyRule))
	b.WriteString("\n")
	b.WriteString(color.Red.Sprint("EXECUTION ERROR"))
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint(heavyRule))
	b.WriteString("\n")

	var ee *interp.ExecError
	if errors.As(res.Err, &ee) {
		b.WriteString(color.Bold.Sprint("PC:       "))
		b.WriteString(fmt.Sprintf("%d\n", ee.PC))
		if ee.Tag >= 0 {
			b.WriteString(color.Bold.Sprint("Tag:      "))
			b.WriteString(fmt.Sprintf("%d\n", ee.Tag))
			b.WriteString(color.Bold.Sprint("Kind:     "))
			b.WriteString(color.Yellow.Sprintf("%s\n", ee.Kind))
		}
		b.WriteString(color.Bold.Sprint("Class:    "))
		b.WriteString(fmt.Sprintf("%s\n", errorClass(ee.Err)))
	}
	b.WriteString(color.Bold.Sprint("Message:  "))
	b.WriteString(color.Red.Sprintf("%v\n", res.Err))

	if res.Env != nil {
		b.WriteString(color.Gray.Sprint(lightRule))
		b.WriteString("\n")
		b.WriteString(color.Cyan.Sprint("State at failure:"))
		b.WriteString("\n")
		iw := &indentWriter{w: &b, indent: "  ", atLineStart: true}
		io.WriteString(iw, res.Env.PrettyPrint())
	}
	b.WriteString(color.Gray.Sprint(heavyRule))
	b.WriteString("\n")
	return b.String()
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, interp.ErrOutOfBounds):
		return "out of bounds"
	case errors.Is(err, interp.ErrUnknownKind):
		return "unknown instruction"
	case errors.Is(err, interp.ErrMalformed):
		return "malformed instruction"
	case errors.Is(err, interp.ErrEvaluation):
		return "evaluation"
	case errors.Is(err, interp.ErrStepLimit):
		return "step limit"
	}
	return "other"
}

// FormatStatistics formats run statistics
func FormatStatistics(stats RunStatistics) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Cyan.Sprint("=== Run statistics ==="))
	b.WriteString("\n")
	b.WriteString(color.Bold.Sprint("Instructions in program: "))
	b.WriteString(fmt.Sprintf("%d\n", stats.Instructions))
	b.WriteString(color.Bold.Sprint("Instructions executed: "))
	b.WriteString(fmt.Sprintf("%d\n", stats.Steps))
	if stats.Recorded {
		b.WriteString(color.Bold.Sprint("Distinct states: "))
		b.WriteString(fmt.Sprintf("%d\n", stats.DistinctStates))
	}
	b.WriteString(color.Bold.Sprint("Final program counter: "))
	if stats.FinalPC > stats.Instructions {
		b.WriteString(color.Yellow.Sprintf("%d (overshot)\n", stats.FinalPC))
	} else {
		b.WriteString(fmt.Sprintf("%d\n", stats.FinalPC))
	}
	if stats.Suspensions > 0 || stats.Breakpoints > 0 {
		b.WriteString(color.Bold.Sprint("Debugger suspensions: "))
		b.WriteString(fmt.Sprintf("%d\n", stats.Suspensions))
	}
	return b.String()
}

// FormatTrace writes the recorded steps, then the trajectory. With
// details, each step's environment is retrieved and printed below it.
func FormatTrace(w io.Writer, rec *exec.Recorder, details bool) {
	fmt.Fprintln(w, color.Cyan.Sprint("Execution Trace:"))
	fmt.Fprintln(w, color.Gray.Sprint(lightRule))
	if len(rec.Steps()) == 0 {
		fmt.Fprintln(w, "  (no instructions executed)")
		return
	}
	if !details {
		rec.WriteTable(w)
	} else {
		for i, s := range rec.Steps() {
			fmt.Fprintf(w, "\n  Step %d:\n", s.N)
			fmt.Fprintf(w, "  ├─ PC: %d -> %d\n", s.PC, s.Next)
			fmt.Fprintf(w, "  ├─ Instruction: %s @ tag %d\n", s.Kind, s.Tag)
			env, err := rec.Snapshot(i)
			if err != nil {
				fmt.Fprintf(w, "  └─ State %s (unavailable)\n", s.Env)
				continue
			}
			fmt.Fprintf(w, "  └─ State %s:\n", s.Env)
			iw := &indentWriter{w: w, indent: "     ", atLineStart: true}
			io.WriteString(iw, env.PrettyPrint())
		}
	}
	fmt.Fprintln(w, color.Gray.Sprint(lightRule))
	fmt.Fprintf(w, "Trajectory: %v\n", rec.Trajectory())
}

// indentWriter wraps an io.Writer to add indentation to each line
type indentWriter struct {
	w           io.Writer
	indent      string
	atLineStart bool
}

func (iw *indentWriter) Write(p []byte) (n int, err error) {
	total := 0
	for len(p) > 0 {
		if iw.atLineStart {
			if _, err := io.WriteString(iw.w, iw.indent); err != nil {
				return total, err
			}
			iw.atLineStart = false
		}
		idx := 0
		for idx < len(p) && p[idx] != '\n' {
			idx++
		}
		if idx < len(p) {
			idx++
			iw.atLineStart = true
		}
		written, err := iw.w.Write(p[:idx])
		total += written
		if err != nil {
			return total, err
		}
		p = p[idx:]
	}
	return total, nil
}
