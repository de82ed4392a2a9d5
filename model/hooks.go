package model

import (
	"fmt"
	"io"

	"github.com/chironlang/chiron/interp"
	"github.com/gookit/color"
)

// StateDumpHook prints the final program counter, step count and
// environment once the program ends.
func StateDumpHook(w io.Writer) interp.Hook {
	return func(e *interp.Engine) {
		fmt.Fprintln(w, color.Cyan.Sprint("=== Final state ==="))
		fmt.Fprintf(w, "Program counter: %d\n", e.PC())
		fmt.Fprintf(w, "Steps: %d\n", e.Steps())
		fmt.Fprint(w, e.Env.PrettyPrint())
	}
}
