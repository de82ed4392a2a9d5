package debug

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chironlang/chiron/vm"
	"github.com/gookit/color"
)

const helpText = `Commands:
  step            run one instruction, then pause
  continue        run to the next breakpoint
  break <tag>     pause before the instruction with this tag
  remove <tag>    delete a breakpoint
  print <var>     show a variable
  list            show breakpoints
  help            show this text`

// Execute runs one command line and reports whether execution should
// resume. Errors in the command are reported to the output and never
// abort the run.
func (c *Controller) Execute(line string) (resume bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]
	switch {
	case cmd == "continue" && len(args) == 0:
		return true
	case cmd == "step" && len(args) == 0:
		c.stepping = true
		return true
	case cmd == "print":
		c.print(args)
	case cmd == "break":
		tag, ok := c.tagArg("break", args)
		if !ok {
			return false
		}
		c.breakpoints[tag] = true
		fmt.Fprintf(c.out, "Breakpoint set at tag %d\n", tag)
		if _, found := c.Engine.Program.IndexOf(tag); !found {
			fmt.Fprintf(c.out, "  note: no instruction has tag %d\n", tag)
		}
	case cmd == "remove":
		tag, ok := c.tagArg("remove", args)
		if !ok {
			return false
		}
		delete(c.breakpoints, tag)
		fmt.Fprintf(c.out, "Breakpoint removed from tag %d\n", tag)
	case cmd == "list" && len(args) == 0:
		fmt.Fprintf(c.out, "Breakpoints: %v\n", c.Breakpoints())
	case cmd == "help" && len(args) == 0:
		fmt.Fprintln(c.out, helpText)
	default:
		fmt.Fprintln(c.out, color.Red.Sprintf("Unknown command %q. Type 'help' for help.", strings.TrimSpace(line)))
	}
	return false
}

func (c *Controller) print(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: print <var>")
		return
	}
	name := args[0]
	env := c.Engine.Env
	v, ok := env.Lookup(name)
	if !ok {
		fmt.Fprintf(c.out, "%s is undefined. Available vars: %v\n", name, env.Names())
		return
	}
	fmt.Fprintf(c.out, "%s = %s\n", name, vm.Repr(v))
}

func (c *Controller) tagArg(cmd string, args []string) (int, bool) {
	arg := strings.Join(args, " ")
	tag, err := strconv.Atoi(arg)
	if err != nil || len(args) != 1 {
		fmt.Fprintf(c.out, "Usage: %s <tag> (got %q)\n", cmd, arg)
		return 0, false
	}
	return tag, true
}
