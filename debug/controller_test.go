package debug

import (
	"bytes"
	"context"
	"strings"

	"github.com/chironlang/chiron/interp"
	"github.com/chironlang/chiron/vm"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func scenario() *vm.Program {
	return vm.NewProgram([]vm.Entry{
		{Inst: &vm.Assign{Var: "x", Value: vm.MustCompileExpr("5")}, Tag: 0},
		{Inst: &vm.Condition{Cond: vm.MustCompileExpr("x > 3"), Target: 2}, Tag: 1},
		{Inst: &vm.NoOp{}, Tag: 2},
		{Inst: &vm.NoOp{}, Tag: 3},
	})
}

func tags(h []Suspension) []int {
	var out []int
	for _, s := range h {
		out = append(out, s.Tag)
	}
	return out
}

var _ = Describe("Controller", func() {
	var (
		engine *interp.Engine
		out    *bytes.Buffer
		hooks  int
	)

	newController := func(input string) *Controller {
		return New(engine, strings.NewReader(input), out)
	}

	BeforeEach(func() {
		engine = interp.New(scenario(), nil)
		out = &bytes.Buffer{}
		hooks = 0
		engine.Hook = func(*interp.Engine) { hooks++ }
	})

	Context("commands", func() {
		var c *Controller

		BeforeEach(func() {
			c = newController("")
		})

		It("should seed a breakpoint on every tag", func() {
			Expect(c.Breakpoints()).To(Equal([]int{0, 1, 2, 3}))
		})

		It("should restore the set after break then remove", func() {
			before := c.Breakpoints()
			Expect(c.Execute("break 5")).To(BeFalse())
			Expect(c.Breakpoints()).To(ContainElement(5))
			Expect(out.String()).To(ContainSubstring("no instruction has tag 5"))
			Expect(c.Execute("remove 5")).To(BeFalse())
			Expect(c.Breakpoints()).To(Equal(before))
		})

		It("should ignore removing an absent breakpoint", func() {
			c.Execute("remove 42")
			Expect(c.Breakpoints()).To(Equal([]int{0, 1, 2, 3}))
		})

		It("should report usage for malformed tags", func() {
			Expect(c.Execute("break five")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring("Usage: break <tag>"))
			Expect(c.Execute("remove")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring("Usage: remove <tag>"))
			Expect(c.Breakpoints()).To(Equal([]int{0, 1, 2, 3}))
		})

		It("should trim whitespace and match case", func() {
			Expect(c.Execute("  continue \n")).To(BeTrue())
			Expect(c.Execute("Continue")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring(`Unknown command "Continue". Type 'help' for help.`))
			Expect(c.Execute("  frobnicate  now ")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring(`Unknown command "frobnicate  now"`))
		})

		It("should accept tabs between a command and its argument", func() {
			Expect(c.Execute("remove\t2")).To(BeFalse())
			Expect(c.Breakpoints()).To(Equal([]int{0, 1, 3}))
			Expect(c.Execute("break\t \t2")).To(BeFalse())
			Expect(c.Breakpoints()).To(Equal([]int{0, 1, 2, 3}))
			engine.Env.Store("y", vm.IntValue(7))
			Expect(c.Execute("print\ty")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring("y = 7"))
			Expect(out.String()).NotTo(ContainSubstring("Unknown command"))
		})

		It("should reject extra arguments", func() {
			Expect(c.Execute("remove 1 2")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring(`Usage: remove <tag> (got "1 2")`))
			Expect(c.Execute("print a b")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring("Usage: print <var>"))
			Expect(c.Execute("continue now")).To(BeFalse())
			Expect(c.Breakpoints()).To(Equal([]int{0, 1, 2, 3}))
		})

		It("should re-prompt silently on empty lines", func() {
			Expect(c.Execute("   ")).To(BeFalse())
			Expect(out.String()).To(BeEmpty())
		})

		It("should set stepping on step", func() {
			Expect(c.Execute("step")).To(BeTrue())
			Expect(c.Stepping()).To(BeTrue())
			c.Execute("remove 2")
			Expect(c.ShouldSuspend(2)).To(BeTrue())
		})

		It("should not fail printing an unbound variable", func() {
			engine.Env.Store("y", vm.IntValue(1))
			Expect(c.Execute("print nope")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring("nope is undefined. Available vars: [y]"))
			Expect(c.Execute("print y")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring("y = 1"))
			Expect(c.Execute("print")).To(BeFalse())
			Expect(out.String()).To(ContainSubstring("Usage: print <var>"))
		})

		It("should print whole values", func() {
			long := make(vm.ArrayValue, 8)
			for i := range long {
				long[i] = vm.IntValue(i)
			}
			engine.Env.Store("xs", long)
			engine.Env.Store("ok", vm.BoolTrue)
			engine.Env.Store("s", vm.StrValue("hi"))
			c.Execute("print xs")
			c.Execute("print ok")
			c.Execute("print s")
			Expect(out.String()).To(ContainSubstring("xs = [0, 1, 2, 3, 4, 5, 6, 7]\n"))
			Expect(out.String()).NotTo(ContainSubstring("more)"))
			Expect(out.String()).To(ContainSubstring("ok = True\n"))
			Expect(out.String()).To(ContainSubstring(`s = "hi"`))
		})

		It("should list breakpoints and show help", func() {
			c.Execute("list")
			Expect(out.String()).To(ContainSubstring("Breakpoints: [0 1 2 3]"))
			c.Execute("help")
			Expect(out.String()).To(ContainSubstring("break <tag>"))
		})
	})

	Context("running", func() {
		It("should pause at every seeded breakpoint on the executed path", func() {
			c := newController("continue\ncontinue\ncontinue\n")
			Expect(c.Run(context.Background())).To(Succeed())

			Expect(tags(c.History())).To(Equal([]int{0, 1, 3}))
			Expect(hooks).To(Equal(1))
			x, ok := engine.Env.Lookup("x")
			Expect(ok).To(BeTrue())
			Expect(x).To(Equal(vm.IntValue(5)))
			Expect(out.String()).To(ContainSubstring("Program counter: 0"))
			Expect(out.String()).To(ContainSubstring("Executing: Assignment @ tag 0"))
			Expect(out.String()).To(ContainSubstring("Executing: Condition @ tag 1"))
		})

		It("should not pause at removed breakpoints", func() {
			c := newController("remove 1\nremove 3\ncontinue\n")
			Expect(c.Run(context.Background())).To(Succeed())
			Expect(tags(c.History())).To(Equal([]int{0}))
		})

		It("should pause at the next instruction after step", func() {
			c := newController("remove 1\nremove 2\nremove 3\nstep\ncontinue\n")
			Expect(c.Run(context.Background())).To(Succeed())
			Expect(tags(c.History())).To(Equal([]int{0, 1}))
			Expect(c.Stepping()).To(BeFalse())
		})

		It("should inspect the environment while paused", func() {
			c := newController("continue\nprint x\ncontinue\ncontinue\n")
			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(ContainSubstring("x = 5"))
		})

		It("should detach when input ends", func() {
			c := newController("")
			Expect(c.Run(context.Background())).To(Succeed())
			Expect(c.Detached()).To(BeTrue())
			Expect(c.Breakpoints()).To(BeEmpty())
			Expect(tags(c.History())).To(Equal([]int{0}))
			Expect(hooks).To(Equal(1))
		})

		It("should keep the engine's fatal error contract", func() {
			engine = interp.New(vm.NewProgram([]vm.Entry{
				{Inst: &vm.Assign{Var: "y", Value: vm.MustCompileExpr("z")}, Tag: 0},
			}), nil)
			engine.Hook = func(*interp.Engine) { hooks++ }
			c := newController("continue\n")
			err := c.Run(context.Background())
			Expect(err).To(MatchError(interp.ErrMalformed))
			Expect(hooks).To(BeZero())
		})

		It("should stop when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			c := newController("continue\n")
			Expect(c.Run(ctx)).To(MatchError(context.Canceled))
			Expect(c.History()).To(BeEmpty())
		})
	})
})
