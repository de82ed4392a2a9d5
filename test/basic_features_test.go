package test

import (
	"context"
	"errors"
	"testing"

	"github.com/chironlang/chiron/interp"
	"github.com/chironlang/chiron/render"
	"github.com/chironlang/chiron/vm"
)

func runLiteral(t *testing.T, code string, params map[string]vm.Value) *interp.Engine {
	t.Helper()
	prog, err := vm.CompileLiteral(code)
	if err != nil {
		t.Fatalf("Compilation failed: %v", err)
	}
	e := interp.New(prog, nil)
	e.InitProgramContext(params)
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Execution failed: %v", err)
	}
	return e
}

func lookup(t *testing.T, e *interp.Engine, name string) vm.Value {
	t.Helper()
	v, ok := e.Env.Lookup(name)
	if !ok {
		t.Fatalf("Variable '%s' not found", name)
	}
	return v
}

// TestSimpleWhileLoop flips a flag inside a loop guarded by it.
func TestSimpleWhileLoop(t *testing.T) {
	code := `
[[inst]]
op = "assign"
var = "x"
expr = "True"

[[inst]]
op = "cond"
label = "top"
expr = "not x"
jump = "end"

[[inst]]
op = "assign"
var = "x"
expr = "False"

[[inst]]
op = "goto"
jump = "top"
`
	e := runLiteral(t, code, nil)
	if x := lookup(t, e, "x"); x != vm.BoolFalse {
		t.Errorf("Expected x to be False, got %v", x)
	}
	if e.Steps() != 5 {
		t.Errorf("Expected 5 steps, got %d", e.Steps())
	}
}

// TestConditionFallsThrough checks that a false condition continues at
// the next instruction.
func TestConditionFallsThrough(t *testing.T) {
	code := `
[[inst]]
op = "cond"
expr = "1 > 2"
target = 2

[[inst]]
op = "assign"
var = "hit"
expr = "True"

[[inst]]
op = "noop"
`
	e := runLiteral(t, code, nil)
	if hit := lookup(t, e, "hit"); hit != vm.BoolTrue {
		t.Errorf("Expected hit to be True, got %v", hit)
	}
}

// TestBackwardGoto counts down with a negative displacement.
func TestBackwardGoto(t *testing.T) {
	code := `
[[inst]]
op = "cond"
expr = "n == 0"
target = 3

[[inst]]
op = "assign"
var = "n"
expr = "n - 1"

[[inst]]
op = "goto"
target = -2
`
	e := runLiteral(t, code, map[string]vm.Value{"n": vm.IntValue(3)})
	if n := lookup(t, e, "n"); n != vm.IntValue(0) {
		t.Errorf("Expected n to be 0, got %v", n)
	}
	if e.PC() != 3 {
		t.Errorf("Expected to finish at pc 3, got %d", e.PC())
	}
}

// TestRangeAndIndex sums an array built with range().
func TestRangeAndIndex(t *testing.T) {
	code := `
[[inst]]
op = "assign"
var = "xs"
expr = "range(1, 6)"

[[inst]]
op = "assign"
var = "i"
expr = "0"

[[inst]]
op = "assign"
var = "sum"
expr = "0"

[[inst]]
op = "cond"
label = "loop"
expr = "i >= len(xs)"
jump = "end"

[[inst]]
op = "assign"
var = "sum"
expr = "sum + xs[i]"

[[inst]]
op = "assign"
var = "i"
expr = "i + 1"

[[inst]]
op = "goto"
jump = "loop"
`
	e := runLiteral(t, code, nil)
	if sum := lookup(t, e, "sum"); sum != vm.IntValue(15) {
		t.Errorf("Expected sum to be 15, got %v", sum)
	}
}

func TestBuiltins(t *testing.T) {
	code := `
[[inst]]
op = "assign"
var = "a"
expr = "abs(-3) + max(1, 7, 4) - min(xs)"

[[inst]]
op = "assign"
var = "b"
expr = 'str(len("turtle")) + "!"'

[[inst]]
op = "assign"
var = "c"
expr = 'int("12") + int(2.9)'

[[inst]]
op = "assign"
var = "d"
expr = "float(3)"
`
	params := map[string]vm.Value{"xs": vm.ArrayValue{vm.IntValue(5), vm.IntValue(2)}}
	e := runLiteral(t, code, params)
	if a := lookup(t, e, "a"); a != vm.IntValue(8) {
		t.Errorf("Expected a to be 8, got %v", a)
	}
	if b := lookup(t, e, "b"); b != vm.StrValue("6!") {
		t.Errorf("Expected b to be \"6!\", got %v", b)
	}
	if c := lookup(t, e, "c"); c != vm.IntValue(14) {
		t.Errorf("Expected c to be 14, got %v", c)
	}
	if d := lookup(t, e, "d"); d != vm.FloatValue(3) {
		t.Errorf("Expected d to be 3.0, got %v", d)
	}
}

// TestAssignmentCopies checks that the environment does not alias the
// caller's params.
func TestAssignmentCopies(t *testing.T) {
	code := `
[[inst]]
op = "assign"
var = "ys"
expr = "xs"
`
	xs := vm.ArrayValue{vm.IntValue(1)}
	e := runLiteral(t, code, map[string]vm.Value{"xs": xs})
	xs[0] = vm.IntValue(99)
	ys := lookup(t, e, "ys").(vm.ArrayValue)
	if ys[0] != vm.IntValue(1) {
		t.Errorf("Expected ys[0] to stay 1, got %v", ys[0])
	}
}

// TestTurtleDrawing checks the moves a drawing program sends to the
// renderer.
func TestTurtleDrawing(t *testing.T) {
	code := `
[[inst]]
op = "pen"
mode = "down"
color = "red"
width = "3"

[[inst]]
op = "move"
dir = "forward"
amount = "side"

[[inst]]
op = "move"
dir = "right"
amount = "90"

[[inst]]
op = "pen"
mode = "up"

[[inst]]
op = "move"
dir = "backward"
amount = "side / 2"
`
	prog, err := vm.CompileLiteral(code)
	if err != nil {
		t.Fatalf("Compilation failed: %v", err)
	}
	rec := render.NewRecorder()
	e := interp.New(prog, rec)
	e.InitProgramContext(map[string]vm.Value{"side": vm.IntValue(40)})
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Execution failed: %v", err)
	}
	if len(rec.Segments) != 1 {
		t.Fatalf("Expected 1 drawn segment, got %d", len(rec.Segments))
	}
	seg := rec.Segments[0]
	if seg.X2 != 40 || seg.Y2 != 0 || seg.Color != "red" || seg.Width != 3 {
		t.Errorf("Unexpected segment %+v", seg)
	}
	if rec.Turtle.Y != 20 {
		t.Errorf("Expected the pen-up move to end at y=20, got %v", rec.Turtle.Y)
	}
	if rec.Message != interp.EndMessage {
		t.Errorf("Expected final message %q, got %q", interp.EndMessage, rec.Message)
	}
}

// TestPenWidthZero checks that an evaluated width of zero reaches the
// drawing instead of keeping the previous width.
func TestPenWidthZero(t *testing.T) {
	code := `
[[inst]]
op = "pen"
mode = "down"
width = "4"

[[inst]]
op = "move"
dir = "forward"
amount = "10"

[[inst]]
op = "pen"
mode = "down"
width = "w - 2"

[[inst]]
op = "move"
dir = "forward"
amount = "10"

[[inst]]
op = "pen"
mode = "down"

[[inst]]
op = "move"
dir = "forward"
amount = "10"
`
	prog, err := vm.CompileLiteral(code)
	if err != nil {
		t.Fatalf("Compilation failed: %v", err)
	}
	rec := render.NewRecorder()
	e := interp.New(prog, rec)
	e.InitProgramContext(map[string]vm.Value{"w": vm.IntValue(2)})
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Execution failed: %v", err)
	}
	if len(rec.Segments) != 3 {
		t.Fatalf("Expected 3 drawn segments, got %d", len(rec.Segments))
	}
	for i, want := range []float64{4, 0, 0} {
		if got := rec.Segments[i].Width; got != want {
			t.Errorf("segment %d: expected width %v, got %v", i, want, got)
		}
	}
}

func TestUnboundVariable(t *testing.T) {
	prog, err := vm.CompileLiteral(`
[[inst]]
op = "assign"
var = "y"
expr = "x + 1"
`)
	if err != nil {
		t.Fatalf("Compilation failed: %v", err)
	}
	e := interp.New(prog, nil)
	err = e.Run(context.Background())
	if !errors.Is(err, interp.ErrMalformed) {
		t.Fatalf("Expected a malformed instruction error, got %v", err)
	}
	if e.Env.Has("y") {
		t.Errorf("y should not be bound after a failed assignment")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"unknown op", "[[inst]]\nop = \"jump\"\n"},
		{"unknown label", "[[inst]]\nop = \"goto\"\njump = \"nowhere\"\n"},
		{"target out of range", "[[inst]]\nop = \"goto\"\ntarget = 5\n"},
		{"bad expression", "[[inst]]\nop = \"assign\"\nvar = \"x\"\nexpr = \"1 +\"\n"},
		{"unknown field", "[[inst]]\nop = \"noop\"\nspeed = 3\n"},
		{"duplicate tag", "[[inst]]\nop = \"noop\"\ntag = 1\n[[inst]]\nop = \"noop\"\ntag = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := vm.CompileLiteral(tt.code); err == nil {
				t.Errorf("Expected compilation to fail")
			}
		})
	}
}
