package vm

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrograms(t *testing.T) {
	filepath.WalkDir("../testdata/programs", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		t.Run(name, fileTest(path))
		return nil
	})
}

func fileTest(path string) func(t *testing.T) {
	return func(t *testing.T) {
		p, err := LoadPath(path)
		require.NoError(t, err)
		require.NoError(t, p.Validate())
		p.SetCFG(BuildStaticCFG(p))
		var buf bytes.Buffer
		p.DebugPrint(&buf)
		t.Log(buf.String())
	}
}

func TestCompileExpr(t *testing.T) {
	scope := mapScope{"x": IntValue(7), "s": StrValue("abc"), "f": FloatValue(1.5)}
	cases := []struct {
		src  string
		want Value
	}{
		{"1 + 2 * 3", IntValue(7)},
		{"x // 2", IntValue(3)},
		{"-x // 2", IntValue(-4)},
		{"-7 % 3", IntValue(2)},
		{"x / 2", FloatValue(3.5)},
		{"f * 2", FloatValue(3.0)},
		{"x > 3 and x < 10", BoolTrue},
		{"x > 10 or s", StrValue("abc")},
		{"not x", BoolFalse},
		{"s[1]", StrValue("b")},
		{"s[-1]", StrValue("c")},
		{"s + 'd'", StrValue("abcd")},
		{"x == 'seven'", BoolFalse},
		{"None == None", BoolTrue},
		{"(x + 1) * 2", IntValue(16)},
		{"len(s) + abs(-2)", IntValue(5)},
		{"max(1, x, 3)", IntValue(7)},
		{"min(range(3, 0, -1))", IntValue(1)},
		{"int(f) + float(x)", FloatValue(8)},
		{"str(x) + s", StrValue("7abc")},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			e, err := CompileExpr(c.src)
			require.NoError(t, err)
			v, err := e.Eval(scope)
			require.NoError(t, err)
			assert.Equal(t, c.want, v)
		})
	}
}

func TestCompileExprErrors(t *testing.T) {
	for _, src := range []string{"", "x +", "f(1)", "len(x=1)", "[1, 2]", "lambda: 1", "99999999999999999999999"} {
		_, err := CompileExpr(src)
		assert.Error(t, err, src)
	}
}

func TestEvalErrors(t *testing.T) {
	scope := mapScope{"x": IntValue(1), "s": StrValue("a")}
	t.Run("undefined", func(t *testing.T) {
		_, err := MustCompileExpr("y + 1").Eval(scope)
		require.ErrorIs(t, err, ErrUndefined)
	})
	t.Run("division by zero", func(t *testing.T) {
		_, err := MustCompileExpr("x / 0").Eval(scope)
		require.ErrorIs(t, err, ErrDivisionByZero)
		_, err = MustCompileExpr("x % 0").Eval(scope)
		require.ErrorIs(t, err, ErrDivisionByZero)
	})
	t.Run("type mismatch", func(t *testing.T) {
		_, err := MustCompileExpr("x + s").Eval(scope)
		require.Error(t, err)
		_, err = MustCompileExpr("x < s").Eval(scope)
		require.Error(t, err)
	})
	t.Run("short circuit skips unbound operand", func(t *testing.T) {
		v, err := MustCompileExpr("x or missing").Eval(scope)
		require.NoError(t, err)
		assert.Equal(t, IntValue(1), v)
	})
}

func TestExprStringRecompiles(t *testing.T) {
	for _, src := range []string{"x > 3", "not (a and b)", "-x + 2.0", "p.y[0] // 2", `"hi" + s`, "max(a, len(b))"} {
		e := MustCompileExpr(src)
		again, err := CompileExpr(e.String())
		require.NoError(t, err, e.String())
		assert.Equal(t, e.String(), again.String())
	}
}

func TestFreeVars(t *testing.T) {
	e := MustCompileExpr("a + b[c] > a.d or True")
	assert.Equal(t, []string{"a", "b", "c"}, FreeVars(e))
	assert.Empty(t, FreeVars(MustCompileExpr("1 + 2")))
}

func TestBuilderLabels(t *testing.T) {
	b := NewBuilder()
	b.Emit(&Assign{Var: "i", Value: MustCompileExpr("0")})
	b.While(MustCompileExpr("i < 3"), func(b *Builder) {
		b.Emit(&Move{Dir: Forward, Amount: MustCompileExpr("10")})
		b.Emit(&Assign{Var: "i", Value: MustCompileExpr("i + 1")})
	})
	p, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 5, p.Len())

	cond, ok := p.Code[1].Inst.(*Condition)
	require.True(t, ok)
	assert.Equal(t, 4, cond.Target)
	back, ok := p.Code[4].Inst.(*Goto)
	require.True(t, ok)
	assert.Equal(t, -3, back.Target)
}

func TestBuilderIf(t *testing.T) {
	b := NewBuilder()
	b.Emit(&Assign{Var: "x", Value: MustCompileExpr("5")})
	b.If(MustCompileExpr("x > 3"), func(b *Builder) {
		b.Emit(&Assign{Var: "y", Value: MustCompileExpr("1")})
		b.Emit(&Move{Dir: Forward, Amount: MustCompileExpr("x")})
	})
	b.Emit(&NoOp{})
	p, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 5, p.Len())

	cond, ok := p.Code[1].Inst.(*Condition)
	require.True(t, ok)
	// skips the two body instructions when the guard is false
	assert.Equal(t, 3, cond.Target)
	neg, ok := cond.Cond.(*Unary)
	require.True(t, ok)
	assert.Equal(t, OpNot, neg.Op)
	assert.Equal(t, "(x > 3)", neg.X.String())
	assert.IsType(t, &NoOp{}, p.Code[4].Inst)

	// an If nested in a While resolves its own label
	b = NewBuilder()
	b.While(MustCompileExpr("i < 3"), func(b *Builder) {
		b.If(MustCompileExpr("i == 1"), func(b *Builder) {
			b.Emit(&NoOp{})
		})
		b.Emit(&Assign{Var: "i", Value: MustCompileExpr("i + 1")})
	})
	p, err = b.Build()
	require.NoError(t, err)
	require.Equal(t, 5, p.Len())
	inner, ok := p.Code[1].Inst.(*Condition)
	require.True(t, ok)
	assert.Equal(t, 2, inner.Target)
	outer, ok := p.Code[0].Inst.(*Condition)
	require.True(t, ok)
	assert.Equal(t, 5, outer.Target)
}

func TestBuilderErrors(t *testing.T) {
	b := NewBuilder()
	require.Error(t, b.Label(EndLabel))
	require.NoError(t, b.Label("a"))
	require.Error(t, b.Label("a"))

	b = NewBuilder()
	b.EmitJump(&Goto{}, "nowhere")
	_, err := b.Build()
	require.ErrorContains(t, err, "unknown label")

	b = NewBuilder()
	b.EmitJump(&NoOp{}, EndLabel)
	_, err = b.Build()
	require.ErrorContains(t, err, "cannot jump")
}

func TestLoadText(t *testing.T) {
	t.Run("labels", func(t *testing.T) {
		p, err := LoadPath("../testdata/programs/square.toml")
		require.NoError(t, err)
		require.Equal(t, 7, p.Len())
		assert.Equal(t, 5, p.Code[2].Inst.(*Condition).Target)
		assert.Equal(t, -4, p.Code[6].Inst.(*Goto).Target)
	})
	t.Run("explicit tags", func(t *testing.T) {
		p, err := LoadPath("../testdata/programs/spiral.yaml")
		require.NoError(t, err)
		assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70}, p.Tags())
		pc, ok := p.IndexOf(40)
		require.True(t, ok)
		assert.Equal(t, 3, pc)
		assert.Equal(t, Right, p.Code[4].Inst.(*Move).Dir)
	})
	t.Run("unknown toml key", func(t *testing.T) {
		_, err := CompileLiteral("[[inst]]\nop = \"noop\"\nbogus = 1\n")
		require.ErrorContains(t, err, "bogus")
	})
	t.Run("unknown yaml key", func(t *testing.T) {
		_, err := LoadFile("x.yaml", strings.NewReader("inst:\n  - op: noop\n    bogus: 1\n"), FormatYAML)
		require.Error(t, err)
	})
	t.Run("unknown op", func(t *testing.T) {
		_, err := CompileLiteral("[[inst]]\nop = \"fly\"\n")
		require.ErrorContains(t, err, "fly")
	})
	t.Run("missing target", func(t *testing.T) {
		_, err := CompileLiteral("[[inst]]\nop = \"goto\"\n")
		require.ErrorContains(t, err, "missing target")
	})
	t.Run("target out of range", func(t *testing.T) {
		_, err := CompileLiteral("[[inst]]\nop = \"goto\"\ntarget = 2\n")
		require.ErrorIs(t, err, ErrMalformed)
	})
	t.Run("duplicate tags", func(t *testing.T) {
		_, err := CompileLiteral("[[inst]]\nop = \"noop\"\ntag = 1\n[[inst]]\nop = \"noop\"\ntag = 1\n")
		require.ErrorIs(t, err, ErrMalformed)
	})
	t.Run("bad assignment target", func(t *testing.T) {
		_, err := CompileLiteral("[[inst]]\nop = \"assign\"\nvar = \"1x\"\nexpr = \"2\"\n")
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatForPath("a/b.TOML"))
	assert.Equal(t, FormatYAML, FormatForPath("b.yml"))
	assert.Equal(t, FormatYAML, FormatForPath("b.yaml"))
	assert.Equal(t, FormatBinary, FormatForPath("b.kw"))
}

type mapScope map[string]Value

func (m mapScope) Lookup(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}
