package vm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of an IR file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
	FormatBinary
)

// FormatForPath picks a format from the file extension. Unknown extensions
// are treated as binary IR.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatBinary
}

// SourceFile is the textual IR document.
type SourceFile struct {
	Inst []SourceInst `toml:"inst" yaml:"inst"`
}

// SourceInst is one instruction of the textual IR. Which fields apply
// depends on Op.
type SourceInst struct {
	Op     string `toml:"op" yaml:"op"`
	Tag    *int   `toml:"tag,omitempty" yaml:"tag,omitempty"`
	Label  string `toml:"label,omitempty" yaml:"label,omitempty"`
	Var    string `toml:"var,omitempty" yaml:"var,omitempty"`
	Expr   string `toml:"expr,omitempty" yaml:"expr,omitempty"`
	Target *int   `toml:"target,omitempty" yaml:"target,omitempty"`
	Jump   string `toml:"jump,omitempty" yaml:"jump,omitempty"`
	Dir    string `toml:"dir,omitempty" yaml:"dir,omitempty"`
	Amount string `toml:"amount,omitempty" yaml:"amount,omitempty"`
	Mode   string `toml:"mode,omitempty" yaml:"mode,omitempty"`
	Color  string `toml:"color,omitempty" yaml:"color,omitempty"`
	Width  string `toml:"width,omitempty" yaml:"width,omitempty"`
}

// LoadPath loads an IR file in the format its extension implies.
func LoadPath(path string) (*Program, error) {
	return LoadPathAs(path, FormatForPath(path))
}

func LoadPathAs(path string, format Format) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := LoadFile(path, f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func LoadFile(name string, r io.Reader, format Format) (*Program, error) {
	if format == FormatBinary {
		return LoadBinary(r)
	}
	src, err := decodeSource(r, format)
	if err != nil {
		return nil, err
	}
	return src.Compile()
}

func decodeSource(r io.Reader, format Format) (*SourceFile, error) {
	var src SourceFile
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&src)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) != 0 {
			return nil, fmt.Errorf("unknown keys in IR: %v", undecoded)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&src); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("format %d is not a text format", format)
	}
	return &src, nil
}

// CompileLiteral builds a program from TOML IR text.
func CompileLiteral(code string) (*Program, error) {
	return LoadFile("literal", strings.NewReader(code), FormatTOML)
}

// Compile lowers the document into a validated Program.
func (s *SourceFile) Compile() (*Program, error) {
	b := NewBuilder()
	for i, si := range s.Inst {
		if si.Label != "" {
			if err := b.Label(si.Label); err != nil {
				return nil, fmt.Errorf("inst %d: %w", i, err)
			}
		}
		inst, err := si.instruction()
		if err != nil {
			return nil, fmt.Errorf("inst %d (%s): %w", i, si.Op, err)
		}
		tag := i
		if si.Tag != nil {
			tag = *si.Tag
		}
		if si.Jump != "" {
			b.EmitJumpTagged(inst, si.Jump, tag)
		} else {
			b.EmitTagged(inst, tag)
		}
	}
	return b.Build()
}

func (si SourceInst) instruction() (Instruction, error) {
	kind, err := ParseKind(si.Op)
	if err != nil {
		return nil, err
	}
	if si.Jump != "" && si.Target != nil {
		return nil, fmt.Errorf("both target and jump given")
	}
	switch kind {
	case KindAssign:
		e, err := compileField("expr", si.Expr)
		if err != nil {
			return nil, err
		}
		return &Assign{Var: si.Var, Value: e}, nil
	case KindCondition:
		e, err := compileField("expr", si.Expr)
		if err != nil {
			return nil, err
		}
		target, err := si.target()
		if err != nil {
			return nil, err
		}
		return &Condition{Cond: e, Target: target}, nil
	case KindMove:
		dir, err := ParseDirection(si.Dir)
		if err != nil {
			return nil, err
		}
		amount, err := compileField("amount", si.Amount)
		if err != nil {
			return nil, err
		}
		return &Move{Dir: dir, Amount: amount}, nil
	case KindPen:
		mode, err := ParsePenMode(si.Mode)
		if err != nil {
			return nil, err
		}
		pen := &Pen{Mode: mode, Color: si.Color}
		if si.Width != "" {
			pen.Width, err = CompileExpr(si.Width)
			if err != nil {
				return nil, fmt.Errorf("width: %w", err)
			}
		}
		return pen, nil
	case KindGoto:
		target, err := si.target()
		if err != nil {
			return nil, err
		}
		return &Goto{Target: target}, nil
	case KindNoOp:
		return &NoOp{}, nil
	}
	return nil, fmt.Errorf("unhandled op %q", si.Op)
}

// target returns the literal displacement; a label jump is resolved later
// by the Builder.
func (si SourceInst) target() (int, error) {
	switch {
	case si.Target != nil:
		return *si.Target, nil
	case si.Jump != "":
		return 0, nil
	}
	return 0, fmt.Errorf("missing target or jump")
}

func compileField(name, src string) (Expr, error) {
	if src == "" {
		return nil, fmt.Errorf("missing %s", name)
	}
	e, err := CompileExpr(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return e, nil
}
