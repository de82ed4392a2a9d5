package vm

import (
	"fmt"
	"io"

	"github.com/shamaton/msgpack/v2"
)

// BinaryVersion is bumped whenever the record layout changes.
const BinaryVersion = 1

type binaryFile struct {
	Version int      `msgpack:"v"`
	Code    []record `msgpack:"code"`
}

// record is the flat encoding of one Entry. Expressions travel as source
// text and are recompiled on load.
type record struct {
	Kind   uint8  `msgpack:"k"`
	Tag    int    `msgpack:"t"`
	Var    string `msgpack:"var,omitempty"`
	Expr   string `msgpack:"e,omitempty"`
	Target int    `msgpack:"j,omitempty"`
	Dir    uint8  `msgpack:"d,omitempty"`
	Mode   uint8  `msgpack:"m,omitempty"`
	Color  string `msgpack:"c,omitempty"`
	Width  string `msgpack:"w,omitempty"`
}

// DumpBinary writes p in the msgpack IR format read by LoadBinary.
func DumpBinary(w io.Writer, p *Program) error {
	out := binaryFile{Version: BinaryVersion, Code: make([]record, 0, len(p.Code))}
	rw := &recordWriter{}
	for i, e := range p.Code {
		if _, err := e.Inst.Dispatch(rw, e.Tag); err != nil {
			return fmt.Errorf("pc %d: %w", i, err)
		}
		out.Code = append(out.Code, rw.rec)
	}
	return msgpack.MarshalWrite(w, out)
}

func LoadBinary(r io.Reader) (*Program, error) {
	var in binaryFile
	if err := msgpack.UnmarshalRead(r, &in); err != nil {
		return nil, err
	}
	if in.Version != BinaryVersion {
		return nil, fmt.Errorf("unsupported IR version %d", in.Version)
	}
	code := make([]Entry, 0, len(in.Code))
	for i, rec := range in.Code {
		inst, err := rec.instruction()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		code = append(code, Entry{Inst: inst, Tag: rec.Tag})
	}
	p := NewProgram(code)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (rec record) instruction() (Instruction, error) {
	switch Kind(rec.Kind) {
	case KindAssign:
		e, err := CompileExpr(rec.Expr)
		if err != nil {
			return nil, err
		}
		return &Assign{Var: rec.Var, Value: e}, nil
	case KindCondition:
		e, err := CompileExpr(rec.Expr)
		if err != nil {
			return nil, err
		}
		return &Condition{Cond: e, Target: rec.Target}, nil
	case KindMove:
		e, err := CompileExpr(rec.Expr)
		if err != nil {
			return nil, err
		}
		return &Move{Dir: Direction(rec.Dir), Amount: e}, nil
	case KindPen:
		pen := &Pen{Mode: PenMode(rec.Mode), Color: rec.Color}
		if rec.Width != "" {
			e, err := CompileExpr(rec.Width)
			if err != nil {
				return nil, err
			}
			pen.Width = e
		}
		return pen, nil
	case KindGoto:
		return &Goto{Target: rec.Target}, nil
	case KindNoOp:
		return &NoOp{}, nil
	}
	return nil, fmt.Errorf("%w: kind %d", ErrUnknownKind, rec.Kind)
}

// recordWriter flattens instructions; it never moves a program counter.
type recordWriter struct {
	rec record
}

func (rw *recordWriter) HandleAssign(in *Assign, tag int) (int, error) {
	rw.rec = record{Kind: uint8(KindAssign), Tag: tag, Var: in.Var, Expr: in.Value.String()}
	return 0, nil
}

func (rw *recordWriter) HandleCondition(in *Condition, tag int) (int, error) {
	rw.rec = record{Kind: uint8(KindCondition), Tag: tag, Expr: in.Cond.String(), Target: in.Target}
	return 0, nil
}

func (rw *recordWriter) HandleMove(in *Move, tag int) (int, error) {
	rw.rec = record{Kind: uint8(KindMove), Tag: tag, Dir: uint8(in.Dir), Expr: in.Amount.String()}
	return 0, nil
}

func (rw *recordWriter) HandlePen(in *Pen, tag int) (int, error) {
	rw.rec = record{Kind: uint8(KindPen), Tag: tag, Mode: uint8(in.Mode), Color: in.Color}
	if in.Width != nil {
		rw.rec.Width = in.Width.String()
	}
	return 0, nil
}

func (rw *recordWriter) HandleGoto(in *Goto, tag int) (int, error) {
	rw.rec = record{Kind: uint8(KindGoto), Tag: tag, Target: in.Target}
	return 0, nil
}

func (rw *recordWriter) HandleNoOp(_ *NoOp, tag int) (int, error) {
	rw.rec = record{Kind: uint8(KindNoOp), Tag: tag}
	return 0, nil
}
