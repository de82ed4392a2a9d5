package vm

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Entry pairs an instruction with the tag breakpoints address it by.
type Entry struct {
	Inst Instruction
	Tag  int
}

// Program is the IR container: an ordered instruction sequence indexed by
// program counter, plus an optional control-flow graph.
type Program struct {
	Code []Entry
	CFG  Graph
}

var ErrOutOfBounds = errors.New("program counter out of bounds")

func NewProgram(code []Entry) *Program {
	return &Program{Code: code}
}

func (p *Program) Len() int {
	return len(p.Code)
}

// At fetches the entry at pc, which must lie in [0, Len()).
func (p *Program) At(pc int) (Entry, error) {
	if pc < 0 || pc >= len(p.Code) {
		return Entry{}, fmt.Errorf("%w: pc %d not in [0, %d)", ErrOutOfBounds, pc, len(p.Code))
	}
	return p.Code[pc], nil
}

// Tags returns every tag in the program in ascending order.
func (p *Program) Tags() []int {
	out := make([]int, 0, len(p.Code))
	for _, e := range p.Code {
		out = append(out, e.Tag)
	}
	sort.Ints(out)
	return out
}

// IndexOf returns the program counter of the instruction carrying tag.
func (p *Program) IndexOf(tag int) (int, bool) {
	for i, e := range p.Code {
		if e.Tag == tag {
			return i, true
		}
	}
	return 0, false
}

// SetCFG attaches a control-flow graph. A nil graph detaches it.
func (p *Program) SetCFG(g Graph) {
	p.CFG = g
}

// Validate checks that every instruction is well-formed, tags are unique,
// and every displacement lands in [0, Len()].
func (p *Program) Validate() error {
	n := len(p.Code)
	seen := make(map[int]int, n)
	for i, e := range p.Code {
		if e.Inst == nil {
			return fmt.Errorf("%w: nil instruction at pc %d", ErrMalformed, i)
		}
		if err := e.Inst.Validate(); err != nil {
			return fmt.Errorf("pc %d (tag %d): %w", i, e.Tag, err)
		}
		if prev, ok := seen[e.Tag]; ok {
			return fmt.Errorf("%w: tag %d used at pc %d and pc %d", ErrMalformed, e.Tag, prev, i)
		}
		seen[e.Tag] = i
		for _, d := range e.Inst.Displacements() {
			if dest := i + d; dest < 0 || dest > n {
				return fmt.Errorf("%w: %s at pc %d (tag %d) targets pc %d outside [0, %d]",
					ErrMalformed, e.Inst.Kind(), i, e.Tag, dest, n)
			}
		}
	}
	return nil
}

func (p *Program) DebugPrint(w io.Writer) {
	fmt.Fprintf(w, "*** %d instructions\n", len(p.Code))
	for i, e := range p.Code {
		fmt.Fprintf(w, "  %03d [tag %d]: %s\n", i, e.Tag, e.Inst)
	}
	if p.CFG == nil {
		return
	}
	fmt.Fprintln(w, "*** successors")
	for i := range p.Code {
		fmt.Fprintf(w, "  %03d -> %v\n", i, p.CFG.Successors(i))
	}
}
