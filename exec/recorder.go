// Package exec records execution traces: the path the program counter
// took and a content-addressed snapshot of the environment after each
// step.
package exec

import (
	"fmt"
	"io"

	"github.com/chironlang/chiron/cas"
	"github.com/chironlang/chiron/interp"
	"github.com/chironlang/chiron/vm"
)

// Step is one dispatched instruction and the environment it left behind.
type Step struct {
	N    int
	PC   int
	Tag  int
	Kind vm.Kind
	Next int
	Env  cas.Hash
}

// Recorder is an interp.Observer that keeps every step of a run.
type Recorder struct {
	store cas.CAS
	steps []Step
}

var _ interp.Observer = (*Recorder)(nil)

// NewRecorder stores snapshots in store, or in a fresh memory store
// behind an LRU cache when store is nil.
func NewRecorder(store cas.CAS) *Recorder {
	if store == nil {
		store = cas.NewLRUCache(cas.NewMemoryCAS(), 0)
	}
	return &Recorder{store: store}
}

func (r *Recorder) Observe(ev interp.StepEvent) error {
	h, err := r.store.Put(ev.Env)
	if err != nil {
		return fmt.Errorf("storing environment: %w", err)
	}
	r.steps = append(r.steps, Step{
		N:    ev.Step,
		PC:   ev.PC,
		Tag:  ev.Tag,
		Kind: ev.Kind,
		Next: ev.Next,
		Env:  h,
	})
	return nil
}

func (r *Recorder) Steps() []Step {
	return r.steps
}

// Trajectory is the sequence of program counters visited, ending with the
// final one.
func (r *Recorder) Trajectory() []int {
	if len(r.steps) == 0 {
		return nil
	}
	out := make([]int, 0, len(r.steps)+1)
	for _, s := range r.steps {
		out = append(out, s.PC)
	}
	return append(out, r.steps[len(r.steps)-1].Next)
}

// Snapshot returns the environment as it was after step i (0-based).
func (r *Recorder) Snapshot(i int) (*interp.Env, error) {
	if i < 0 || i >= len(r.steps) {
		return nil, fmt.Errorf("step %d not recorded", i)
	}
	return cas.Retrieve[interp.Env](r.store, r.steps[i].Env)
}

// DistinctStates counts the distinct environments the run produced.
func (r *Recorder) DistinctStates() int {
	seen := make(map[cas.Hash]bool)
	for _, s := range r.steps {
		seen[s.Env] = true
	}
	return len(seen)
}

func (r *Recorder) Reset() {
	r.steps = nil
}

// WriteTable prints one line per step.
func (r *Recorder) WriteTable(w io.Writer) {
	fmt.Fprintf(w, "%5s %5s %5s  %-11s %5s  %s\n", "step", "pc", "tag", "kind", "next", "env")
	for _, s := range r.steps {
		fmt.Fprintf(w, "%5d %5d %5d  %-11s %5d  %s\n", s.N, s.PC, s.Tag, s.Kind, s.Next, s.Env)
	}
}
