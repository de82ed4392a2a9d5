package interp

import (
	"fmt"

	"github.com/chironlang/chiron/vm"
	"github.com/rs/zerolog/log"
)

// Fetch returns the entry at the current program counter.
func (e *Engine) Fetch() (vm.Entry, error) {
	entry, err := e.Program.At(e.pc)
	if err != nil {
		log.Trace().Int("pc", e.pc).Err(err).Msg("Fetch: out of bounds")
		return vm.Entry{}, &ExecError{PC: e.pc, Tag: -1, Err: err}
	}
	return entry, nil
}

// Step fetches and executes one instruction.
func (e *Engine) Step() error {
	entry, err := e.Fetch()
	if err != nil {
		return err
	}
	return e.Exec(entry)
}

// Exec checks entry, dispatches it to its handler and applies the
// returned displacement. entry must be the one at the current pc.
func (e *Engine) Exec(entry vm.Entry) error {
	if err := e.check(entry); err != nil {
		return e.fail(entry, err)
	}
	disp, err := entry.Inst.Dispatch(e, entry.Tag)
	if err != nil {
		return e.fail(entry, err)
	}
	from := e.pc
	e.pc += disp
	e.steps++
	log.Trace().
		Int("pc", from).
		Int("tag", entry.Tag).
		Str("kind", entry.Inst.Kind().String()).
		Int("disp", disp).
		Int("next", e.pc).
		Msg("Exec: dispatched")
	if e.Observer != nil {
		ev := StepEvent{
			Step: e.steps,
			PC:   from,
			Tag:  entry.Tag,
			Kind: entry.Inst.Kind(),
			Next: e.pc,
			Env:  e.Env,
		}
		if err := e.Observer.Observe(ev); err != nil {
			return &ExecError{PC: from, Tag: entry.Tag, Kind: entry.Inst.Kind(), Err: fmt.Errorf("observer: %w", err)}
		}
	}
	return nil
}

// check is the pre-dispatch sanity check: the instruction must be of a
// known kind, well-formed, and every variable its operands read must be
// bound.
func (e *Engine) check(entry vm.Entry) error {
	if entry.Inst == nil {
		return fmt.Errorf("%w: no instruction", ErrUnknownKind)
	}
	if k := entry.Inst.Kind(); k <= vm.KindInvalid || k >= vm.KindMax {
		return fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	if err := entry.Inst.Validate(); err != nil {
		return err
	}
	for _, name := range vm.FreeVars(entry.Inst.Exprs()...) {
		if !e.Env.Has(name) {
			return fmt.Errorf("%w: %s reads unbound variable %s", ErrMalformed, entry.Inst.Kind(), name)
		}
	}
	return nil
}

func (e *Engine) fail(entry vm.Entry, err error) error {
	log.Trace().Int("pc", e.pc).Int("tag", entry.Tag).Err(err).Msg("Exec: failed")
	return &ExecError{PC: e.pc, Tag: entry.Tag, Kind: kindOf(entry), Err: err}
}

func kindOf(entry vm.Entry) vm.Kind {
	if entry.Inst == nil {
		return vm.KindInvalid
	}
	return entry.Inst.Kind()
}
