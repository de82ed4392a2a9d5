package interp

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chironlang/chiron/vm"
	"github.com/shamaton/msgpack/v2"
)

// Env is the execution environment: the variables a program reads and
// assigns. Only Assignment instructions write to it.
type Env struct {
	Variables map[string]vm.Value
}

// NewEnv seeds an environment from initial parameters. The values are
// copied, so later changes to params do not leak into the run.
func NewEnv(params map[string]vm.Value) *Env {
	e := &Env{Variables: make(map[string]vm.Value, len(params))}
	for k, v := range params {
		e.Variables[k] = v.Clone()
	}
	return e
}

func (e *Env) Lookup(name string) (vm.Value, bool) {
	if e.Variables == nil {
		return nil, false
	}
	v, ok := e.Variables[name]
	return v, ok
}

func (e *Env) Store(name string, value vm.Value) {
	if e.Variables == nil {
		e.Variables = make(map[string]vm.Value)
	}
	e.Variables[name] = value
}

func (e *Env) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// Names returns the bound variable names in sorted order.
func (e *Env) Names() []string {
	keys := make([]string, 0, len(e.Variables))
	for k := range e.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Env) Clone() *Env {
	return NewEnv(e.Variables)
}

// envWire is the serialized form. Entries are in name order so that equal
// environments produce identical bytes.
type envWire struct {
	Names  []string
	Values []vm.Wire
}

func (e *Env) Serialize(w io.Writer) error {
	names := e.Names()
	out := envWire{Names: names, Values: make([]vm.Wire, len(names))}
	for i, k := range names {
		out.Values[i] = vm.ToWire(e.Variables[k])
	}
	return msgpack.MarshalWrite(w, out)
}

func (e *Env) Deserialize(r io.Reader) error {
	var in envWire
	if err := msgpack.UnmarshalRead(r, &in); err != nil {
		return err
	}
	if len(in.Names) != len(in.Values) {
		return fmt.Errorf("environment encoding has %d names and %d values", len(in.Names), len(in.Values))
	}
	e.Variables = make(map[string]vm.Value, len(in.Names))
	for i, k := range in.Names {
		v, err := vm.FromWire(in.Values[i])
		if err != nil {
			return fmt.Errorf("variable %s: %w", k, err)
		}
		e.Variables[k] = v
	}
	return nil
}

// FormatValue formats a vm.Value for display
func FormatValue(v vm.Value) string {
	switch val := v.(type) {
	case vm.IntValue:
		return fmt.Sprintf("%d", val)
	case vm.FloatValue:
		return fmt.Sprintf("%g", val)
	case vm.BoolValue:
		if val {
			return "true"
		}
		return "false"
	case vm.StrValue:
		return fmt.Sprintf("%q", string(val))
	case vm.NoneValue:
		return "None"
	case vm.ArrayValue:
		if len(val) == 0 {
			return "[]"
		}
		var b strings.Builder
		b.WriteString("[")
		for i, elem := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			if i >= 5 {
				fmt.Fprintf(&b, "... (%d more)", len(val)-i)
				break
			}
			b.WriteString(FormatValue(elem))
		}
		b.WriteString("]")
		return b.String()
	case vm.StructValue:
		if len(val) == 0 {
			return "{}"
		}
		var b strings.Builder
		b.WriteString("{")
		for i, k := range val.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			if i >= 5 {
				fmt.Fprintf(&b, "... (%d more)", len(val)-i)
				break
			}
			fmt.Fprintf(&b, "%s: %s", k, FormatValue(val[k]))
		}
		b.WriteString("}")
		return b.String()
	}
	return fmt.Sprintf("<%T>", v)
}

// PrettyPrint lists every variable, one per line, in name order.
func (e *Env) PrettyPrint() string {
	var b strings.Builder
	b.WriteString("Variables:\n")
	names := e.Names()
	if len(names) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, k := range names {
		fmt.Fprintf(&b, "  %s = %s\n", k, FormatValue(e.Variables[k]))
	}
	return b.String()
}
