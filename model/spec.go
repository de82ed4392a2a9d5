package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chironlang/chiron/vm"
)

// Spec is a run configuration: which program to run and how.
type Spec struct {
	Run    RunDetails     `toml:"run"`
	Params map[string]any `toml:"params,omitempty"`
}

type RunDetails struct {
	Program  string `toml:"program,omitempty"`
	Bin      bool   `toml:"bin,omitempty"`
	Debug    bool   `toml:"debug,omitempty"`
	Hooks    bool   `toml:"hooks,omitempty"`
	MaxSteps int    `toml:"max_steps,omitempty"`
	SVG      string `toml:"svg,omitempty"`
	Wait     bool   `toml:"wait,omitempty"`
	// Record keeps every step and an environment snapshot per step.
	Record bool `toml:"record,omitempty"`
}

func parseSpec(f io.Reader) (*Spec, error) {
	var out Spec
	md, err := toml.NewDecoder(f).Decode(&out)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in run configuration: %v", undecoded)
	}
	return &out, nil
}

// LoadSpecFromFile reads a TOML run configuration. Relative program and
// SVG paths are taken relative to the file. Without a program, the file's
// name with a .toml IR extension is assumed.
func LoadSpecFromFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := parseSpec(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Run.Program == "" {
		base := filepath.Base(path)
		s.Run.Program = strings.TrimSuffix(base, filepath.Ext(base)) + ".ir.toml"
	}
	dir := filepath.Dir(path)
	s.Run.Program = relativeTo(dir, s.Run.Program)
	if s.Run.SVG != "" {
		s.Run.SVG = relativeTo(dir, s.Run.SVG)
	}
	return s, nil
}

func relativeTo(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(dir, p))
}

// LoadProgram loads the configured program.
func (s *Spec) LoadProgram() (*vm.Program, error) {
	if s.Run.Bin {
		return vm.LoadPathAs(s.Run.Program, vm.FormatBinary)
	}
	return vm.LoadPath(s.Run.Program)
}

// BuildExecutor loads the program and converts the params table.
func (s *Spec) BuildExecutor() (*Executor, error) {
	if s.Run.Program == "" {
		return nil, fmt.Errorf("no program given")
	}
	p, err := s.LoadProgram()
	if err != nil {
		return nil, err
	}
	params, err := vm.FromParams(s.Params)
	if err != nil {
		return nil, err
	}
	return &Executor{
		Program: p,
		Spec:    s,
		Params:  params,
	}, nil
}
