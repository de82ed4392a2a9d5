package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chironlang/chiron/vm"
)

// ParseParams reads the initial environment from arg, which is either a
// JSON object or the path of a .json file holding one. Integral numbers
// become ints.
func ParseParams(arg string) (map[string]vm.Value, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil
	}
	var data []byte
	if strings.HasPrefix(arg, "{") {
		data = []byte(arg)
	} else {
		b, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}
		data = b
	}
	return decodeParams(bytes.NewReader(data))
}

func decodeParams(r io.Reader) (map[string]vm.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	return vm.FromParams(raw)
}

// MergeParams overlays override on base. Neither map is modified.
func MergeParams(base, override map[string]vm.Value) map[string]vm.Value {
	out := make(map[string]vm.Value, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
