/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suparena/entitybind"
	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/filetrigger"
	"github.com/suparena/entitybind/storagemodels"
)

// CurrentVersion is the manifest format version understood by this package.
const CurrentVersion = 1

var types = map[string]reflect.Type{
	"document":       reflect.TypeFor[storagemodels.Document](),
	"documents":      reflect.TypeFor[[]storagemodels.Document](),
	"object":         reflect.TypeFor[map[string]any](),
	"objects":        reflect.TypeFor[[]map[string]any](),
	"string":         reflect.TypeFor[string](),
	"strings":        reflect.TypeFor[[]string](),
	"bytes":          reflect.TypeFor[[]byte](),
	"json":           reflect.TypeFor[json.RawMessage](),
	"any":            reflect.TypeFor[any](),
	"collector":      reflect.TypeFor[*binding.Collector](),
	"asyncCollector": reflect.TypeFor[*binding.AsyncCollector](),
	"client":         reflect.TypeFor[datastore.Service](),
	"event":          reflect.TypeFor[filetrigger.Event](),
	"fileInfo":       reflect.TypeFor[fs.FileInfo](),
	"int":            reflect.TypeFor[int](),
}

// Types returns the type names a manifest parameter may use.
func Types() []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses a manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest YAML: %w", err)
	}
	if m.Version == 0 {
		return nil, fmt.Errorf("invalid manifest: missing version field")
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("invalid manifest: unsupported version %d", m.Version)
	}
	for i, fn := range m.Functions {
		if fn.Name == "" {
			return nil, fmt.Errorf("invalid manifest: function %d has no name", i)
		}
		for j, p := range fn.Parameters {
			if p.Name == "" {
				return nil, fmt.Errorf("invalid manifest: function %q parameter %d has no name", fn.Name, j)
			}
			if p.Document != nil && p.File != nil {
				return nil, fmt.Errorf("invalid manifest: parameter %s.%s declares both document and file", fn.Name, p.Name)
			}
		}
	}
	return &m, nil
}

// Parameter converts the declaration into a binding.Parameter.
func (p Parameter) Parameter() (binding.Parameter, error) {
	t, ok := types[p.Type]
	if !ok {
		return binding.Parameter{}, fmt.Errorf("parameter %s: unknown type %q", p.Name, p.Type)
	}
	param := binding.Parameter{Name: p.Name, Type: t}
	switch strings.ToLower(p.Direction) {
	case "", "in":
		param.Direction = binding.In
	case "out":
		param.Direction = binding.Out
	default:
		return binding.Parameter{}, fmt.Errorf("parameter %s: unknown direction %q", p.Name, p.Direction)
	}
	switch {
	case p.Document != nil:
		param.Attribute = *p.Document
	case p.File != nil:
		param.Attribute = *p.File
	}
	return param, nil
}

// Noop is the handler used for functions without a registered implementation.
func Noop(context.Context, *entitybind.Call) error {
	return nil
}

// HostFunctions converts the manifest into host functions. handlers maps function names to
// implementations; functions without one get Noop.
func (m *Manifest) HostFunctions(handlers map[string]entitybind.Handler) ([]entitybind.Function, error) {
	out := make([]entitybind.Function, 0, len(m.Functions))
	for _, fn := range m.Functions {
		f := entitybind.Function{Name: fn.Name, Handler: handlers[fn.Name]}
		if f.Handler == nil {
			f.Handler = Noop
		}
		for _, p := range fn.Parameters {
			param, err := p.Parameter()
			if err != nil {
				return nil, fmt.Errorf("function %q: %w", fn.Name, err)
			}
			f.Params = append(f.Params, param)
		}
		out = append(out, f)
	}
	return out, nil
}

// Register registers every function on host. Indexing failures do not stop the others;
// they are returned keyed by function name.
func (m *Manifest) Register(host *entitybind.Host, handlers map[string]entitybind.Handler) (map[string]error, error) {
	functions, err := m.HostFunctions(handlers)
	if err != nil {
		return nil, err
	}
	failures := make(map[string]error)
	for _, fn := range functions {
		if err := host.Register(fn); err != nil {
			failures[fn.Name] = err
		}
	}
	return failures, nil
}
