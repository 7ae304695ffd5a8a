/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
)

// Settings resolves %Name% tokens. config.Settings satisfies it.
type Settings interface {
	Lookup(name string) (string, bool)
}

// tokenPattern matches {Field.Path} and %SettingName% tokens.
// Anything else, including JSON braces and a bare % in a LIKE clause, is literal text.
var tokenPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_.]*)\}|%([A-Za-z_][A-Za-z0-9_.:\-]*)%`)

type segmentKind int

const (
	literal segmentKind = iota
	field
	setting
)

type segment struct {
	kind segmentKind
	text string // literal text or token name
}

// Template is a compiled attribute string. A nil *Template stands for an attribute that was not set.
type Template struct {
	raw      string
	segments []segment
}

// Compile parses s once so each invocation only renders.
func Compile(s string) (*Template, error) {
	t := &Template{raw: s}
	last := 0
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			t.segments = append(t.segments, segment{kind: literal, text: s[last:m[0]]})
		}
		if m[2] >= 0 {
			name := s[m[2]:m[3]]
			for _, part := range strings.Split(name, ".") {
				if part == "" {
					return nil, errors.NewValidationError(name, fmt.Sprintf("invalid binding expression %q in %q", name, s))
				}
			}
			t.segments = append(t.segments, segment{kind: field, text: name})
		} else {
			t.segments = append(t.segments, segment{kind: setting, text: s[m[4]:m[5]]})
		}
		last = m[1]
	}
	if last < len(s) {
		t.segments = append(t.segments, segment{kind: literal, text: s[last:]})
	}
	return t, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(s string) *Template {
	t, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return t
}

// CompileOptional returns nil for an empty attribute string.
func CompileOptional(s string) (*Template, error) {
	if s == "" {
		return nil, nil
	}
	return Compile(s)
}

// IsSet reports whether the attribute was set.
func (t *Template) IsSet() bool {
	return t != nil
}

func (t *Template) String() string {
	if t == nil {
		return ""
	}
	return t.raw
}

// FieldNames returns the {Field} tokens in order of appearance.
func (t *Template) FieldNames() []string {
	if t == nil {
		return nil
	}
	var names []string
	for _, s := range t.segments {
		if s.kind == field {
			names = append(names, s.text)
		}
	}
	return names
}

// Render substitutes every token with its value. A nil template renders to "".
func (t *Template) Render(payload any, settings Settings) (string, error) {
	if t == nil {
		return "", nil
	}
	data := newBindingData(payload)
	var b strings.Builder
	for _, s := range t.segments {
		switch s.kind {
		case literal:
			b.WriteString(s.text)
		case setting:
			v, err := t.setting(s.text, settings)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		case field:
			v, ok := data.lookup(s.text)
			if !ok {
				return "", errors.NewBindingResolutionError(s.text, t.raw)
			}
			b.WriteString(stringify(v))
		}
	}
	return b.String(), nil
}

// RenderQuery substitutes %Name% tokens literally and turns every {Field} token into a
// named parameter "@Field" (dots become underscores). Parameters are listed in order of first use.
func (t *Template) RenderQuery(payload any, settings Settings) (storagemodels.QuerySpec, error) {
	if t == nil {
		return storagemodels.QuerySpec{}, nil
	}
	data := newBindingData(payload)
	var (
		b    strings.Builder
		spec storagemodels.QuerySpec
		seen = make(map[string]bool)
	)
	for _, s := range t.segments {
		switch s.kind {
		case literal:
			b.WriteString(s.text)
		case setting:
			v, err := t.setting(s.text, settings)
			if err != nil {
				return storagemodels.QuerySpec{}, err
			}
			b.WriteString(v)
		case field:
			v, ok := data.lookup(s.text)
			if !ok {
				return storagemodels.QuerySpec{}, errors.NewBindingResolutionError(s.text, t.raw)
			}
			name := ParameterName(s.text)
			b.WriteString(name)
			if !seen[name] {
				seen[name] = true
				spec.Parameters = append(spec.Parameters, storagemodels.QueryParameter{Name: name, Value: v})
			}
		}
	}
	spec.Text = b.String()
	return spec, nil
}

func (t *Template) setting(name string, settings Settings) (string, error) {
	if settings != nil {
		if v, ok := settings.Lookup(name); ok {
			return v, nil
		}
	}
	return "", errors.NewBindingResolutionError(name, t.raw)
}

// ParameterName returns the query parameter name used for a {Field} token.
func ParameterName(token string) string {
	return "@" + strings.ReplaceAll(token, ".", "_")
}

// Resolve compiles and renders tmpl in one step.
func Resolve(tmpl string, payload any, settings Settings) (string, error) {
	t, err := Compile(tmpl)
	if err != nil {
		return "", err
	}
	return t.Render(payload, settings)
}

func stringify(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case []byte:
		return string(tv)
	case fmt.Stringer:
		return tv.String()
	case map[string]any, []any, storagemodels.Document:
		b, err := json.Marshal(tv)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
