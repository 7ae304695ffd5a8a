/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package template

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// BindingDataProvider is implemented by trigger payloads that publish their own binding data,
// for example a file event exposing the names captured from its path pattern.
type BindingDataProvider interface {
	BindingData() map[string]any
}

// bindingData answers {Field} lookups against one trigger payload.
type bindingData struct {
	scalar  bool
	value   any
	records map[string]any
}

func newBindingData(payload any) bindingData {
	if payload == nil {
		return bindingData{records: map[string]any{}}
	}
	if m, ok := toRecord(payload); ok {
		return bindingData{records: m}
	}
	return bindingData{scalar: true, value: payload}
}

// lookup resolves a dotted path. A scalar payload answers any single unqualified name.
func (d bindingData) lookup(path string) (any, bool) {
	parts := strings.Split(path, ".")
	if d.scalar {
		if len(parts) == 1 {
			return d.value, true
		}
		return nil, false
	}

	var cur any = d.records
	for _, part := range parts {
		m, ok := toRecord(cur)
		if !ok {
			return nil, false
		}
		cur, ok = lookupField(m, part)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// lookupField matches exactly first, then case-insensitively.
func lookupField(m map[string]any, name string) (any, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// toRecord converts structured payloads into a map. Scalars report false.
func toRecord(v any) (map[string]any, bool) {
	if p, ok := v.(BindingDataProvider); ok {
		return p.BindingData(), true
	}
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		out := make(map[string]any)
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "json",
			Result:  &out,
		})
		if err != nil {
			return nil, false
		}
		if err := dec.Decode(rv.Interface()); err != nil {
			return nil, false
		}
		return out, true
	}
	return nil, false
}
