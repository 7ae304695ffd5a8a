/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/suparena/entitybind/storagemodels"
)

// ToDocument converts one output item into a document. Strings and byte slices are
// parsed as JSON bodies; structs are encoded through their json tags.
func ToDocument(item any) (storagemodels.Document, error) {
	switch v := item.(type) {
	case nil:
		return nil, fmt.Errorf("cannot convert nil to a document")
	case storagemodels.Document:
		return v.Clone(), nil
	case map[string]any:
		return storagemodels.Document(v).Clone(), nil
	case string:
		return storagemodels.ParseDocument([]byte(v))
	case []byte:
		return storagemodels.ParseDocument(v)
	case json.RawMessage:
		return storagemodels.ParseDocument(v)
	}

	rv := reflect.ValueOf(item)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, fmt.Errorf("cannot convert nil %T to a document", item)
	}
	b, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T as a document: %w", item, err)
	}
	return storagemodels.ParseDocument(b)
}

func expand(item any) []any {
	switch item.(type) {
	case string, []byte, json.RawMessage, storagemodels.Document, map[string]any:
		return []any{item}
	}
	return toItems(reflect.ValueOf(item))
}

// toItems flattens an output value into the items to upsert, in order.
// A zero value yields no items.
func toItems(v reflect.Value) []any {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		if v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Struct {
			break
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.IsZero() {
		return nil
	}
	switch v.Type() {
	case bytesType, rawMessageType:
		return []any{v.Interface()}
	}
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		items := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			items = append(items, toItems(v.Index(i))...)
		}
		return items
	}
	return []any{v.Interface()}
}

// fromDocument converts a read document into a value of the given single shape.
func fromDocument(doc storagemodels.Document, shape Shape) (reflect.Value, error) {
	switch shape.Kind {
	case ShapeString:
		body := doc.JSON()
		switch shape.Type {
		case bytesType, rawMessageType:
			return reflect.ValueOf([]byte(body)).Convert(shape.Type), nil
		}
		return reflect.ValueOf(body).Convert(shape.Type), nil
	case ShapeRecord:
		return reflect.ValueOf(doc).Convert(shape.Type), nil
	case ShapeTyped:
		b, err := json.Marshal(doc)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("failed to encode document: %w", err)
		}
		target := shape.Type
		isPtr := target.Kind() == reflect.Pointer
		if isPtr {
			target = target.Elem()
		}
		out := reflect.New(target)
		if err := json.Unmarshal(b, out.Interface()); err != nil {
			return reflect.Value{}, fmt.Errorf("failed to decode document into %s: %w", shape.Type, err)
		}
		if isPtr {
			return out, nil
		}
		return out.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert a document to %s", shape)
}
