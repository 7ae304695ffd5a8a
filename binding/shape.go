/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
)

// ShapeKind is the tag of Shape.
type ShapeKind int

const (
	ShapeString ShapeKind = iota
	ShapeRecord
	ShapeTyped
	ShapeEnumerable
	ShapeRawClient
	ShapeCollector
	ShapeAsyncCollector
)

var shapeNames = map[ShapeKind]string{
	ShapeString:         "string",
	ShapeRecord:         "record",
	ShapeTyped:          "typed",
	ShapeEnumerable:     "enumerable",
	ShapeRawClient:      "raw client",
	ShapeCollector:      "collector",
	ShapeAsyncCollector: "async collector",
}

func (k ShapeKind) String() string {
	if s, ok := shapeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// Shape is the supported form of a parameter type, computed once at indexing.
type Shape struct {
	Kind ShapeKind
	Type reflect.Type
	// Elem is the element shape of an enumerable.
	Elem *Shape
}

func (s Shape) String() string {
	if s.Kind == ShapeEnumerable && s.Elem != nil {
		return "enumerable of " + s.Elem.String()
	}
	return s.Kind.String()
}

// IsSingle reports whether the shape holds exactly one document.
func (s Shape) IsSingle() bool {
	switch s.Kind {
	case ShapeString, ShapeRecord, ShapeTyped:
		return true
	}
	return false
}

var (
	documentType       = reflect.TypeFor[storagemodels.Document]()
	mapType            = reflect.TypeFor[map[string]any]()
	bytesType          = reflect.TypeFor[[]byte]()
	rawMessageType     = reflect.TypeFor[json.RawMessage]()
	serviceType        = reflect.TypeFor[datastore.Service]()
	collectorType      = reflect.TypeFor[*Collector]()
	asyncCollectorType = reflect.TypeFor[*AsyncCollector]()
)

// ShapeOf classifies a Go type into one of the supported shapes.
func ShapeOf(t reflect.Type) (Shape, error) {
	if t == nil {
		return Shape{}, errors.NewValidationError("Type", "parameter type is required")
	}
	switch t {
	case collectorType:
		return Shape{Kind: ShapeCollector, Type: t}, nil
	case asyncCollectorType:
		return Shape{Kind: ShapeAsyncCollector, Type: t}, nil
	case serviceType:
		return Shape{Kind: ShapeRawClient, Type: t}, nil
	}
	if single, ok := singleShape(t); ok {
		return single, nil
	}
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		if elem, ok := singleShape(t.Elem()); ok {
			return Shape{Kind: ShapeEnumerable, Type: t, Elem: &elem}, nil
		}
	}
	return Shape{}, errors.NewValidationError("Type", fmt.Sprintf("Can't bind DocumentDBAttribute to type '%s'.", t))
}

func singleShape(t reflect.Type) (Shape, bool) {
	switch {
	case t.Kind() == reflect.String, t == bytesType, t == rawMessageType:
		return Shape{Kind: ShapeString, Type: t}, true
	case t == documentType, t == mapType:
		return Shape{Kind: ShapeRecord, Type: t}, true
	case t.Kind() == reflect.Interface && t.NumMethod() == 0:
		// any: records on input, whatever the function supplies on output
		return Shape{Kind: ShapeRecord, Type: t}, true
	case t.Kind() == reflect.Struct:
		return Shape{Kind: ShapeTyped, Type: t}, true
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return Shape{Kind: ShapeTyped, Type: t}, true
	}
	return Shape{}, false
}
