/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filetrigger

import (
	"context"
	"fmt"
	"io/fs"
	"reflect"

	"github.com/suparena/entitybind/binding"
	entityerrors "github.com/suparena/entitybind/errors"
)

var (
	eventType    = reflect.TypeFor[Event]()
	eventPtrType = reflect.TypeFor[*Event]()
	stringType   = reflect.TypeFor[string]()
	bytesType    = reflect.TypeFor[[]byte]()
	fileInfoType = reflect.TypeFor[fs.FileInfo]()
)

// Provider binds parameters carrying a filetrigger Attribute.
type Provider struct{}

// NewProvider returns the file trigger binding provider.
func NewProvider() *Provider {
	return &Provider{}
}

// TryCreate implements binding.Provider.
func (p *Provider) TryCreate(param binding.Parameter) (binding.Binding, error) {
	attr, ok := fileAttribute(param.Attribute)
	if !ok {
		return nil, nil
	}
	if param.Direction != binding.In {
		return nil, entityerrors.NewValidationError(param.Name, "FileTriggerAttribute can only be used on input parameters.")
	}
	switch param.Type {
	case eventType, eventPtrType, stringType, bytesType, fileInfoType:
	default:
		return nil, entityerrors.NewValidationError(param.Name, fmt.Sprintf("Can't bind FileTriggerAttribute to type '%s'.", param.Type))
	}

	dir, name, err := attr.Split()
	if err != nil {
		return nil, entityerrors.NewValidationError(param.Name, err.Error())
	}
	pattern, err := CompilePattern(name)
	if err != nil {
		return nil, entityerrors.NewValidationError(param.Name, err.Error())
	}
	return &Binding{param: param, attr: attr, dir: dir, pattern: pattern}, nil
}

// Binding is the trigger binding of one function.
type Binding struct {
	param   binding.Parameter
	attr    Attribute
	dir     string
	pattern *Pattern
}

// Parameter implements binding.Binding.
func (b *Binding) Parameter() binding.Parameter {
	return b.param
}

// Attribute returns the trigger declaration.
func (b *Binding) Attribute() Attribute {
	return b.attr
}

// Dir returns the watched directory, relative to the listener root.
func (b *Binding) Dir() string {
	return b.dir
}

// Pattern returns the compiled filename pattern.
func (b *Binding) Pattern() *Pattern {
	return b.pattern
}

// Bind converts the triggering Event into the parameter type.
func (b *Binding) Bind(_ context.Context, payload any) (binding.Value, error) {
	var event Event
	switch e := payload.(type) {
	case Event:
		event = e
	case *Event:
		if e == nil {
			return nil, fmt.Errorf("parameter %s: nil file event", b.param.Name)
		}
		event = *e
	default:
		return nil, fmt.Errorf("parameter %s: payload %T is not a file event", b.param.Name, payload)
	}

	switch b.param.Type {
	case eventType:
		return value{event}, nil
	case eventPtrType:
		return value{&event}, nil
	case fileInfoType:
		info, err := event.Stat()
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", b.param.Name, err)
		}
		return value{info}, nil
	}

	data, err := event.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", b.param.Name, err)
	}
	if b.param.Type == stringType {
		return value{string(data)}, nil
	}
	return value{data}, nil
}

type value struct {
	v any
}

func (v value) Get() any {
	return v.v
}

func (v value) Complete(context.Context) error {
	return nil
}
