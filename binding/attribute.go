/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding

import (
	"reflect"
)

// Direction says whether a parameter is read from or written to its resource.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// Attribute declares that a parameter is bound to a document collection.
//
// DatabaseName and CollectionName accept %Name% setting tokens. ID, PartitionKey and
// SQLQuery additionally accept {Field} tokens resolved against the trigger payload.
type Attribute struct {
	DatabaseName            string `yaml:"databaseName" json:"databaseName,omitempty"`
	CollectionName          string `yaml:"collectionName" json:"collectionName,omitempty"`
	ID                      string `yaml:"id" json:"id,omitempty"`
	PartitionKey            string `yaml:"partitionKey" json:"partitionKey,omitempty"`
	SQLQuery                string `yaml:"sqlQuery" json:"sqlQuery,omitempty"`
	ConnectionStringSetting string `yaml:"connectionStringSetting" json:"connectionStringSetting,omitempty"`

	// CreateIfNotExists makes output bindings create the collection before the first upsert.
	CreateIfNotExists bool   `yaml:"createIfNotExists" json:"createIfNotExists,omitempty"`
	PartitionKeyPath  string `yaml:"partitionKeyPath" json:"partitionKeyPath,omitempty"`
}

// Parameter is one declared function parameter.
//
// For output parameters Type is the element type and the function receives a *Type slot,
// except for collectors which are handed over as they are.
type Parameter struct {
	Name      string
	Type      reflect.Type
	Direction Direction
	// Attribute is provider specific, e.g. Attribute or filetrigger.Attribute.
	Attribute any
}

// Input declares an input parameter of type T.
func Input[T any](name string, attr any) Parameter {
	return Parameter{Name: name, Type: reflect.TypeFor[T](), Direction: In, Attribute: attr}
}

// Output declares an output parameter of type T.
func Output[T any](name string, attr any) Parameter {
	return Parameter{Name: name, Type: reflect.TypeFor[T](), Direction: Out, Attribute: attr}
}

// documentAttribute extracts a document attribute from a parameter.
func documentAttribute(p Parameter) (Attribute, bool) {
	switch a := p.Attribute.(type) {
	case Attribute:
		return a, true
	case *Attribute:
		if a != nil {
			return *a, true
		}
	}
	return Attribute{}, false
}
