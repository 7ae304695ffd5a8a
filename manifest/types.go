/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package manifest

import (
	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/filetrigger"
)

// Manifest declares functions and their parameter bindings.
//
//	version: 1
//	functions:
//	  - name: CopyItem
//	    parameters:
//	      - name: item
//	        type: document
//	        document:
//	          databaseName: ItemDb
//	          collectionName: ItemCollection
//	          id: "{QueueTrigger}"
//	      - name: copy
//	        direction: out
//	        type: document
//	        document:
//	          databaseName: ItemDb
//	          collectionName: ItemCopies
type Manifest struct {
	Version   int        `yaml:"version"`
	Functions []Function `yaml:"functions"`
}

// Function is one declared function.
type Function struct {
	Name       string      `yaml:"name"`
	Parameters []Parameter `yaml:"parameters"`
}

// Parameter is one declared parameter. At most one of Document and File is set.
type Parameter struct {
	Name string `yaml:"name"`
	// Direction is "in" (default) or "out".
	Direction string `yaml:"direction,omitempty"`
	// Type names the parameter type, see Types.
	Type string `yaml:"type"`

	Document *binding.Attribute     `yaml:"document,omitempty"`
	File     *filetrigger.Attribute `yaml:"file,omitempty"`
}
