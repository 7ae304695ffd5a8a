/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filetrigger

import (
	"io/fs"
	"maps"
	"os"
	"path/filepath"

	"github.com/go-openapi/strfmt"
)

// Event is the payload of a file triggered invocation.
type Event struct {
	// Name is the file name, e.g. "orders.csv".
	Name string `json:"name"`

	// FullPath is the absolute path of the file.
	FullPath string `json:"fullPath"`

	// Path is the file path relative to the listener root, with forward slashes.
	Path string `json:"path"`

	ChangeType ChangeType      `json:"changeType"`
	Time       strfmt.DateTime `json:"time"`

	// Captures holds the values of the {name} captures of the filename pattern.
	Captures map[string]string `json:"captures,omitempty"`
}

// BindingData exposes the event to {Field} templates. Pattern captures are available by
// their own name next to the event fields.
func (e Event) BindingData() map[string]any {
	data := map[string]any{
		"Name":       e.Name,
		"FullPath":   e.FullPath,
		"Path":       e.Path,
		"ChangeType": e.ChangeType.String(),
		"Time":       e.Time.String(),
	}
	for k, v := range e.Captures {
		if _, reserved := data[k]; !reserved {
			data[k] = v
		}
	}
	return data
}

// ReadFile returns the file contents.
func (e Event) ReadFile() ([]byte, error) {
	return os.ReadFile(e.FullPath)
}

// Stat returns the file info.
func (e Event) Stat() (fs.FileInfo, error) {
	return os.Stat(e.FullPath)
}

func newEvent(root, fullPath string, change ChangeType, captures map[string]string, at strfmt.DateTime) Event {
	rel, err := filepath.Rel(root, fullPath)
	if err != nil {
		rel = fullPath
	}
	return Event{
		Name:       filepath.Base(fullPath),
		FullPath:   fullPath,
		Path:       filepath.ToSlash(rel),
		ChangeType: change,
		Time:       at,
		Captures:   maps.Clone(captures),
	}
}
