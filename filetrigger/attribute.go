/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filetrigger

import (
	"fmt"
	"strings"
)

// ChangeType is a set of file system changes a trigger reacts to.
type ChangeType uint8

const (
	Created ChangeType = 1 << iota
	Changed
	Deleted
	Renamed

	// AllChanges matches every change type.
	AllChanges = Created | Changed | Deleted | Renamed
)

var changeNames = []struct {
	change ChangeType
	name   string
}{
	{Created, "Created"},
	{Changed, "Changed"},
	{Deleted, "Deleted"},
	{Renamed, "Renamed"},
}

// Has reports whether every change in o is part of c.
func (c ChangeType) Has(o ChangeType) bool {
	return o != 0 && c&o == o
}

func (c ChangeType) String() string {
	if c == 0 {
		return "None"
	}
	var parts []string
	for _, n := range changeNames {
		if c&n.change != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ", ")
}

// ParseChangeTypes parses a comma separated list such as "Created, Changed".
func ParseChangeTypes(s string) (ChangeType, error) {
	var c ChangeType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, n := range changeNames {
			if strings.EqualFold(part, n.name) {
				c |= n.change
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown change type %q", part)
		}
	}
	return c, nil
}

// UnmarshalText lets change types be read from YAML and environment values.
func (c *ChangeType) UnmarshalText(text []byte) error {
	parsed, err := ParseChangeTypes(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Attribute declares a parameter as the trigger of a function: it is bound to the file
// event that started the invocation.
type Attribute struct {
	// Path is "directory/filenamePattern" relative to the listener root, e.g. "import/{name}.csv".
	// The pattern may use {name} captures and * wildcards.
	Path string `yaml:"path" json:"path"`

	// ChangeTypes defaults to Created.
	ChangeTypes ChangeType `yaml:"changeTypes,omitempty" json:"changeTypes,omitempty"`

	// AutoDelete removes the file after a successful invocation.
	AutoDelete bool `yaml:"autoDelete,omitempty" json:"autoDelete,omitempty"`
}

// Changes returns the effective change types.
func (a Attribute) Changes() ChangeType {
	if a.ChangeTypes == 0 {
		return Created
	}
	return a.ChangeTypes
}

// Split returns the directory and file name pattern of Path.
func (a Attribute) Split() (dir, pattern string, err error) {
	path := strings.Trim(strings.ReplaceAll(a.Path, "\\", "/"), "/")
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", fmt.Errorf("path '%s' is invalid; it must be of the form 'directory/filenamePattern'", a.Path)
	}
	dir, pattern = path[:i], path[i+1:]
	for _, segment := range strings.Split(dir, "/") {
		if segment == ".." || strings.ContainsAny(segment, "{}*") {
			return "", "", fmt.Errorf("path '%s' is invalid; the directory may not contain patterns or '..'", a.Path)
		}
	}
	return dir, pattern, nil
}

func fileAttribute(attr any) (Attribute, bool) {
	switch a := attr.(type) {
	case Attribute:
		return a, true
	case *Attribute:
		if a != nil {
			return *a, true
		}
	}
	return Attribute{}, false
}
