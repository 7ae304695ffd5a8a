/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// IDField is the document property that carries the document id.
const IDField = "id"

// Document is an opaque structured record as stored in a collection.
type Document map[string]any

// ParseDocument decodes a JSON object into a Document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to parse document: body is not a JSON object")
	}
	return doc, nil
}

// ID returns the document id, or "" when unset.
func (d Document) ID() string {
	if v, ok := d[IDField].(string); ok {
		return v
	}
	return ""
}

// SetID sets the document id.
func (d Document) SetID(id string) {
	d[IDField] = id
}

// ValueAt returns the value found at a slash separated path such as "/customer/region".
func (d Document) ValueAt(path string) (any, bool) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, false
	}
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, "/") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Clone returns a deep copy so stored documents never alias caller memory.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

// JSON returns the JSON encoding of the document.
func (d Document) JSON() string {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(d))
	}
	return string(b)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	}
	return nil, false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneMap(tv)
	case Document:
		return Document(cloneMap(tv))
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// PartitionKey is the value used by the document store to route a document.
// A nil *PartitionKey means "no partition key", which is distinct from a key
// holding an empty value.
type PartitionKey struct {
	value any
}

// NewPartitionKey wraps a single partition key value.
func NewPartitionKey(value any) *PartitionKey {
	return &PartitionKey{value: value}
}

// Value returns the wrapped value.
func (p *PartitionKey) Value() any {
	if p == nil {
		return nil
	}
	return p.value
}

// String returns the wire form of the key, a JSON array such as ["partkey3"].
func (p *PartitionKey) String() string {
	if p == nil {
		return ""
	}
	b, err := json.Marshal([]any{p.value})
	if err != nil {
		return fmt.Sprintf("[%v]", p.value)
	}
	return string(b)
}

// MarshalJSON encodes the key in its wire form.
func (p *PartitionKey) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Value()})
}

// Equal reports whether two keys carry the same wire form.
func (p *PartitionKey) Equal(other *PartitionKey) bool {
	if p == nil || other == nil {
		return p == nil && other == nil
	}
	return p.String() == other.String()
}

// QueryParameter is one named value referenced from a query text, e.g. "@QueueTrigger".
type QueryParameter struct {
	Name  string
	Value any
}

// QuerySpec is a query text plus its ordered parameters.
type QuerySpec struct {
	Text       string
	Parameters []QueryParameter
}

var parameterPattern = regexp.MustCompile(`@[A-Za-z_][A-Za-z0-9_]*`)

// Lookup returns the value bound to a parameter name.
func (q QuerySpec) Lookup(name string) (any, bool) {
	for _, p := range q.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Expand renders the query with every bound parameter replaced by its value.
// Unbound references are left as they are.
func (q QuerySpec) Expand() string {
	if len(q.Parameters) == 0 {
		return q.Text
	}
	return parameterPattern.ReplaceAllStringFunc(q.Text, func(ref string) string {
		if v, ok := q.Lookup(ref); ok {
			return fmt.Sprint(v)
		}
		return ref
	})
}

// ParameterRefs returns every parameter reference in the text, in order of appearance.
func (q QuerySpec) ParameterRefs() []string {
	return parameterPattern.FindAllString(q.Text, -1)
}

// Page is one page of query results.
type Page struct {
	Documents []Document
	// Continuation is empty on the last page.
	Continuation string
}
