/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"
	"sort"
	"strings"
)

// ProviderKey is the connection string key naming the backend, e.g. "Provider=dynamodb".
const ProviderKey = "Provider"

// ConnectionString is a parsed "Key=Value;Key=Value" connection string.
// Keys are matched case-insensitively.
type ConnectionString struct {
	Provider string
	// URI is set instead of the key/value pairs for URI style strings such as mongodb://...
	URI    string
	values map[string]string
}

// ParseConnectionString parses either a URI style string (the scheme becomes the provider)
// or a semicolon separated list of Key=Value pairs carrying a Provider key.
func ParseConnectionString(s string) (ConnectionString, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ConnectionString{}, fmt.Errorf("connection string is empty")
	}

	if scheme, _, ok := strings.Cut(s, "://"); ok && !strings.Contains(scheme, "=") {
		provider := strings.ToLower(scheme)
		if provider == "mongodb+srv" {
			provider = "mongodb"
		}
		return ConnectionString{Provider: provider, URI: s, values: map[string]string{}}, nil
	}

	cs := ConnectionString{values: make(map[string]string)}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return ConnectionString{}, fmt.Errorf("malformed connection string segment %q", part)
		}
		cs.values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	cs.Provider = strings.ToLower(cs.values[strings.ToLower(ProviderKey)])
	if cs.Provider == "" {
		return ConnectionString{}, fmt.Errorf("connection string does not name a %s", ProviderKey)
	}
	return cs, nil
}

// Get returns the value for key.
func (c ConnectionString) Get(key string) (string, bool) {
	v, ok := c.values[strings.ToLower(key)]
	return v, ok
}

// GetOr returns the value for key or def when unset or empty.
func (c ConnectionString) GetOr(key, def string) string {
	if v, ok := c.Get(key); ok && v != "" {
		return v
	}
	return def
}

// Keys returns the parsed keys in sorted order (lower-cased).
func (c ConnectionString) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
