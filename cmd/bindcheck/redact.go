/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"net/url"
	"strings"

	"github.com/suparena/entitybind/datastore"
)

var secretMarkers = []string{"key", "secret", "password", "token"}

// redact hides credentials in a connection string before it is printed.
func redact(connectionString string) string {
	cs, err := datastore.ParseConnectionString(connectionString)
	if err != nil {
		return "<invalid>"
	}
	if cs.URI != "" {
		u, err := url.Parse(cs.URI)
		if err != nil {
			return "<invalid>"
		}
		if u.User != nil {
			u.User = url.User(u.User.Username())
		}
		return u.Redacted()
	}

	parts := make([]string, 0, len(cs.Keys()))
	for _, k := range cs.Keys() {
		v, _ := cs.Get(k)
		for _, marker := range secretMarkers {
			if strings.Contains(k, marker) {
				v = "***"
				break
			}
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ";")
}
