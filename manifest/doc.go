// Package manifest reads YAML function manifests and registers the declared functions
// on an entitybind.Host. Parameter types are named (document, documents, string, bytes,
// collector, client, event, ...) since a manifest cannot carry Go types.
package manifest
