/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package binding turns declared function parameters into document operations.
//
// Indexing happens once per parameter. Build computes the parameter Shape from its Go type,
// runs Classify against the Attribute, compiles the attribute templates and resolves the
// connection string. Any failure there is reported before the function can run.
//
// Supported parameter types:
//
//	string, []byte, json.RawMessage        document body as JSON
//	storagemodels.Document, map[string]any  structured record
//	struct or *struct                       typed document decoded via json tags
//	[]T of the above                        query results (input) or batch upsert (output)
//	datastore.Service                       the raw client, input only
//	*Collector, *AsyncCollector             output sinks
//
// Per invocation the Descriptor renders its templates against the trigger payload,
// fetches the shared service from the ServiceCache and performs the operation:
//
//	SingleRead       point read by id and optional partition key
//	EnumerableQuery  paged query, drained into a fresh slice
//	SingleWriteOut   upsert of whatever the function left in its output slot
//	RawClient        the service itself; nothing is written back automatically
//
// Query results can also be consumed incrementally with Stream:
//
//	for result := range binding.Stream(ctx, svc, collection, query, storagemodels.WithMaxPages(10)) {
//		if result.Error != nil {
//			return result.Error
//		}
//		process(result.Item)
//	}
package binding
