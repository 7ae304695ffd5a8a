/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/entitybind/storagemodels"
)

// Service is a handle on one document store account.
// Implementations must be safe for concurrent use; a single handle is shared
// by every invocation that resolves to the same connection string.
type Service interface {
	// ReadDocument performs a point read. pk is nil when the request carries no partition key.
	ReadDocument(ctx context.Context, address Address, pk *storagemodels.PartitionKey) (storagemodels.Document, error)

	// UpsertDocument inserts or replaces doc in the collection at address.
	UpsertDocument(ctx context.Context, collection Address, doc storagemodels.Document) (storagemodels.Document, error)

	// ReplaceDocument replaces an existing document; it fails with a not found error when absent.
	ReplaceDocument(ctx context.Context, address Address, doc storagemodels.Document) (storagemodels.Document, error)

	// ExecuteQueryPage returns the page following continuation ("" for the first page).
	ExecuteQueryPage(ctx context.Context, collection Address, query storagemodels.QuerySpec, continuation string) (*storagemodels.Page, error)
}

// CollectionCreator is implemented by services able to create a collection on demand.
type CollectionCreator interface {
	EnsureCollection(ctx context.Context, collection Address, partitionKeyPath string) error
}

// ServiceFactory maps a resolved connection string to a Service.
type ServiceFactory interface {
	CreateService(ctx context.Context, connectionString string) (Service, error)
}

// ServiceFactoryFunc adapts a function to ServiceFactory.
type ServiceFactoryFunc func(ctx context.Context, connectionString string) (Service, error)

// CreateService calls f.
func (f ServiceFactoryFunc) CreateService(ctx context.Context, connectionString string) (Service, error) {
	return f(ctx, connectionString)
}
