/*
Package datastore defines the seam between the binding providers and a document store.

The main interface is Service, a handle on one account:

	type Service interface {
	    ReadDocument(ctx context.Context, address Address, pk *storagemodels.PartitionKey) (storagemodels.Document, error)
	    UpsertDocument(ctx context.Context, collection Address, doc storagemodels.Document) (storagemodels.Document, error)
	    ReplaceDocument(ctx context.Context, address Address, doc storagemodels.Document) (storagemodels.Document, error)
	    ExecuteQueryPage(ctx context.Context, collection Address, query storagemodels.QuerySpec, continuation string) (*storagemodels.Page, error)
	}

Services are produced by a ServiceFactory from a resolved connection string. Tests swap
the factory for one that returns the in-memory mock.

Implementations:
  - ddb: DynamoDB single-table implementation with PartiQL queries
  - mongo: MongoDB implementation with extended-JSON filter queries
  - mock: in-memory implementation that records every request shape

Addresses use the canonical form "dbs/{database}/colls/{collection}/docs/{id}".
*/
package datastore
