/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/suparena/entitybind/datastore"
	entityerrors "github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
)

// namespaceExists is the server error code for creating a collection that already exists.
const namespaceExists = 48

// Service implements datastore.Service on a MongoDB deployment. Databases and collections
// map one to one; the document id is stored as _id.
type Service struct {
	client           *mongo.Client
	partitionKeyPath string
	pageSize         int64

	// collection address -> partition key path given to EnsureCollection
	collectionPaths sync.Map
}

// Option configures a Service.
type Option func(*Service)

// WithPartitionKeyPath sets the document path partition keys are matched against, e.g. "/pk".
func WithPartitionKeyPath(path string) Option {
	return func(s *Service) {
		s.partitionKeyPath = path
	}
}

// WithPageSize sets the number of documents returned per query page.
func WithPageSize(size int64) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewService wraps a connected client.
func NewService(client *mongo.Client, opts ...Option) *Service {
	s := &Service{client: client, pageSize: 100}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) collection(address datastore.Address) *mongo.Collection {
	return s.client.Database(address.Database).Collection(address.Collection)
}

// keyPath is the partition key path of the collection at address.
func (s *Service) keyPath(address datastore.Address) string {
	if v, ok := s.collectionPaths.Load(address.CollectionOf().String()); ok {
		return v.(string)
	}
	return s.partitionKeyPath
}

// keyFilter selects a document by id and, when both a key and a key path are known, partition key.
func (s *Service) keyFilter(address datastore.Address, pk *storagemodels.PartitionKey) bson.D {
	filter := bson.D{{Key: idKey, Value: address.ID}}
	if path := s.keyPath(address); pk != nil && path != "" {
		filter = append(filter, bson.E{Key: fieldPath(path), Value: pk.Value()})
	}
	return filter
}

// ReadDocument implements datastore.Service.
func (s *Service) ReadDocument(ctx context.Context, address datastore.Address, pk *storagemodels.PartitionKey) (storagemodels.Document, error) {
	raw, err := s.collection(address).FindOne(ctx, s.keyFilter(address, pk)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entityerrors.NewDocumentNotFoundError(address.String(), pk.String())
		}
		return nil, entityerrors.NewTransportError("FindOne", err)
	}
	return fromStored(raw)
}

// UpsertDocument implements datastore.Service.
func (s *Service) UpsertDocument(ctx context.Context, collection datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	if doc.ID() == "" {
		return nil, entityerrors.NewValidationError("id", "document id is required")
	}
	_, err := s.collection(collection).ReplaceOne(ctx,
		bson.D{{Key: idKey, Value: doc.ID()}},
		toStored(doc),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, entityerrors.NewTransportError("ReplaceOne", err)
	}
	return doc.Clone(), nil
}

// ReplaceDocument implements datastore.Service.
func (s *Service) ReplaceDocument(ctx context.Context, address datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	stored := doc.Clone()
	stored.SetID(address.ID)
	res, err := s.collection(address).ReplaceOne(ctx, bson.D{{Key: idKey, Value: address.ID}}, toStored(stored))
	if err != nil {
		return nil, entityerrors.NewTransportError("ReplaceOne", err)
	}
	if res.MatchedCount == 0 {
		return nil, entityerrors.NewDocumentNotFoundError(address.String(), "")
	}
	return stored, nil
}

// ExecuteQueryPage implements datastore.Service. Results are ordered by _id and the
// continuation is the number of documents already returned.
func (s *Service) ExecuteQueryPage(ctx context.Context, collection datastore.Address, query storagemodels.QuerySpec, continuation string) (*storagemodels.Page, error) {
	filter, err := toFilter(query)
	if err != nil {
		return nil, err
	}
	skip, err := parseContinuation(continuation)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: idKey, Value: 1}}).
		SetSkip(skip).
		SetLimit(s.pageSize + 1)
	cursor, err := s.collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, entityerrors.NewTransportError("Find", err)
	}
	defer cursor.Close(ctx)

	page := &storagemodels.Page{}
	for cursor.Next(ctx) {
		if int64(len(page.Documents)) == s.pageSize {
			page.Continuation = strconv.FormatInt(skip+s.pageSize, 10)
			break
		}
		doc, err := fromStored(cursor.Current)
		if err != nil {
			return nil, err
		}
		page.Documents = append(page.Documents, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, entityerrors.NewTransportError("Find", err)
	}
	return page, nil
}

// EnsureCollection creates the collection, and an index on the partition key path when one is given.
func (s *Service) EnsureCollection(ctx context.Context, collection datastore.Address, partitionKeyPath string) error {
	db := s.client.Database(collection.Database)
	if err := db.CreateCollection(ctx, collection.Collection); err != nil {
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Code != namespaceExists {
			return entityerrors.NewTransportError("CreateCollection", err)
		}
	}
	if partitionKeyPath == "" {
		return nil
	}
	s.collectionPaths.Store(collection.CollectionOf().String(), partitionKeyPath)
	_, err := db.Collection(collection.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: fieldPath(partitionKeyPath), Value: 1}},
	})
	if err != nil {
		return entityerrors.NewTransportError("CreateIndex", err)
	}
	return nil
}

// Ping checks the deployment is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Service) Close() error {
	return s.client.Disconnect(context.Background())
}
