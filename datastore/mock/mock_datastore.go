/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory document service and a counting service factory for testing
package mock

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
)

// DefaultPageSize is the number of documents returned per page by the default query.
const DefaultPageSize = 100

// ReadCall records one ReadDocument request.
type ReadCall struct {
	Address      datastore.Address
	PartitionKey *storagemodels.PartitionKey
}

// WriteCall records one UpsertDocument or ReplaceDocument request.
type WriteCall struct {
	Address  datastore.Address
	Document storagemodels.Document
}

// QueryCall records one ExecuteQueryPage request.
type QueryCall struct {
	Collection   datastore.Address
	Query        storagemodels.QuerySpec
	Continuation string
}

// QueryFunc produces a canned page for a query request.
type QueryFunc func(ctx context.Context, collection datastore.Address, query storagemodels.QuerySpec, continuation string) (*storagemodels.Page, error)

// ReadFunc produces a canned document for a read request.
type ReadFunc func(ctx context.Context, address datastore.Address, pk *storagemodels.PartitionKey) (storagemodels.Document, error)

// Service is an in-memory implementation of datastore.Service for testing
type Service struct {
	mu               sync.RWMutex
	data             map[string]storagemodels.Document
	partitionKeyPath string
	pageSize         int
	queryFunc        QueryFunc
	readFunc         ReadFunc
	readError        error
	upsertError      error
	replaceError     error
	collections      map[string]string

	reads    []ReadCall
	upserts  []WriteCall
	replaces []WriteCall
	queries  []QueryCall
}

// New creates a new in-memory Service
func New() *Service {
	return &Service{
		data:        make(map[string]storagemodels.Document),
		pageSize:    DefaultPageSize,
		collections: make(map[string]string),
	}
}

// WithPartitionKeyPath sets the document path upserts take their partition key from
func (m *Service) WithPartitionKeyPath(path string) *Service {
	m.partitionKeyPath = path
	return m
}

// WithPageSize sets the page size of the default query
func (m *Service) WithPageSize(size int) *Service {
	if size > 0 {
		m.pageSize = size
	}
	return m
}

// WithQueryFunc sets a custom query function for testing
func (m *Service) WithQueryFunc(f QueryFunc) *Service {
	m.queryFunc = f
	return m
}

// WithReadFunc sets a custom read function for testing
func (m *Service) WithReadFunc(f ReadFunc) *Service {
	m.readFunc = f
	return m
}

// WithReadError makes ReadDocument operations return an error
func (m *Service) WithReadError(err error) *Service {
	m.readError = err
	return m
}

// WithUpsertError makes UpsertDocument operations return an error
func (m *Service) WithUpsertError(err error) *Service {
	m.upsertError = err
	return m
}

// WithReplaceError makes ReplaceDocument operations return an error
func (m *Service) WithReplaceError(err error) *Service {
	m.replaceError = err
	return m
}

// ReadDocument returns the stored document at address
func (m *Service) ReadDocument(ctx context.Context, address datastore.Address, pk *storagemodels.PartitionKey) (storagemodels.Document, error) {
	m.mu.Lock()
	m.reads = append(m.reads, ReadCall{Address: address, PartitionKey: pk})
	readFunc, readErr := m.readFunc, m.readError
	m.mu.Unlock()

	if readErr != nil {
		return nil, readErr
	}
	if readFunc != nil {
		return readFunc(ctx, address, pk)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if pk != nil {
		if doc, ok := m.data[storageKey(address, pk.String())]; ok {
			return doc.Clone(), nil
		}
		return nil, errors.NewDocumentNotFoundError(address.String(), pk.String())
	}

	var found []storagemodels.Document
	prefix := address.String() + "|"
	for k, doc := range m.data {
		if strings.HasPrefix(k, prefix) {
			found = append(found, doc)
		}
	}
	switch len(found) {
	case 0:
		return nil, errors.NewDocumentNotFoundError(address.String(), "")
	case 1:
		return found[0].Clone(), nil
	default:
		return nil, errors.NewValidationError("partitionKey", fmt.Sprintf("read of %s matched %d documents; a partition key is required", address, len(found)))
	}
}

// UpsertDocument stores doc, replacing any document with the same id and partition key
func (m *Service) UpsertDocument(ctx context.Context, collection datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.upserts = append(m.upserts, WriteCall{Address: collection, Document: doc.Clone()})
	if m.upsertError != nil {
		return nil, m.upsertError
	}
	if doc.ID() == "" {
		return nil, errors.NewValidationError("id", "document id is required")
	}

	address := datastore.DocumentAddress(collection.Database, collection.Collection, doc.ID())
	m.data[storageKey(address, m.partitionKeyOf(collection, doc))] = doc.Clone()
	return doc.Clone(), nil
}

// ReplaceDocument replaces an existing document
func (m *Service) ReplaceDocument(ctx context.Context, address datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.replaces = append(m.replaces, WriteCall{Address: address, Document: doc.Clone()})
	if m.replaceError != nil {
		return nil, m.replaceError
	}

	pk := m.partitionKeyOf(address, doc)
	key := storageKey(address, pk)
	if _, exists := m.data[key]; !exists {
		return nil, errors.NewDocumentNotFoundError(address.String(), pk)
	}
	stored := doc.Clone()
	stored.SetID(address.ID)
	m.data[key] = stored
	return stored.Clone(), nil
}

// ExecuteQueryPage returns one page of results
func (m *Service) ExecuteQueryPage(ctx context.Context, collection datastore.Address, query storagemodels.QuerySpec, continuation string) (*storagemodels.Page, error) {
	m.mu.Lock()
	m.queries = append(m.queries, QueryCall{Collection: collection, Query: query, Continuation: continuation})
	queryFunc := m.queryFunc
	m.mu.Unlock()

	if queryFunc != nil {
		return queryFunc(ctx, collection, query, continuation)
	}

	// Default implementation pages through every document of the collection ordered by key
	offset := 0
	if continuation != "" {
		n, err := strconv.Atoi(continuation)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid continuation token %q", continuation)
		}
		offset = n
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := collection.CollectionOf().String() + "/docs/"
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	page := &storagemodels.Page{}
	end := offset + m.pageSize
	for i := offset; i < len(keys) && i < end; i++ {
		page.Documents = append(page.Documents, m.data[keys[i]].Clone())
	}
	if end < len(keys) {
		page.Continuation = strconv.Itoa(end)
	}
	return page, nil
}

// EnsureCollection records the collection and the partition key path its documents are keyed by
func (m *Service) EnsureCollection(ctx context.Context, collection datastore.Address, partitionKeyPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection.CollectionOf().String()] = partitionKeyPath
	return nil
}

// Helper methods for testing

// SetData directly stores documents in a collection (for testing)
func (m *Service) SetData(collection datastore.Address, docs ...storagemodels.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		address := datastore.DocumentAddress(collection.Database, collection.Collection, doc.ID())
		m.data[storageKey(address, m.partitionKeyOf(collection, doc))] = doc.Clone()
	}
}

// Reads returns the recorded read requests
func (m *Service) Reads() []ReadCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ReadCall(nil), m.reads...)
}

// Upserts returns the recorded upsert requests
func (m *Service) Upserts() []WriteCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]WriteCall(nil), m.upserts...)
}

// Replaces returns the recorded replace requests
func (m *Service) Replaces() []WriteCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]WriteCall(nil), m.replaces...)
}

// Queries returns the recorded query requests
func (m *Service) Queries() []QueryCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]QueryCall(nil), m.queries...)
}

// Collections returns the collections passed to EnsureCollection with their partition key paths
func (m *Service) Collections() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.collections))
	for k, v := range m.collections {
		out[k] = v
	}
	return out
}

// Count returns the number of stored documents
func (m *Service) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all data and recorded calls
func (m *Service) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]storagemodels.Document)
	m.reads, m.upserts, m.replaces, m.queries = nil, nil, nil, nil
}

// partitionKeyOf reads the key at the path the collection was created with,
// falling back to the service-wide path.
func (m *Service) partitionKeyOf(collection datastore.Address, doc storagemodels.Document) string {
	path := m.collections[collection.CollectionOf().String()]
	if path == "" {
		path = m.partitionKeyPath
	}
	if path == "" {
		return ""
	}
	v, ok := doc.ValueAt(path)
	if !ok {
		return ""
	}
	return storagemodels.NewPartitionKey(v).String()
}

func storageKey(address datastore.Address, pk string) string {
	return address.String() + "|" + pk
}
