/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/storagemodels"
)

// Request is a binding attribute after template resolution.
type Request struct {
	Database   string
	Collection string
	ID         string
	// PartitionKey is nil when the attribute sets none.
	PartitionKey *storagemodels.PartitionKey
	Query        storagemodels.QuerySpec
}

// CollectionAddress returns the address of the requested collection.
func (r Request) CollectionAddress() datastore.Address {
	return datastore.CollectionAddress(r.Database, r.Collection)
}

// DocumentAddress returns the address of the requested document.
func (r Request) DocumentAddress() datastore.Address {
	return datastore.DocumentAddress(r.Database, r.Collection, r.ID)
}

// Read performs the point read of a SingleRead binding.
func Read(ctx context.Context, svc datastore.Service, req Request) (storagemodels.Document, error) {
	doc, err := svc.ReadDocument(ctx, req.DocumentAddress(), req.PartitionKey)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Stream runs a query in the background and delivers every document on the returned
// channel, following continuation tokens until the last page. The channel is closed
// when the query is exhausted, fails or ctx is cancelled. A failed page is delivered
// as a result carrying only an Error, after which the stream ends.
func Stream(ctx context.Context, svc datastore.Service, collection datastore.Address, query storagemodels.QuerySpec, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[storagemodels.Document] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.BufferSize < 0 {
		options.BufferSize = 0
	}

	resultCh := make(chan storagemodels.StreamResult[storagemodels.Document], options.BufferSize)
	go streamWorker(ctx, svc, collection, query, options, resultCh)
	return resultCh
}

func streamWorker(
	ctx context.Context,
	svc datastore.Service,
	collection datastore.Address,
	query storagemodels.QuerySpec,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[storagemodels.Document],
) {
	defer close(resultCh)

	var (
		itemIndex    int64
		pageNumber   int
		continuation string
		startTime    = time.Now()
	)

	reportProgress := func() {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			Continuation:   continuation,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(itemIndex) / elapsed
		}
		options.ProgressHandler(progress)
	}

	for {
		if ctx.Err() != nil {
			return
		}

		page, err := svc.ExecuteQueryPage(ctx, collection, query, continuation)
		if err != nil {
			select {
			case <-ctx.Done():
			case resultCh <- storagemodels.StreamResult[storagemodels.Document]{
				Error: fmt.Errorf("query page %d failed: %w", pageNumber+1, err),
				Meta: storagemodels.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber + 1,
					Timestamp:  time.Now(),
				},
			}:
			}
			return
		}
		pageNumber++

		for _, doc := range page.Documents {
			result := storagemodels.StreamResult[storagemodels.Document]{
				Item: doc,
				Meta: storagemodels.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			}
			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}
			itemIndex++
		}

		continuation = page.Continuation
		reportProgress()

		if continuation == "" {
			return
		}
		if options.MaxPages > 0 && pageNumber >= options.MaxPages {
			return
		}
	}
}

// Query drains Stream into a slice. Each call issues a fresh query.
func Query(ctx context.Context, svc datastore.Service, collection datastore.Address, query storagemodels.QuerySpec, opts ...storagemodels.StreamOption) ([]storagemodels.Document, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	docs := []storagemodels.Document{}
	for result := range Stream(ctx, svc, collection, query, opts...) {
		if result.Error != nil {
			return nil, result.Error
		}
		docs = append(docs, result.Item)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Upsert writes item to the collection. Slices are upserted element by element in order;
// each element is an independent upsert. Documents without an id get a random one.
func Upsert(ctx context.Context, svc datastore.Service, collection datastore.Address, item any) ([]storagemodels.Document, error) {
	var written []storagemodels.Document
	for _, it := range expand(item) {
		doc, err := ToDocument(it)
		if err != nil {
			return written, err
		}
		out, err := upsertDocument(ctx, svc, collection, doc)
		if err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}

func upsertDocument(ctx context.Context, svc datastore.Service, collection datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	if doc.ID() == "" {
		doc.SetID(uuid.NewString())
	}
	out, err := svc.UpsertDocument(ctx, collection.CollectionOf(), doc)
	if err != nil {
		return nil, fmt.Errorf("upsert into %s failed: %w", collection.CollectionOf(), err)
	}
	return out, nil
}
