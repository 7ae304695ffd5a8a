/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/suparena/entitybind/storagemodels"
)

// SinkFunc writes one document.
type SinkFunc func(ctx context.Context, doc storagemodels.Document) error

// Collector accepts output documents during an invocation. They are upserted in the order
// they were added once the function returns.
type Collector struct {
	mu    sync.Mutex
	items []storagemodels.Document
	sink  SinkFunc
}

// NewCollector returns a collector flushing into sink.
func NewCollector(sink SinkFunc) *Collector {
	return &Collector{sink: sink}
}

// Add converts item to a document and buffers it.
func (c *Collector) Add(item any) error {
	doc, err := ToDocument(item)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = append(c.items, doc)
	c.mu.Unlock()
	return nil
}

// Len returns the number of buffered documents.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Flush writes the buffered documents in order and stops at the first failure.
func (c *Collector) Flush(ctx context.Context) error {
	c.mu.Lock()
	items := c.items
	c.items = nil
	c.mu.Unlock()

	for _, doc := range items {
		if err := c.sink(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// AsyncCollector starts each upsert as soon as it is added. Upserts run one at a time,
// in the order added; Wait blocks until all of them finished.
type AsyncCollector struct {
	ctx  context.Context
	g    *errgroup.Group
	sink SinkFunc
}

// NewAsyncCollector returns a collector writing into sink on a background goroutine.
func NewAsyncCollector(ctx context.Context, sink SinkFunc) *AsyncCollector {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(1)
	return &AsyncCollector{ctx: gctx, g: g, sink: sink}
}

// Add converts item to a document and schedules its upsert. It blocks while a previous
// upsert is still running.
func (c *AsyncCollector) Add(item any) error {
	doc, err := ToDocument(item)
	if err != nil {
		return err
	}
	c.g.Go(func() error {
		return c.sink(c.ctx, doc)
	})
	return nil
}

// Wait returns the first upsert error.
func (c *AsyncCollector) Wait() error {
	return c.g.Wait()
}
