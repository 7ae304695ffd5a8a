/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/suparena/entitybind/datastore"
)

// ServiceCache shares one service per connection string across invocations.
// Construction is exactly-once per connection string; concurrent callers wait for
// the first one and no lock is held while the factory runs.
type ServiceCache struct {
	factory  datastore.ServiceFactory
	logger   *zap.Logger
	services sync.Map // connection string -> datastore.Service
	group    singleflight.Group
}

// NewServiceCache wraps factory.
func NewServiceCache(factory datastore.ServiceFactory, logger *zap.Logger) *ServiceCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceCache{factory: factory, logger: logger}
}

// Get returns the service for connectionString, creating it on first use.
func (c *ServiceCache) Get(ctx context.Context, connectionString string) (datastore.Service, error) {
	if svc, ok := c.services.Load(connectionString); ok {
		return svc.(datastore.Service), nil
	}

	v, err, _ := c.group.Do(connectionString, func() (any, error) {
		if svc, ok := c.services.Load(connectionString); ok {
			return svc, nil
		}
		// The service outlives the invocation that happened to create it.
		svc, err := c.factory.CreateService(context.WithoutCancel(ctx), connectionString)
		if err != nil {
			return nil, err
		}
		c.services.Store(connectionString, svc)
		c.logger.Debug("document service created", zap.String("service", fmt.Sprintf("%T", svc)))
		return svc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document service: %w", err)
	}
	return v.(datastore.Service), nil
}

// Len returns the number of cached services.
func (c *ServiceCache) Len() int {
	n := 0
	c.services.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close releases every cached service that implements io.Closer and empties the cache.
func (c *ServiceCache) Close() error {
	var errs []error
	c.services.Range(func(key, value any) bool {
		c.services.Delete(key)
		if closer, ok := value.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return true
	})
	return errors.Join(errs...)
}
