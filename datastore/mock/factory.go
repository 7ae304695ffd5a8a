/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/registry"
)

// ProviderName is the connection string provider served by this package, e.g. "Provider=memory;Name=orders".
const ProviderName = "memory"

var (
	namedMu sync.Mutex
	named   = make(map[string]*Service)
)

func init() {
	registry.RegisterProvider(ProviderName, func(_ context.Context, cs datastore.ConnectionString) (datastore.Service, error) {
		svc := Named(cs.GetOr("Name", "default"))
		if size, ok := cs.Get("PageSize"); ok {
			n, err := strconv.Atoi(size)
			if err != nil {
				return nil, fmt.Errorf("invalid PageSize %q: %w", size, err)
			}
			svc.WithPageSize(n)
		}
		if path, ok := cs.Get("PartitionKeyPath"); ok {
			svc.WithPartitionKeyPath(path)
		}
		return svc, nil
	})
}

// Named returns the process-wide in-memory service registered under name, creating it on first use.
func Named(name string) *Service {
	namedMu.Lock()
	defer namedMu.Unlock()
	if svc, ok := named[name]; ok {
		return svc
	}
	svc := New()
	named[name] = svc
	return svc
}

// Factory is a datastore.ServiceFactory that hands out fixed services and counts calls
type Factory struct {
	mu       sync.Mutex
	fallback datastore.Service
	services map[string]datastore.Service
	calls    map[string]int
	err      error
}

// NewFactory creates a factory returning svc for every connection string
func NewFactory(svc datastore.Service) *Factory {
	return &Factory{
		fallback: svc,
		services: make(map[string]datastore.Service),
		calls:    make(map[string]int),
	}
}

// WithService returns svc for one exact connection string
func (f *Factory) WithService(connectionString string, svc datastore.Service) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.services[connectionString] = svc
	return f
}

// WithError makes CreateService fail
func (f *Factory) WithError(err error) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// CreateService implements datastore.ServiceFactory
func (f *Factory) CreateService(ctx context.Context, connectionString string) (datastore.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[connectionString]++
	if f.err != nil {
		return nil, f.err
	}
	if svc, ok := f.services[connectionString]; ok {
		return svc, nil
	}
	if f.fallback == nil {
		return nil, fmt.Errorf("no service configured for connection string %q", connectionString)
	}
	return f.fallback, nil
}

// Calls returns how many times CreateService ran for a connection string
func (f *Factory) Calls(connectionString string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[connectionString]
}

// TotalCalls returns how many times CreateService ran
func (f *Factory) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}
