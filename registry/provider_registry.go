/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/suparena/entitybind/datastore"
)

// Constructor builds a Service from a parsed connection string.
type Constructor func(ctx context.Context, cs datastore.ConnectionString) (datastore.Service, error)

// providerRegistry holds the mapping from a provider name (like "dynamodb" or "mongodb") to its constructor.
var (
	providerRegistry = make(map[string]Constructor)
	mu               sync.RWMutex
)

// RegisterProvider registers a constructor for a provider name.
// If a constructor is already registered for the name, it panics to prevent accidental overrides.
func RegisterProvider(name string, fn Constructor) {
	name = strings.ToLower(name)
	if fn == nil {
		panic(fmt.Sprintf("provider registry: nil constructor for %q", name))
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := providerRegistry[name]; exists {
		panic(fmt.Sprintf("provider registry: provider %q already registered", name))
	}
	providerRegistry[name] = fn
}

// GetConstructor returns the registered constructor for the given provider name.
// If no constructor is registered, it returns an error.
func GetConstructor(name string) (Constructor, error) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := providerRegistry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("provider registry: no provider registered for %q", name)
	}
	return fn, nil
}

// Providers returns the registered provider names in sorted order.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Factory is the default datastore.ServiceFactory: it parses the connection string
// and dispatches to the constructor registered for its provider.
type Factory struct{}

// NewFactory returns the registry-backed factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateService implements datastore.ServiceFactory.
func (f *Factory) CreateService(ctx context.Context, connectionString string) (datastore.Service, error) {
	cs, err := datastore.ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}
	fn, err := GetConstructor(cs.Provider)
	if err != nil {
		return nil, err
	}
	return fn(ctx, cs)
}
