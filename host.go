/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitybind

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/config"
	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/registry"
)

// ErrFunctionNotFound is returned by Call for a name that was never registered
// or failed indexing.
var ErrFunctionNotFound = stderrors.New("function not registered")

// Handler is the body of a user function.
type Handler func(ctx context.Context, call *Call) error

// Function is a user function and its declared parameters.
type Function struct {
	Name    string
	Params  []binding.Parameter
	Handler Handler
}

type indexedFunction struct {
	fn       Function
	bindings []binding.Binding
}

// Host indexes functions once and invokes them with their parameters bound.
// It is safe for concurrent use.
type Host struct {
	mu             sync.RWMutex
	functions      map[string]*indexedFunction
	indexingErrors map[string]error

	providers []binding.Provider
	services  *binding.ServiceCache
	logger    *zap.Logger
}

type hostConfig struct {
	settings  config.Settings
	factory   datastore.ServiceFactory
	options   config.Options
	logger    *zap.Logger
	providers []binding.Provider
}

// Option configures a Host.
type Option func(*hostConfig)

// WithSettings sets the application settings used for %Name% tokens and connection strings.
func WithSettings(s config.Settings) Option {
	return func(c *hostConfig) {
		c.settings = s
	}
}

// WithFactory replaces the provider registry as the source of document services.
func WithFactory(f datastore.ServiceFactory) Option {
	return func(c *hostConfig) {
		c.factory = f
	}
}

// WithOptions sets the extension options.
func WithOptions(o config.Options) Option {
	return func(c *hostConfig) {
		c.options = o
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *hostConfig) {
		c.logger = l
	}
}

// WithProvider adds a binding provider, e.g. a trigger provider.
// Providers are consulted in order, after the document provider.
func WithProvider(p binding.Provider) Option {
	return func(c *hostConfig) {
		c.providers = append(c.providers, p)
	}
}

// New creates a Host.
func New(opts ...Option) *Host {
	cfg := hostConfig{
		settings: config.Env{},
		factory:  registry.NewFactory(),
		options:  config.DefaultOptions(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	services := binding.NewServiceCache(cfg.factory, cfg.logger)
	documents := binding.NewDocumentProvider(binding.Environment{
		Settings: cfg.settings,
		Options:  cfg.options,
		Services: services,
		Logger:   cfg.logger,
	})

	return &Host{
		functions:      make(map[string]*indexedFunction),
		indexingErrors: make(map[string]error),
		providers:      append([]binding.Provider{documents}, cfg.providers...),
		services:       services,
		logger:         cfg.logger,
	}
}

// Register indexes fn. When any parameter cannot be bound the function is not registered
// and the returned IndexingError names the parameter and the violated rule.
// Other functions are unaffected.
func (h *Host) Register(fn Function) error {
	if fn.Name == "" {
		return errors.NewIndexingError(fn.Name, "", fmt.Errorf("function name is required"))
	}

	indexed, err := h.index(fn)

	h.mu.Lock()
	defer h.mu.Unlock()

	if err == nil {
		if _, exists := h.functions[fn.Name]; exists {
			err = errors.NewIndexingError(fn.Name, "", fmt.Errorf("function %q already registered", fn.Name))
		}
	}
	if err != nil {
		h.indexingErrors[fn.Name] = err
		h.logger.Error("function indexing failed", zap.String("function", fn.Name), zap.Error(err))
		return err
	}

	delete(h.indexingErrors, fn.Name)
	h.functions[fn.Name] = indexed
	h.logger.Info("function registered", zap.String("function", fn.Name), zap.Int("parameters", len(fn.Params)))
	return nil
}

func (h *Host) index(fn Function) (*indexedFunction, error) {
	if fn.Handler == nil {
		return nil, errors.NewIndexingError(fn.Name, "", fmt.Errorf("handler is required"))
	}

	seen := make(map[string]bool, len(fn.Params))
	indexed := &indexedFunction{fn: fn}
	for _, param := range fn.Params {
		if seen[param.Name] {
			return nil, errors.NewIndexingError(fn.Name, param.Name, fmt.Errorf("duplicate parameter name"))
		}
		seen[param.Name] = true

		b, err := h.bind(param)
		if err != nil {
			return nil, errors.NewIndexingError(fn.Name, param.Name, err)
		}
		indexed.bindings = append(indexed.bindings, b)
	}
	return indexed, nil
}

func (h *Host) bind(param binding.Parameter) (binding.Binding, error) {
	for _, p := range h.providers {
		b, err := p.TryCreate(param)
		if err != nil {
			return nil, err
		}
		if b != nil {
			return b, nil
		}
	}
	return nil, errors.NewValidationError("Attribute", fmt.Sprintf("no binding provider accepts parameter %q of type %v", param.Name, param.Type))
}

// IndexingErrors returns the indexing failure of every function that could not be registered.
func (h *Host) IndexingErrors() map[string]error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]error, len(h.indexingErrors))
	for k, v := range h.indexingErrors {
		out[k] = v
	}
	return out
}

// Functions returns the registered function names in sorted order.
func (h *Host) Functions() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.functions))
	for name := range h.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bindings returns the indexed bindings of a registered function, in parameter order.
func (h *Host) Bindings(name string) ([]binding.Binding, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}
	return append([]binding.Binding(nil), f.bindings...), nil
}

// Call invokes a registered function with payload as its trigger data.
//
// Inputs are bound first, then the handler runs, then outputs are completed in parameter
// order: out slots and collectors are upserted and async collectors awaited. When the
// handler fails, pending async upserts are still awaited but nothing else is written.
// A failed invocation affects no other invocation.
func (h *Host) Call(ctx context.Context, name string, payload any) error {
	h.mu.RLock()
	f, ok := h.functions[name]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}

	logger := h.logger.With(zap.String("function", name), zap.String("invocationId", uuid.NewString()))
	logger.Debug("invocation started")

	call := &Call{
		function: name,
		payload:  payload,
		values:   make(map[string]any, len(f.bindings)),
	}
	values := make([]binding.Value, 0, len(f.bindings))
	for _, b := range f.bindings {
		v, err := b.Bind(ctx, payload)
		if err != nil {
			logger.Warn("binding failed", zap.String("parameter", b.Parameter().Name), zap.Error(err))
			return fmt.Errorf("function %q: binding parameter %q: %w", name, b.Parameter().Name, err)
		}
		values = append(values, v)
		call.values[b.Parameter().Name] = v.Get()
	}

	if err := f.fn.Handler(ctx, call); err != nil {
		for i, v := range values {
			if a, ok := v.(binding.Awaiter); ok {
				if awaitErr := a.Await(); awaitErr != nil {
					logger.Warn("in-flight output failed", zap.String("parameter", f.bindings[i].Parameter().Name), zap.Error(awaitErr))
				}
			}
		}
		logger.Warn("invocation failed", zap.Error(err))
		return fmt.Errorf("function %q: %w", name, err)
	}

	var errs []error
	for i, v := range values {
		if err := v.Complete(ctx); err != nil {
			errs = append(errs, fmt.Errorf("function %q: completing parameter %q: %w", name, f.bindings[i].Parameter().Name, err))
		}
	}
	if len(errs) > 0 {
		err := stderrors.Join(errs...)
		logger.Warn("invocation failed", zap.Error(err))
		return err
	}

	logger.Debug("invocation completed")
	return nil
}

// Close releases every cached document service.
func (h *Host) Close() error {
	return h.services.Close()
}
