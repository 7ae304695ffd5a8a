/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/suparena/entitybind/config"
	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/registry"
	"github.com/suparena/entitybind/storagemodels"
	"github.com/suparena/entitybind/template"
)

// Binding is an indexed parameter binding, ready to be bound per invocation.
type Binding interface {
	Parameter() Parameter
	Bind(ctx context.Context, payload any) (Value, error)
}

// Value is the per-invocation value of one parameter.
type Value interface {
	// Get returns what the function receives.
	Get() any
	// Complete runs after the function returned, e.g. to write outputs.
	Complete(ctx context.Context) error
}

// Awaiter is implemented by values with work in flight that must finish before the
// invocation ends, including a failed one.
type Awaiter interface {
	Await() error
}

// Provider creates bindings for the parameters it understands.
// TryCreate returns a nil Binding for parameters carrying someone else's attribute.
type Provider interface {
	TryCreate(param Parameter) (Binding, error)
}

// Environment is what document bindings need from the host.
type Environment struct {
	Settings config.Settings
	Options  config.Options
	Services *ServiceCache
	Logger   *zap.Logger
}

// DocumentProvider binds parameters carrying an Attribute.
type DocumentProvider struct {
	env Environment
}

// NewDocumentProvider returns a provider building descriptors against env.
func NewDocumentProvider(env Environment) *DocumentProvider {
	if env.Services == nil {
		env.Services = NewServiceCache(registry.NewFactory(), env.Logger)
	}
	return &DocumentProvider{env: env}
}

// TryCreate implements Provider.
func (p *DocumentProvider) TryCreate(param Parameter) (Binding, error) {
	attr, ok := documentAttribute(param)
	if !ok {
		return nil, nil
	}
	d, err := Build(param, attr, p.env)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Descriptor is the immutable, indexed form of one document binding.
type Descriptor struct {
	param            Parameter
	attr             Attribute
	shape            Shape
	classification   Classification
	connectionString string

	database     *template.Template
	collection   *template.Template
	id           *template.Template
	partitionKey *template.Template
	query        *template.Template

	env Environment

	ensured sync.Map // collection address -> *ensureState
}

type ensureState struct {
	once sync.Once
	err  error
}

// Build validates a parameter, compiles its templates and resolves its connection string.
// Every failure here is an indexing-time failure.
func Build(param Parameter, attr Attribute, env Environment) (*Descriptor, error) {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	if env.Settings == nil {
		env.Settings = config.Env{}
	}
	if env.Services == nil {
		env.Services = NewServiceCache(registry.NewFactory(), env.Logger)
	}

	shape, err := ShapeOf(param.Type)
	if err != nil {
		return nil, err
	}
	classification, err := Classify(attr, shape, param.Direction)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{
		param:          param,
		attr:           attr,
		shape:          shape,
		classification: classification,
		env:            env,
	}
	for _, c := range []struct {
		dst **template.Template
		src string
	}{
		{&d.database, attr.DatabaseName},
		{&d.collection, attr.CollectionName},
		{&d.id, attr.ID},
		{&d.partitionKey, attr.PartitionKey},
		{&d.query, attr.SQLQuery},
	} {
		if *c.dst, err = template.CompileOptional(c.src); err != nil {
			return nil, err
		}
	}

	ambient := env.Options.ConnectionSetting
	if ambient == "" {
		ambient = config.DefaultConnectionSettingName
	}
	d.connectionString, err = config.ResolveConnectionString(env.Settings, attr.ConnectionStringSetting, env.Options.ConnectionString, ambient)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Parameter implements Binding.
func (d *Descriptor) Parameter() Parameter { return d.param }

// Shape returns the parameter shape.
func (d *Descriptor) Shape() Shape { return d.shape }

// Classification returns the operation the binding performs.
func (d *Descriptor) Classification() Classification { return d.classification }

// ConnectionString returns the resolved connection string.
func (d *Descriptor) ConnectionString() string { return d.connectionString }

// Resolve renders the attribute templates for one trigger payload.
func (d *Descriptor) Resolve(payload any) (Request, error) {
	var (
		req Request
		err error
	)
	if req.Database, err = d.database.Render(payload, d.env.Settings); err != nil {
		return Request{}, err
	}
	if req.Collection, err = d.collection.Render(payload, d.env.Settings); err != nil {
		return Request{}, err
	}
	if req.ID, err = d.id.Render(payload, d.env.Settings); err != nil {
		return Request{}, err
	}
	if d.partitionKey.IsSet() {
		pk, err := d.partitionKey.Render(payload, d.env.Settings)
		if err != nil {
			return Request{}, err
		}
		req.PartitionKey = storagemodels.NewPartitionKey(pk)
	}
	if req.Query, err = d.query.RenderQuery(payload, d.env.Settings); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Bind implements Binding.
func (d *Descriptor) Bind(ctx context.Context, payload any) (Value, error) {
	req, err := d.Resolve(payload)
	if err != nil {
		return nil, err
	}
	svc, err := d.env.Services.Get(ctx, d.connectionString)
	if err != nil {
		return nil, err
	}

	logger := d.env.Logger.With(
		zap.String("parameter", d.param.Name),
		zap.Stringer("classification", d.classification),
	)

	switch d.classification {
	case RawClient:
		return staticValue{v: svc}, nil

	case SingleRead:
		logger.Debug("reading document", zap.Stringer("address", req.DocumentAddress()), zap.Stringer("partitionKey", req.PartitionKey))
		doc, err := Read(ctx, svc, req)
		if err != nil {
			return nil, err
		}
		v, err := fromDocument(doc, d.shape)
		if err != nil {
			return nil, err
		}
		return staticValue{v: v.Interface()}, nil

	case EnumerableQuery:
		logger.Debug("querying collection", zap.Stringer("collection", req.CollectionAddress()), zap.String("query", req.Query.Text))
		docs, err := Query(ctx, svc, req.CollectionAddress(), req.Query, d.streamOptions()...)
		if err != nil {
			return nil, err
		}
		out := reflect.MakeSlice(reflect.SliceOf(d.shape.Elem.Type), 0, len(docs))
		for _, doc := range docs {
			v, err := fromDocument(doc, *d.shape.Elem)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, v)
		}
		if d.shape.Type.Kind() == reflect.Slice {
			return staticValue{v: out.Convert(d.shape.Type).Interface()}, nil
		}
		arr := reflect.New(d.shape.Type).Elem()
		reflect.Copy(arr, out)
		return staticValue{v: arr.Interface()}, nil
	}

	sink := func(ctx context.Context, doc storagemodels.Document) error {
		if err := d.ensureCollection(ctx, svc, req.CollectionAddress()); err != nil {
			return err
		}
		_, err := upsertDocument(ctx, svc, req.CollectionAddress(), doc)
		return err
	}
	switch d.shape.Kind {
	case ShapeCollector:
		c := NewCollector(sink)
		return completeValue{v: c, complete: c.Flush}, nil
	case ShapeAsyncCollector:
		return asyncValue{NewAsyncCollector(ctx, sink)}, nil
	}

	slot := reflect.New(d.param.Type)
	return completeValue{v: slot.Interface(), complete: func(ctx context.Context) error {
		for _, item := range toItems(slot.Elem()) {
			doc, err := ToDocument(item)
			if err != nil {
				return err
			}
			if err := sink(ctx, doc); err != nil {
				return err
			}
		}
		return nil
	}}, nil
}

func (d *Descriptor) streamOptions() []storagemodels.StreamOption {
	var opts []storagemodels.StreamOption
	if n := d.env.Options.QueryBufferSize; n > 0 {
		opts = append(opts, storagemodels.WithBufferSize(n))
	}
	return opts
}

// ensureCollection creates the target collection once per descriptor and collection when requested.
func (d *Descriptor) ensureCollection(ctx context.Context, svc datastore.Service, collection datastore.Address) error {
	if !d.attr.CreateIfNotExists {
		return nil
	}
	creator, ok := svc.(datastore.CollectionCreator)
	if !ok {
		return nil
	}
	v, _ := d.ensured.LoadOrStore(collection.String(), &ensureState{})
	state := v.(*ensureState)
	state.once.Do(func() {
		if err := creator.EnsureCollection(ctx, collection, d.attr.PartitionKeyPath); err != nil {
			state.err = fmt.Errorf("failed to create collection %s: %w", collection, err)
		}
	})
	return state.err
}

type staticValue struct {
	v any
}

func (s staticValue) Get() any {
	return s.v
}

func (s staticValue) Complete(context.Context) error {
	return nil
}

type completeValue struct {
	v        any
	complete func(ctx context.Context) error
}

func (c completeValue) Get() any {
	return c.v
}

func (c completeValue) Complete(ctx context.Context) error {
	return c.complete(ctx)
}

type asyncValue struct {
	c *AsyncCollector
}

func (a asyncValue) Get() any {
	return a.c
}

func (a asyncValue) Complete(context.Context) error {
	return a.c.Wait()
}

func (a asyncValue) Await() error {
	return a.c.Wait()
}
