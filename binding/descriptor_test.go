/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/config"
	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/datastore/mock"
	"github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
)

const connection = "Provider=memory;Name=descriptor-tests"

func newEnv(svc datastore.Service) (binding.Environment, *mock.Factory) {
	factory := mock.NewFactory(svc)
	return binding.Environment{
		Settings: config.Map{
			config.DefaultConnectionSettingName: connection,
			"Database":                          "ItemDb",
			"Query":                             "ResolvedQuery",
		},
		Options:  config.DefaultOptions(),
		Services: binding.NewServiceCache(factory, nil),
	}, factory
}

func TestBuild(t *testing.T) {
	t.Run("IndexingFailures", func(t *testing.T) {
		env, _ := newEnv(mock.New())

		_, err := binding.Build(binding.Input[[]storagemodels.Document]("docs", nil),
			binding.Attribute{DatabaseName: "d", CollectionName: "c", ID: "x", SQLQuery: "q"}, env)
		assert.EqualError(t, err, binding.MsgIDOnEnumerable)

		_, err = binding.Build(binding.Input[storagemodels.Document]("doc", nil),
			binding.Attribute{DatabaseName: "d", CollectionName: "c"}, env)
		assert.EqualError(t, err, binding.MsgIDRequiredForRecord)

		_, err = binding.Build(binding.Input[storagemodels.Document]("doc", nil),
			binding.Attribute{DatabaseName: "d", CollectionName: "c", ID: "{a..b}"}, env)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("MissingConnection", func(t *testing.T) {
		env, _ := newEnv(mock.New())
		env.Settings = config.Map{}
		_, err := binding.Build(binding.Input[storagemodels.Document]("doc", nil),
			binding.Attribute{DatabaseName: "d", CollectionName: "c", ID: "x"}, env)
		assert.True(t, errors.IsConfigurationError(err))
	})

	t.Run("ExplicitSettingMustResolve", func(t *testing.T) {
		env, _ := newEnv(mock.New())
		_, err := binding.Build(binding.Input[storagemodels.Document]("doc", nil),
			binding.Attribute{DatabaseName: "d", CollectionName: "c", ID: "x", ConnectionStringSetting: "Nope"}, env)
		assert.True(t, errors.IsConfigurationError(err))
	})

	t.Run("ResolvesConnection", func(t *testing.T) {
		env, _ := newEnv(mock.New())
		env.Options.ConnectionString = "Provider=memory;Name=configured"
		d, err := binding.Build(binding.Input[storagemodels.Document]("doc", nil),
			binding.Attribute{DatabaseName: "d", CollectionName: "c", ID: "x"}, env)
		require.NoError(t, err)
		assert.Equal(t, "Provider=memory;Name=configured", d.ConnectionString())
		assert.Equal(t, binding.SingleRead, d.Classification())
		assert.Equal(t, binding.ShapeRecord, d.Shape().Kind)
	})
}

func TestDescriptorBind(t *testing.T) {
	ctx := context.Background()

	t.Run("SingleReadByTemplate", func(t *testing.T) {
		svc := mock.New().WithPartitionKeyPath("/pk")
		svc.SetData(items, storagemodels.Document{"id": "docid3", "pk": "partkey3", "text": "three"})
		env, factory := newEnv(svc)

		d, err := binding.Build(binding.Input[*Item]("item", nil), binding.Attribute{
			DatabaseName:   "%Database%",
			CollectionName: "ItemCollection",
			ID:             "{DocumentId}",
			PartitionKey:   "{PartitionKey}",
		}, env)
		require.NoError(t, err)

		payload := map[string]any{"DocumentId": "docid3", "PartitionKey": "partkey3"}
		v, err := d.Bind(ctx, payload)
		require.NoError(t, err)
		item := v.Get().(*Item)
		assert.Equal(t, "three", item.Text)
		require.NoError(t, v.Complete(ctx))

		reads := svc.Reads()
		require.Len(t, reads, 1)
		assert.Equal(t, `["partkey3"]`, reads[0].PartitionKey.String())
		assert.Empty(t, svc.Upserts(), "inputs are never written back")
		assert.Equal(t, 1, factory.Calls(connection))
	})

	t.Run("ScalarPayload", func(t *testing.T) {
		svc := mock.New()
		svc.SetData(items, storagemodels.Document{"id": "docid1"})
		env, _ := newEnv(svc)
		d, err := binding.Build(binding.Input[string]("item", nil), binding.Attribute{
			DatabaseName: "ItemDb", CollectionName: "ItemCollection", ID: "{QueueTrigger}",
		}, env)
		require.NoError(t, err)

		v, err := d.Bind(ctx, "docid1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"docid1"}`, v.Get().(string))
		assert.Nil(t, svc.Reads()[0].PartitionKey)
	})

	t.Run("NotFound", func(t *testing.T) {
		env, _ := newEnv(mock.New())
		d, err := binding.Build(binding.Input[storagemodels.Document]("item", nil), binding.Attribute{
			DatabaseName: "ItemDb", CollectionName: "ItemCollection", ID: "missing",
		}, env)
		require.NoError(t, err)
		_, err = d.Bind(ctx, nil)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("UnresolvedToken", func(t *testing.T) {
		env, _ := newEnv(mock.New())
		d, err := binding.Build(binding.Input[storagemodels.Document]("item", nil), binding.Attribute{
			DatabaseName: "ItemDb", CollectionName: "ItemCollection", ID: "{Missing.Field}",
		}, env)
		require.NoError(t, err)
		_, err = d.Bind(ctx, map[string]any{"Other": 1})
		assert.True(t, errors.IsBindingResolution(err))
	})

	t.Run("EnumerableQueryParameters", func(t *testing.T) {
		svc := mock.New().WithQueryFunc(pagedQuery(2))
		env, _ := newEnv(svc)
		d, err := binding.Build(binding.Input[[]Item]("items", nil), binding.Attribute{
			DatabaseName:   "ItemDb",
			CollectionName: "ItemCollection",
			SQLQuery:       "some %Query% with '{QueueTrigger}' replacements",
		}, env)
		require.NoError(t, err)

		v, err := d.Bind(ctx, "docid1")
		require.NoError(t, err)
		got := v.Get().([]Item)
		assert.Len(t, got, 4)

		queries := svc.Queries()
		require.Len(t, queries, 2)
		assert.Equal(t, "some ResolvedQuery with '@QueueTrigger' replacements", queries[0].Query.Text)
		assert.Equal(t, []storagemodels.QueryParameter{{Name: "@QueueTrigger", Value: "docid1"}}, queries[0].Query.Parameters)
		assert.Equal(t, "some ResolvedQuery with 'docid1' replacements", queries[0].Query.Expand())
	})

	t.Run("RawClient", func(t *testing.T) {
		svc := mock.New()
		env, _ := newEnv(svc)
		d, err := binding.Build(binding.Input[datastore.Service]("client", nil), binding.Attribute{}, env)
		require.NoError(t, err)
		v, err := d.Bind(ctx, nil)
		require.NoError(t, err)
		assert.Same(t, svc, v.Get())
	})

	t.Run("OutputSlot", func(t *testing.T) {
		svc := mock.New()
		env, _ := newEnv(svc)
		d, err := binding.Build(binding.Output[[]any]("out", nil), binding.Attribute{
			DatabaseName: "ItemDb", CollectionName: "ItemCollection",
		}, env)
		require.NoError(t, err)

		v, err := d.Bind(ctx, nil)
		require.NoError(t, err)
		slot := v.Get().(*[]any)
		*slot = []any{Item{ID: "a"}, `{"id":"b"}`}
		assert.Empty(t, svc.Upserts())

		require.NoError(t, v.Complete(ctx))
		require.Len(t, svc.Upserts(), 2)
	})

	t.Run("EmptyOutputSlotWritesNothing", func(t *testing.T) {
		svc := mock.New()
		env, _ := newEnv(svc)
		d, err := binding.Build(binding.Output[storagemodels.Document]("out", nil), binding.Attribute{
			DatabaseName: "ItemDb", CollectionName: "ItemCollection",
		}, env)
		require.NoError(t, err)
		v, err := d.Bind(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, v.Complete(ctx))
		assert.Empty(t, svc.Upserts())
	})

	t.Run("CreateIfNotExists", func(t *testing.T) {
		svc := mock.New()
		env, _ := newEnv(svc)
		d, err := binding.Build(binding.Output[*binding.Collector]("out", nil), binding.Attribute{
			DatabaseName:      "ItemDb",
			CollectionName:    "ItemCollection",
			CreateIfNotExists: true,
			PartitionKeyPath:  "/pk",
		}, env)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			v, err := d.Bind(ctx, nil)
			require.NoError(t, err)
			c := v.Get().(*binding.Collector)
			require.NoError(t, c.Add(Item{ID: "a"}))
			require.NoError(t, v.Complete(ctx))
		}
		assert.Equal(t, map[string]string{"dbs/ItemDb/colls/ItemCollection": "/pk"}, svc.Collections())
		assert.Len(t, svc.Upserts(), 2)
	})
}

func TestDocumentProvider(t *testing.T) {
	env, _ := newEnv(mock.New())
	p := binding.NewDocumentProvider(env)

	b, err := p.TryCreate(binding.Input[string]("other", "not a document attribute"))
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = p.TryCreate(binding.Input[string]("doc", &binding.Attribute{DatabaseName: "d", CollectionName: "c", ID: "x"}))
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "doc", b.Parameter().Name)

	b, err = p.TryCreate(binding.Input[string]("doc", binding.Attribute{DatabaseName: "d", CollectionName: "c"}))
	assert.Error(t, err)
	assert.Nil(t, b)
}
