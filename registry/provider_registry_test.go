/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/storagemodels"
)

type stubService struct {
	cs datastore.ConnectionString
}

func (s *stubService) ReadDocument(context.Context, datastore.Address, *storagemodels.PartitionKey) (storagemodels.Document, error) {
	return nil, nil
}

func (s *stubService) UpsertDocument(_ context.Context, _ datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	return doc, nil
}

func (s *stubService) ReplaceDocument(_ context.Context, _ datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	return doc, nil
}

func (s *stubService) ExecuteQueryPage(context.Context, datastore.Address, storagemodels.QuerySpec, string) (*storagemodels.Page, error) {
	return &storagemodels.Page{}, nil
}

func TestRegisterProvider(t *testing.T) {
	RegisterProvider("Stub-Registry-Test", func(_ context.Context, cs datastore.ConnectionString) (datastore.Service, error) {
		return &stubService{cs: cs}, nil
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		fn, err := GetConstructor("stub-registry-test")
		require.NoError(t, err)
		assert.NotNil(t, fn)
		assert.Contains(t, Providers(), "stub-registry-test")
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterProvider("stub-registry-test", func(context.Context, datastore.ConnectionString) (datastore.Service, error) {
				return nil, nil
			})
		})
	})

	t.Run("nil constructor panics", func(t *testing.T) {
		assert.Panics(t, func() { RegisterProvider("nil-ctor", nil) })
	})

	t.Run("factory dispatches on provider", func(t *testing.T) {
		svc, err := NewFactory().CreateService(context.Background(), "Provider=stub-registry-test;Table=docs")
		require.NoError(t, err)
		stub, ok := svc.(*stubService)
		require.True(t, ok)
		assert.Equal(t, "docs", stub.cs.GetOr("Table", ""))
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewFactory().CreateService(context.Background(), "Provider=nope")
		assert.Error(t, err)
	})

	t.Run("malformed connection string", func(t *testing.T) {
		_, err := NewFactory().CreateService(context.Background(), "")
		assert.Error(t, err)
	})
}
