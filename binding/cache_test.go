/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding_test

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/datastore/mock"
)

type closingService struct {
	*mock.Service
	closed atomic.Bool
}

func (c *closingService) Close() error {
	c.closed.Store(true)
	return nil
}

func TestServiceCache(t *testing.T) {
	ctx := context.Background()

	t.Run("ExactlyOnceUnderConcurrency", func(t *testing.T) {
		var calls atomic.Int32
		factory := datastore.ServiceFactoryFunc(func(context.Context, string) (datastore.Service, error) {
			calls.Add(1)
			time.Sleep(10 * time.Millisecond)
			return mock.New(), nil
		})
		cache := binding.NewServiceCache(factory, zaptest.NewLogger(t))

		var wg sync.WaitGroup
		services := make([]datastore.Service, 20)
		for i := range services {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				svc, err := cache.Get(ctx, "Provider=memory")
				assert.NoError(t, err)
				services[i] = svc
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, svc := range services {
			assert.Same(t, services[0], svc)
		}
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("KeyedByConnectionString", func(t *testing.T) {
		factory := mock.NewFactory(mock.New())
		cache := binding.NewServiceCache(factory, nil)

		for i := 0; i < 3; i++ {
			_, err := cache.Get(ctx, "A")
			require.NoError(t, err)
			_, err = cache.Get(ctx, "B")
			require.NoError(t, err)
		}
		assert.Equal(t, 1, factory.Calls("A"))
		assert.Equal(t, 1, factory.Calls("B"))
	})

	t.Run("FailuresAreNotCached", func(t *testing.T) {
		boom := stderrors.New("unreachable")
		factory := mock.NewFactory(mock.New()).WithError(boom)
		cache := binding.NewServiceCache(factory, nil)

		_, err := cache.Get(ctx, "A")
		assert.ErrorIs(t, err, boom)
		_, err = cache.Get(ctx, "A")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, factory.Calls("A"))
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("CloseReleasesClosers", func(t *testing.T) {
		svc := &closingService{Service: mock.New()}
		cache := binding.NewServiceCache(mock.NewFactory(svc), nil)
		_, err := cache.Get(ctx, "A")
		require.NoError(t, err)

		require.NoError(t, cache.Close())
		assert.True(t, svc.closed.Load())
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("CancelledCallerDoesNotPoisonService", func(t *testing.T) {
		var sawCancelled atomic.Bool
		factory := datastore.ServiceFactoryFunc(func(ctx context.Context, _ string) (datastore.Service, error) {
			sawCancelled.Store(ctx.Err() != nil)
			return mock.New(), nil
		})
		cache := binding.NewServiceCache(factory, nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := cache.Get(cctx, "A")
		require.NoError(t, err)
		assert.False(t, sawCancelled.Load())
	})
}
