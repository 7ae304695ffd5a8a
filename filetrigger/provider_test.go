/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filetrigger_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/filetrigger"
)

func TestTryCreate(t *testing.T) {
	provider := filetrigger.NewProvider()
	attr := filetrigger.Attribute{Path: "import/{name}.csv"}

	t.Run("other attributes are ignored", func(t *testing.T) {
		b, err := provider.TryCreate(binding.Input[string]("doc", binding.Attribute{}))
		require.NoError(t, err)
		assert.Nil(t, b)

		b, err = provider.TryCreate(binding.Input[string]("doc", nil))
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("supported types", func(t *testing.T) {
		for _, p := range []binding.Parameter{
			binding.Input[filetrigger.Event]("file", attr),
			binding.Input[*filetrigger.Event]("file", &attr),
			binding.Input[string]("file", attr),
			binding.Input[[]byte]("file", attr),
			binding.Input[fs.FileInfo]("file", attr),
		} {
			b, err := provider.TryCreate(p)
			require.NoError(t, err, p.Type.String())
			assert.Equal(t, "import", b.(*filetrigger.Binding).Dir())
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := provider.TryCreate(binding.Input[int]("file", attr))
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Contains(t, err.Error(), "Can't bind FileTriggerAttribute to type 'int'.")
	})

	t.Run("output parameter", func(t *testing.T) {
		_, err := provider.TryCreate(binding.Output[string]("file", attr))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("malformed path", func(t *testing.T) {
		_, err := provider.TryCreate(binding.Input[string]("file", filetrigger.Attribute{Path: "nodirectory"}))
		assert.True(t, errors.IsValidationError(err))

		_, err = provider.TryCreate(binding.Input[string]("file", filetrigger.Attribute{Path: "import/{name"}))
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestBind(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,total\n1,10\n"), 0o644))
	event := filetrigger.Event{Name: "orders.csv", FullPath: path, ChangeType: filetrigger.Created}
	attr := filetrigger.Attribute{Path: "import/{name}.csv"}

	bind := func(t *testing.T, p binding.Parameter, payload any) any {
		t.Helper()
		b, err := filetrigger.NewProvider().TryCreate(p)
		require.NoError(t, err)
		v, err := b.Bind(ctx, payload)
		require.NoError(t, err)
		require.NoError(t, v.Complete(ctx))
		return v.Get()
	}

	assert.Equal(t, event, bind(t, binding.Input[filetrigger.Event]("f", attr), event))
	assert.Equal(t, &event, bind(t, binding.Input[*filetrigger.Event]("f", attr), &event))
	assert.Equal(t, "id,total\n1,10\n", bind(t, binding.Input[string]("f", attr), event))
	assert.Equal(t, []byte("id,total\n1,10\n"), bind(t, binding.Input[[]byte]("f", attr), event))
	assert.Equal(t, "orders.csv", bind(t, binding.Input[fs.FileInfo]("f", attr), event).(fs.FileInfo).Name())

	t.Run("payload must be an event", func(t *testing.T) {
		b, err := filetrigger.NewProvider().TryCreate(binding.Input[string]("f", attr))
		require.NoError(t, err)
		_, err = b.Bind(ctx, "orders.csv")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		b, err := filetrigger.NewProvider().TryCreate(binding.Input[string]("f", attr))
		require.NoError(t, err)
		_, err = b.Bind(ctx, filetrigger.Event{FullPath: filepath.Join(dir, "gone.csv")})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestEventBindingData(t *testing.T) {
	event := filetrigger.Event{
		Name:       "orders.csv",
		Path:       "import/orders.csv",
		ChangeType: filetrigger.Changed,
		Captures:   map[string]string{"name": "orders", "Path": "ignored"},
	}
	data := event.BindingData()
	assert.Equal(t, "orders", data["name"])
	assert.Equal(t, "import/orders.csv", data["Path"])
	assert.Equal(t, "Changed", data["ChangeType"])
}
