/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filetrigger_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/entitybind"
	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/config"
	"github.com/suparena/entitybind/datastore"
	"github.com/suparena/entitybind/datastore/mock"
	"github.com/suparena/entitybind/filetrigger"
	"github.com/suparena/entitybind/storagemodels"
)

var imports = datastore.CollectionAddress("Imports", "Files")

type fixture struct {
	root     string
	host     *entitybind.Host
	svc      *mock.Service
	listener *filetrigger.Listener

	mu    sync.Mutex
	calls []filetrigger.Event
}

func (f *fixture) events() []filetrigger.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]filetrigger.Event(nil), f.calls...)
}

// newFixture registers ImportCsv, triggered by import/{name}.csv, which copies the file
// contents into a document named after the capture.
func newFixture(t *testing.T, attr filetrigger.Attribute, failWith error) *fixture {
	t.Helper()
	f := &fixture{root: t.TempDir(), svc: mock.New()}
	logger := zaptest.NewLogger(t)
	f.host = entitybind.New(
		entitybind.WithSettings(config.Map{config.DefaultConnectionSettingName: "Provider=memory"}),
		entitybind.WithFactory(mock.NewFactory(f.svc)),
		entitybind.WithProvider(filetrigger.NewProvider()),
		entitybind.WithLogger(logger),
	)
	t.Cleanup(func() { _ = f.host.Close() })

	require.NoError(t, f.host.Register(entitybind.Function{
		Name: "ImportCsv",
		Params: []binding.Parameter{
			binding.Input[filetrigger.Event]("file", attr),
			binding.Input[string]("contents", attr),
			binding.Output[storagemodels.Document]("row", binding.Attribute{
				DatabaseName: "Imports", CollectionName: "Files", ID: "{name}",
			}),
		},
		Handler: func(ctx context.Context, call *entitybind.Call) error {
			event := call.Value("file").(filetrigger.Event)
			f.mu.Lock()
			f.calls = append(f.calls, event)
			f.mu.Unlock()
			if failWith != nil {
				return failWith
			}
			*call.Value("row").(*storagemodels.Document) = storagemodels.Document{
				"id":       event.Captures["name"],
				"contents": call.Value("contents"),
			}
			return nil
		},
	}))

	var err error
	f.listener, err = filetrigger.NewListener(f.host, filetrigger.Options{
		RootPath:       f.root,
		Debounce:       50 * time.Millisecond,
		MaxConcurrency: 2,
	}, logger)
	require.NoError(t, err)
	return f
}

func (f *fixture) write(t *testing.T, rel, contents string) string {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestListenerProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("discovers triggers", func(t *testing.T) {
		f := newFixture(t, filetrigger.Attribute{Path: "import/{name}.csv"}, nil)
		assert.Equal(t, []string{"ImportCsv"}, f.listener.Functions())
	})

	t.Run("matching file invokes and writes output", func(t *testing.T) {
		f := newFixture(t, filetrigger.Attribute{Path: "import/{name}.csv"}, nil)
		path := f.write(t, "import/orders.csv", "id,total")

		n, err := f.listener.Process(ctx, path, filetrigger.Created)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		events := f.events()
		require.Len(t, events, 1)
		assert.Equal(t, "import/orders.csv", events[0].Path)
		assert.Equal(t, "orders", events[0].Captures["name"])

		upserts := f.svc.Upserts()
		require.Len(t, upserts, 1)
		assert.Equal(t, imports, upserts[0].Address)
		assert.Equal(t, "orders", upserts[0].Document.ID())
		assert.Equal(t, "id,total", upserts[0].Document["contents"])
	})

	t.Run("pattern and change type filter", func(t *testing.T) {
		f := newFixture(t, filetrigger.Attribute{Path: "import/{name}.csv"}, nil)
		n, err := f.listener.Process(ctx, f.write(t, "import/orders.json", "{}"), filetrigger.Created)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = f.listener.Process(ctx, f.write(t, "import/orders.csv", ""), filetrigger.Changed)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = f.listener.Process(ctx, f.write(t, "other/orders.csv", ""), filetrigger.Created)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("auto delete after success", func(t *testing.T) {
		f := newFixture(t, filetrigger.Attribute{Path: "import/{name}.csv", AutoDelete: true}, nil)
		path := f.write(t, "import/orders.csv", "x")

		_, err := f.listener.Process(ctx, path, filetrigger.Created)
		require.NoError(t, err)
		assert.NoFileExists(t, path)
	})

	t.Run("failed invocation keeps the file", func(t *testing.T) {
		boom := stderrors.New("boom")
		f := newFixture(t, filetrigger.Attribute{Path: "import/{name}.csv", AutoDelete: true}, boom)
		path := f.write(t, "import/orders.csv", "x")

		_, err := f.listener.Process(ctx, path, filetrigger.Created)
		assert.ErrorIs(t, err, boom)
		assert.FileExists(t, path)
		assert.Empty(t, f.svc.Upserts())
	})
}

func TestListenerRun(t *testing.T) {
	f := newFixture(t, filetrigger.Attribute{Path: "import/{name}.csv", ChangeTypes: filetrigger.Created | filetrigger.Changed}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.listener.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(f.root, "import"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	// the watch is added right after the directory is created
	time.Sleep(100 * time.Millisecond)

	f.write(t, "import/invoices.csv", "a,b")

	require.Eventually(t, func() bool {
		for _, u := range f.svc.Upserts() {
			if u.Document.ID() == "invoices" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestListenerWithoutTriggers(t *testing.T) {
	host := entitybind.New()
	defer host.Close()
	l, err := filetrigger.NewListener(host, filetrigger.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Error(t, l.Run(context.Background()))
}
