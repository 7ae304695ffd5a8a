/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filetrigger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/suparena/entitybind/binding"
)

// Host is the part of entitybind.Host a Listener drives.
type Host interface {
	Functions() []string
	Bindings(name string) ([]binding.Binding, error)
	Call(ctx context.Context, name string, payload any) error
}

type trigger struct {
	function string
	binding  *Binding
	dir      string
}

type pending struct {
	change ChangeType
	last   time.Time
}

// Listener watches the directories of every file triggered function of a host and
// invokes the functions whose pattern and change types match.
type Listener struct {
	host     Host
	opts     Options
	root     string
	logger   *zap.Logger
	triggers []trigger

	mu      sync.Mutex
	pending map[string]pending
}

// NewListener discovers the file triggers registered on host.
func NewListener(host Host, opts Options, logger *zap.Logger) (*Listener, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultOptions().MaxConcurrency
	}
	root, err := filepath.Abs(opts.RootPath)
	if err != nil {
		return nil, fmt.Errorf("invalid root path %q: %w", opts.RootPath, err)
	}

	l := &Listener{
		host:    host,
		opts:    opts,
		root:    root,
		logger:  logger.Named("filetrigger"),
		pending: make(map[string]pending),
	}
	for _, name := range host.Functions() {
		bindings, err := host.Bindings(name)
		if err != nil {
			return nil, err
		}
		// The first trigger parameter drives the function; any others bind the same event.
		for _, b := range bindings {
			if fb, ok := b.(*Binding); ok {
				l.triggers = append(l.triggers, trigger{
					function: name,
					binding:  fb,
					dir:      filepath.Join(root, filepath.FromSlash(fb.Dir())),
				})
				break
			}
		}
	}
	return l, nil
}

// Functions returns the names of the triggered functions.
func (l *Listener) Functions() []string {
	names := make([]string, 0, len(l.triggers))
	for _, t := range l.triggers {
		names = append(names, t.function)
	}
	return names
}

// Run watches until ctx is done. In-flight invocations are awaited before it returns.
func (l *Listener) Run(ctx context.Context) error {
	if len(l.triggers) == 0 {
		return fmt.Errorf("no file triggered functions registered")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := map[string]bool{}
	for _, t := range l.triggers {
		if watched[t.dir] {
			continue
		}
		if err := os.MkdirAll(t.dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", t.dir, err)
		}
		if err := watcher.Add(t.dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", t.dir, err)
		}
		watched[t.dir] = true
		l.logger.Info("watching directory", zap.String("dir", t.dir))
	}

	var g errgroup.Group
	g.SetLimit(l.opts.MaxConcurrency)
	defer func() { _ = g.Wait() }()

	ticker := time.NewTicker(max(l.opts.Debounce/5, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("listener stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			l.record(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("watcher error", zap.Error(err))

		case now := <-ticker.C:
			for path, change := range l.settled(now) {
				l.dispatch(ctx, &g, path, change, func(error) {})
			}
		}
	}
}

// Process dispatches one change synchronously and returns the number of invocations
// together with their joined errors.
func (l *Listener) Process(ctx context.Context, path string, change ChangeType) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(l.opts.MaxConcurrency)
	n := l.dispatch(ctx, &g, abs, change, func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	_ = g.Wait()
	return n, errors.Join(errs...)
}

func changeOf(op fsnotify.Op) ChangeType {
	switch {
	case op.Has(fsnotify.Create):
		return Created
	case op.Has(fsnotify.Write):
		return Changed
	case op.Has(fsnotify.Remove):
		return Deleted
	case op.Has(fsnotify.Rename):
		return Renamed
	}
	return 0
}

func (l *Listener) record(event fsnotify.Event) {
	change := changeOf(event.Op)
	if change == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pending[event.Name]
	p.change |= change
	p.last = time.Now()
	l.pending[event.Name] = p
}

// settled removes and returns the changes quiet for at least the debounce interval.
func (l *Listener) settled(now time.Time) map[string]ChangeType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]ChangeType)
	for path, p := range l.pending {
		if now.Sub(p.last) >= l.opts.Debounce {
			out[path] = p.change
			delete(l.pending, path)
		}
	}
	return out
}

func (l *Listener) dispatch(ctx context.Context, g *errgroup.Group, path string, change ChangeType, report func(error)) int {
	dir, name := filepath.Dir(path), filepath.Base(path)
	at := strfmt.DateTime(time.Now().UTC())
	n := 0
	for _, t := range l.triggers {
		if t.dir != dir || t.binding.Attribute().Changes()&change == 0 {
			continue
		}
		captures, ok := t.binding.Pattern().Match(name)
		if !ok {
			continue
		}
		event := newEvent(l.root, path, change, captures, at)
		n++
		g.Go(func() error {
			if err := l.invoke(ctx, t, event); err != nil {
				report(err)
			}
			return nil
		})
	}
	return n
}

func (l *Listener) invoke(ctx context.Context, t trigger, event Event) error {
	logger := l.logger.With(zap.String("function", t.function), zap.String("path", event.Path), zap.Stringer("change", event.ChangeType))
	logger.Debug("file trigger fired")
	if err := l.host.Call(ctx, t.function, event); err != nil {
		logger.Warn("file triggered invocation failed", zap.Error(err))
		return err
	}
	if t.binding.Attribute().AutoDelete && event.ChangeType&Deleted == 0 {
		if err := os.Remove(event.FullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to delete processed file", zap.Error(err))
			return fmt.Errorf("delete %s: %w", event.FullPath, err)
		}
	}
	return nil
}
