// Watches a database file for changes made by other writers.

package jsondb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

type watchOptions struct {
	interval time.Duration
	log      *slog.Logger
}

// WithReloadInterval sets the minimum delay between two reloads. Changes
// arriving faster are coalesced. The default is 100ms.
func WithReloadInterval(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		o.interval = d
	}
}

// WithWatchLogger sets the logger. The default is slog.Default().
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(o *watchOptions) {
		o.log = l
	}
}

// Watch calls fn with a read-only snapshot of the collection at path, then
// again every time the file content changes, until ctx is cancelled or fn
// returns an error.
//
// The file's directory is watched rather than the file itself so that
// atomic replacements are seen. Snapshots that fail to load, for example a
// file being rewritten by a foreign writer, are logged and skipped.
func Watch(ctx context.Context, path string, fn func(*Store) error, opts ...WatchOption) error {
	o := watchOptions{interval: 100 * time.Millisecond, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	r := reloader{path: abs, fn: fn, log: o.log}
	if err := r.reload(); err != nil {
		return err
	}
	lim := rate.NewLimiter(rate.Every(o.interval), 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}
			if err := lim.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			if err := r.reload(); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			o.log.WarnContext(ctx, "Error watching database", "err", err)
		}
	}
}

// reloader tracks the last content handed to the callback.
type reloader struct {
	path    string
	fn      func(*Store) error
	log     *slog.Logger
	last    uint64
	hasLast bool
}

func (r *reloader) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.log.Debug("Database file is absent", "db", r.path)
		} else {
			r.log.Warn("Failed to read database", "db", r.path, "err", err)
		}
		return nil
	}
	sum := xxhash.Sum64(data)
	if r.hasLast && sum == r.last {
		return nil
	}
	s := newStore(r.path, &options{ids: KSID, log: r.log, readOnly: true})
	if !isBlank(data) {
		if err := s.load(data); err != nil {
			r.log.Warn("Skipping unreadable snapshot", "db", r.path, "err", err)
			return nil
		}
	}
	r.last, r.hasLast = sum, true
	return r.fn(s)
}
