package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Proton-105/shulk-bot/pkg/metrics"
)

// Watcher reports writes to the ledger file that did not come from the
// bot. Such edits are not merged: the next mutation overwrites them with the
// in-memory state.
type Watcher struct {
	storage        *FileStorage
	log            *slog.Logger
	onExternalEdit func(path string)
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithExternalEditHook registers fn to run for every detected foreign write.
func WithExternalEditHook(fn func(path string)) WatcherOption {
	return func(w *Watcher) {
		w.onExternalEdit = fn
	}
}

// NewWatcher creates a Watcher for the file behind storage.
func NewWatcher(storage *FileStorage, log *slog.Logger, opts ...WatcherOption) *Watcher {
	if log == nil {
		log = slog.Default()
	}

	w := &Watcher{storage: storage, log: log}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the ledger's directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.storage == nil {
		return errors.New("ledger watcher is not configured")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer func() {
		_ = fsw.Close()
	}()

	// The directory is watched because every save replaces the file's inode.
	dir := filepath.Dir(w.storage.Path())
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch ledger directory %q: %w", dir, err)
	}

	w.log.InfoContext(ctx, "ledger watcher started", slog.String("path", w.storage.Path()))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("ledger watcher stopped")
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnContext(ctx, "ledger watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.storage.Path() {
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.log.WarnContext(ctx, "ledger file removed externally; it is rewritten on the next mutation",
			slog.String("path", event.Name))
		return
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	// #nosec G304: path comes from configuration
	data, err := os.ReadFile(w.storage.Path())
	if err != nil {
		w.log.WarnContext(ctx, "ledger watcher could not read file", slog.Any("error", err))
		return
	}

	if w.storage.IsOwnContent(data) {
		return
	}

	metrics.RecordExternalEdit()
	w.log.WarnContext(ctx, "ledger file modified outside the bot; changes will be overwritten by the next mutation",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()),
	)

	if w.onExternalEdit != nil {
		w.onExternalEdit(event.Name)
	}
}
