package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitepub/internal/logfields"
)

// Watcher turns filesystem events under the source directory into publish
// requests on a debouncer. Directories are watched recursively; hidden
// directories and editor droppings are ignored.
type Watcher struct {
	root      string
	debouncer *Debouncer
	fsw       *fsnotify.Watcher
}

// NewWatcher creates a recursive watcher over root.
func NewWatcher(root string, debouncer *Debouncer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: filepath.Clean(root), debouncer: debouncer, fsw: fsw}
	if err := w.addRecursive(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredDir(d.Name()) && path != w.root {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run forwards events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.fsw.Close() }()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.ignoredPath(event.Name) {
				continue
			}
			// New directories must be added before their contents change.
			if event.Op.Has(fsnotify.Create) {
				if err := w.addRecursive(event.Name); err == nil {
					slog.Debug("Watching new path", logfields.Path(event.Name))
				}
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				slog.Debug("Source changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				w.debouncer.Request(Request{Reason: "fs_change", Path: event.Name, RequestedAt: time.Now()})
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("Source watcher error", logfields.Error(err))
		}
	}
}

func ignoredDir(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ignoredPath filters hidden files and editor droppings, judged relative to
// the watch root so hidden components in the root's own path do not mute
// everything.
func (w *Watcher) ignoredPath(path string) bool {
	base := filepath.Base(path)
	// Editor swap and temp files churn constantly during writing sessions.
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
