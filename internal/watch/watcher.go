// Package watch re-runs generation when the source tree or the config file
// changes.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
)

// Options configures a Watcher.
type Options struct {
	// SourceDir is watched recursively.
	SourceDir string
	// ConfigFile, when set, is watched as well.
	ConfigFile string
	// IgnoreDirs are never watched (typically the output directory).
	IgnoreDirs []string
	// Debounce delays a trigger until events stop arriving for this long.
	Debounce time.Duration
}

// Watcher turns file-system events into debounced change notifications.
type Watcher struct {
	opts     Options
	fs       *fsnotify.Watcher
	onChange func(ctx context.Context)

	mu          sync.Mutex
	timer       *time.Timer
	fingerprint string
}

// New creates a Watcher. onChange runs on a timer goroutine after each
// debounced change whose tree fingerprint differs from the previous one.
func New(opts Options, onChange func(ctx context.Context)) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &Watcher{opts: opts, fs: fw, onChange: onChange}

	if err := w.addDirsRecursive(opts.SourceDir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if opts.ConfigFile != "" {
		// Watch the directory: editors often replace the file on save.
		if err := fw.Add(filepath.Dir(opts.ConfigFile)); err != nil {
			slog.Warn("Watch add failed", logfields.Dir(filepath.Dir(opts.ConfigFile)), logfields.Error(err))
		}
	}

	w.fingerprint, _ = w.treeFingerprint()
	return w, nil
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if !w.relevant(ev.Name) {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
	w.schedule(ctx)
}

// relevant filters events: inside the config file's directory only the
// config file counts, and editor artifacts never do.
func (w *Watcher) relevant(path string) bool {
	if w.opts.ConfigFile != "" && filepath.Clean(path) == filepath.Clean(w.opts.ConfigFile) {
		return true
	}
	if !within(w.opts.SourceDir, path) || w.ignored(path) {
		return false
	}
	return !shouldIgnoreEvent(path)
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() { w.fire(ctx) })
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// fire runs onChange unless the tree is unchanged since the last trigger.
func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	fp, err := w.treeFingerprint()
	if err != nil {
		slog.Warn("Failed to fingerprint source tree", logfields.Error(err))
	}

	w.mu.Lock()
	unchanged := err == nil && fp == w.fingerprint
	if err == nil {
		w.fingerprint = fp
	}
	w.mu.Unlock()

	if unchanged {
		slog.Debug("Ignoring change event; tree unchanged")
		return
	}
	slog.Info("Change detected; regenerating")
	w.onChange(ctx)
}

func (w *Watcher) ignored(path string) bool {
	for _, dir := range w.opts.IgnoreDirs {
		if dir != "" && within(dir, path) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(root string) error {
	if _, err := os.Stat(root); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot watch directory").WithPath(root).Build()
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if w.ignored(path) {
				return filepath.SkipDir
			}
			if err := w.fs.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Dir(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// treeFingerprint hashes (path, size, mtime) of every watched file.
func (w *Watcher) treeFingerprint() (string, error) {
	var entries []string
	err := filepath.WalkDir(w.opts.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.opts.SourceDir && w.ignored(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldIgnoreEvent(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		entries = append(entries, fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()))
		return nil
	})
	if err != nil {
		return "", err
	}
	if w.opts.ConfigFile != "" {
		if info, err := os.Stat(w.opts.ConfigFile); err == nil {
			entries = append(entries, fmt.Sprintf("%s|%d|%d", w.opts.ConfigFile, info.Size(), info.ModTime().UnixNano()))
		}
	}
	slices.Sort(entries)

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// shouldIgnoreEvent reports whether path is an editor or OS artifact.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
