// Package walker enumerates a content root as a lazy sequence of directory
// batches.
package walker

import (
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/staticgen/internal/logfields"
)

// Batch is one directory and its member files. Batches are transient and
// must not be retained across passes.
type Batch struct {
	Dir   string
	Files []string
}

// Options controls which entries become batch members.
type Options struct {
	// ThemeDir is the name of the theme subdirectory of the root. It is never
	// entered.
	ThemeDir string
	// Extension restricts members to files with this suffix. Empty means every
	// non-hidden file is a member.
	Extension string
	// TemplateExt marks theme template files. Such files are never members.
	TemplateExt string
}

// Batches walks root depth-first in pre-order: a directory's batch is
// yielded before any of its subdirectories are visited. Entries are visited
// in lexical order. Hidden files and directories are skipped, and every
// visited directory is yielded even when it has no member files.
//
// The sequence is single-use; iterating it again starts a fresh walk.
func Batches(root string, opts Options) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		w := &walk{root: filepath.Clean(root), opts: opts, yield: yield}
		w.dir(w.root)
	}
}

// Walk invokes fn for every batch. It stops at the first error.
func Walk(root string, opts Options, fn func(Batch) error) error {
	for batch, err := range Batches(root, opts) {
		if err != nil {
			return err
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}

type walk struct {
	root  string
	opts  Options
	yield func(Batch, error) bool
}

// dir returns false once the consumer stopped iterating.
func (w *walk) dir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.yield(Batch{Dir: dir}, fmt.Errorf("read directory %s: %w", dir, err))
		return false
	}

	files := make([]string, 0, len(entries))
	var dirs []string
	for _, e := range entries {
		name := e.Name()
		full := filepath.Join(dir, name)
		if isHidden(name) {
			continue
		}
		if isDir(full, e) {
			if dir == w.root && w.opts.ThemeDir != "" && name == w.opts.ThemeDir {
				continue
			}
			dirs = append(dirs, full)
			continue
		}
		if w.member(name) {
			files = append(files, full)
		}
	}

	slog.Debug("Walking directory", logfields.Dir(dir), logfields.Count(len(files)))
	if !w.yield(Batch{Dir: dir, Files: files}, nil) {
		return false
	}
	for _, sub := range dirs {
		if !w.dir(sub) {
			return false
		}
	}
	return true
}

func (w *walk) member(name string) bool {
	if w.opts.TemplateExt != "" && strings.HasSuffix(name, w.opts.TemplateExt) {
		return false
	}
	return w.opts.Extension == "" || strings.HasSuffix(name, w.opts.Extension)
}

func isDir(full string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink != 0 {
		fi, err := os.Stat(full)
		return err == nil && fi.IsDir()
	}
	return e.IsDir()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
