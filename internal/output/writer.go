// Package output issues the asynchronous writes and copies of a generation
// pass and reports their completion to the completion barrier.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"

	"git.home.luguber.info/inful/staticgen/internal/barrier"
	"git.home.luguber.info/inful/staticgen/internal/eventloop"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
	"git.home.luguber.info/inful/staticgen/internal/metrics"
)

// DoneFunc receives the result of one operation. It runs on the event loop
// before the operation's barrier registration is completed. err is nil,
// a WriteError, or a CopyError.
type DoneFunc func(err error)

// Writer performs file I/O on its own goroutines. WriteFile and Copy must be
// called from the event loop; completion is posted back to it.
type Writer struct {
	loop     *eventloop.Loop
	barrier  *barrier.Barrier
	recorder metrics.Recorder
}

// NewWriter returns a Writer bound to loop and b.
func NewWriter(loop *eventloop.Loop, b *barrier.Barrier, recorder metrics.Recorder) *Writer {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Writer{loop: loop, barrier: b, recorder: recorder}
}

// WriteFile writes data to path, creating parent directories.
func (w *Writer) WriteFile(path string, data []byte, done DoneFunc) {
	w.start(path)
	go func() {
		err := writeFile(path, data)
		if err != nil {
			err = errors.WriteError(path, err)
		}
		w.finish(metrics.OperationWrite, path, err, done)
	}()
}

// Copy copies src (a file or a directory tree) to dst.
func (w *Writer) Copy(src, dst string, done DoneFunc) {
	w.start(dst)
	go func() {
		var err error
		if cerr := copy.Copy(src, dst); cerr != nil {
			err = errors.CopyError(src, dst, cerr)
		}
		w.finish(metrics.OperationCopy, dst, err, done)
	}()
}

func (w *Writer) start(id string) {
	w.barrier.Register(id)
	w.recorder.SetPendingOperations(w.barrier.Pending())
}

func (w *Writer) finish(kind metrics.OperationKind, id string, err error, done DoneFunc) {
	settle := func() {
		if err != nil {
			slog.Warn("Output operation failed", slog.String("kind", string(kind)), logfields.Path(id), logfields.Error(err))
			w.recorder.IncOperationResult(kind, metrics.ResultFailed)
		} else {
			w.recorder.IncOperationResult(kind, metrics.ResultSuccess)
		}
		if done != nil {
			done(err)
		}
		w.barrier.Complete(id)
		w.recorder.SetPendingOperations(w.barrier.Pending())
	}
	if !w.loop.Post(settle) {
		slog.Error("Output operation finished after shutdown", logfields.Path(id))
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Reset empties root, creating it when missing. It runs synchronously
// before a pass issues any operation.
func Reset(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(root, 0o750)
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
