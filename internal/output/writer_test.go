package output

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/staticgen/internal/barrier"
	"git.home.luguber.info/inful/staticgen/internal/eventloop"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

type harness struct {
	loop    *eventloop.Loop
	barrier *barrier.Barrier
	writer  *Writer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	loop := eventloop.New()
	t.Cleanup(loop.Close)
	b := barrier.New(barrier.PolicyOverwrite)
	return &harness{loop: loop, barrier: b, writer: NewWriter(loop, b, nil)}
}

// drained issues ops on the loop and waits for the barrier continuation.
func (h *harness) drained(t *testing.T, ops func()) {
	t.Helper()
	fired := make(chan struct{})
	require.True(t, h.loop.Post(func() {
		ops()
		h.barrier.Begin(func() { close(fired) })
	}))
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("barrier never fired")
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(t.TempDir(), "dist", "blog", "post1", "index.html")

	var got error
	h.drained(t, func() {
		h.writer.WriteFile(out, []byte("<p>hi</p>"), func(err error) { got = err })
	})

	require.NoError(t, got)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "<p>hi</p>", string(data))
}

func TestWriteFile_FailureStillSettles(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	var got error
	h.drained(t, func() {
		// Parent is a regular file, so MkdirAll fails.
		h.writer.WriteFile(filepath.Join(blocker, "index.html"), []byte("x"), func(err error) { got = err })
	})

	require.Error(t, got)
	require.True(t, errors.HasCategory(got, errors.CategoryFileSystem))
	pending := -1
	require.NoError(t, h.loop.Do(context.Background(), func() { pending = h.barrier.Pending() }))
	require.Equal(t, 0, pending)
}

func TestCopy_FileAndDirectory(t *testing.T) {
	h := newHarness(t)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("b"), 0o600))
	dst := t.TempDir()

	h.drained(t, func() {
		h.writer.Copy(filepath.Join(src, "a.txt"), filepath.Join(dst, "js", "a.txt"), nil)
		h.writer.Copy(filepath.Join(src, "sub"), filepath.Join(dst, "copied"), nil)
	})

	data, err := os.ReadFile(filepath.Join(dst, "js", "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "a", string(data))
	data, err = os.ReadFile(filepath.Join(dst, "copied", "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "b", string(data))
}

func TestCopy_MissingSourceReportsCopyError(t *testing.T) {
	h := newHarness(t)
	var got error
	h.drained(t, func() {
		h.writer.Copy(filepath.Join(t.TempDir(), "missing.js"), filepath.Join(t.TempDir(), "x.js"), func(err error) { got = err })
	})
	require.Error(t, got)
	classified, ok := errors.AsClassified(got)
	require.True(t, ok)
	require.Equal(t, errors.SeverityWarning, classified.Severity())
}

func TestReset(t *testing.T) {
	root := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, Reset(root))
	require.DirExists(t, root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "old", "deep"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stale.html"), []byte("x"), 0o600))
	require.NoError(t, Reset(root))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestReset_RootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0o600))
	err := Reset(root)
	require.Error(t, err)
	require.False(t, stderrors.Is(err, os.ErrNotExist))
}
