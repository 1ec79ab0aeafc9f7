package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: NewError(CategoryValidation, "invalid input").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "template", err: TemplateNotFound("main", "/t/main.html", nil), expected: 9},
		{name: "content", err: ContentParseError("a.md", nil), expected: 9},
		{name: "filesystem", err: WriteError("dist/a.html", nil), expected: 11},
		{name: "unclassified", err: stderrors.New("unknown error"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	t.Run("classified with path", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, nil)
		got := adapter.FormatError(PathError("/tmp/x.png"))
		if got != "Error: unexpected source file location: /tmp/x.png" {
			t.Errorf("FormatError() = %q", got)
		}
	})

	t.Run("verbose shows full chain", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(true, nil)
		got := adapter.FormatError(PathError("/tmp/x.png"))
		if !strings.Contains(got, ErrPathOutsideRoots.Error()) {
			t.Errorf("FormatError() = %q", got)
		}
	})

	t.Run("nil", func(t *testing.T) {
		if NewCLIErrorAdapter(false, nil).FormatError(nil) != "" {
			t.Error("expected empty string")
		}
	})
}

func TestCLIErrorAdapter_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewCLIErrorAdapter(false, logger)

	adapter.Log(WriteError("dist/a.html", stderrors.New("eacces")))
	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected warning level, got %q", out)
	}
	if !strings.Contains(out, "path=dist/a.html") {
		t.Errorf("expected path attr, got %q", out)
	}
}
