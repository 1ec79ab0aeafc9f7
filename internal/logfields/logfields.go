package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPassID      = "pass_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeySource      = "source"
	KeyOutput      = "output"
	KeyURL         = "url"
	KeyTemplate    = "template"
	KeyHook        = "hook"
	KeyDir         = "dir"
	KeyCount       = "count"
	KeyPending     = "pending"
	KeyOutcome     = "outcome"
	KeyEvent       = "event"
	KeySchedule    = "schedule"
	KeySubject     = "subject"
	KeyAddr        = "addr"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeyError       = "error"
	KeyCfgFilePath = "config_file"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PassID(id string) slog.Attr      { return slog.String(KeyPassID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Template(n string) slog.Attr     { return slog.String(KeyTemplate, n) }
func Hook(n string) slog.Attr         { return slog.String(KeyHook, n) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Pending(n int) slog.Attr         { return slog.Int(KeyPending, n) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Event(op string) slog.Attr       { return slog.String(KeyEvent, op) }
func Schedule(s string) slog.Attr     { return slog.String(KeySchedule, s) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func ConfigFile(p string) slog.Attr   { return slog.String(KeyCfgFilePath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
