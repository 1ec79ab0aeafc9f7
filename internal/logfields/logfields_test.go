package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"PassID", KeyPassID, "p1", PassID("p1")},
		{"Stage", KeyStage, "walk", Stage("walk")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Source", KeySource, "a.md", Source("a.md")},
		{"Output", KeyOutput, "dist/a.html", Output("dist/a.html")},
		{"URL", KeyURL, "/blog/", URL("/blog/")},
		{"Template", KeyTemplate, "main", Template("main")},
		{"Hook", KeyHook, "reading-time", Hook("reading-time")},
		{"Dir", KeyDir, "blog", Dir("blog")},
		{"Outcome", KeyOutcome, "success", Outcome("success")},
		{"Event", KeyEvent, "WRITE", Event("WRITE")},
		{"Schedule", KeySchedule, "5m", Schedule("5m")},
		{"Subject", KeySubject, "staticgen.passes", Subject("staticgen.passes")},
		{"Addr", KeyAddr, ":1318", Addr(":1318")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"ConfigFile", KeyCfgFilePath, "staticgen.yaml", ConfigFile("staticgen.yaml")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Count(3); v.Key != KeyCount {
		t.Fatalf("Count key mismatch: %s", v.Key)
	}
	if v := Pending(2); v.Key != KeyPending {
		t.Fatalf("Pending key mismatch: %s", v.Key)
	}
	if v := Status(200); v.Key != KeyStatus {
		t.Fatalf("Status key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
