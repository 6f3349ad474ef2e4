package notify

import (
	"testing"
)

type recordingLogger struct {
	levels []string
}

func (r *recordingLogger) InfoObj(string, string, interface{})  { r.levels = append(r.levels, "info") }
func (r *recordingLogger) DebugObj(string, string, interface{}) { r.levels = append(r.levels, "debug") }
func (r *recordingLogger) WarnObj(string, string, interface{})  { r.levels = append(r.levels, "warn") }
func (r *recordingLogger) ErrorObj(string, string, interface{}) { r.levels = append(r.levels, "error") }

func TestLogNotifierLevels(t *testing.T) {
	rec := &recordingLogger{}
	n := NewLog(rec)

	n.Create("careful", MessageOptions{Type: TypeWarning, Closable: true})
	n.Create("fyi", MessageOptions{Type: TypeInfo})
	n.Error("failed")
	n.Redirect("/NotFound")

	want := []string{"warn", "info", "error", "info"}
	if len(rec.levels) != len(want) {
		t.Fatalf("expected %d log lines, got %v", len(want), rec.levels)
	}
	for i := range want {
		if rec.levels[i] != want[i] {
			t.Fatalf("line %d: expected %s, got %s", i, want[i], rec.levels[i])
		}
	}
}

func TestMultiForwardsToAll(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, nil, b}

	m.Create("warn", MessageOptions{Type: TypeWarning})
	m.Error("boom")

	for _, r := range []*Recorder{a, b} {
		entries := r.Entries()
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %#v", entries)
		}
		if entries[1].Message != "boom" || entries[1].Options.Type != TypeError {
			t.Fatalf("unexpected error entry %#v", entries[1])
		}
	}
}

func TestNavigatorFunc(t *testing.T) {
	var got string
	NavigatorFunc(func(path string) { got = path }).Redirect("/NotFound")
	if got != "/NotFound" {
		t.Fatalf("expected redirect path, got %q", got)
	}
}
