package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestAggregateLogs(t *testing.T) {
	t.Run("merges backups and sorts by time", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "hooks.log")
		writeLog(t, logPath+".1",
			`{"time":"2026-01-01T10:00:02Z","level":"WARN","msg":"second","session_id":"s1"}`,
		)
		writeLog(t, logPath+".2",
			`{"time":"2026-01-01T10:00:01Z","level":"INFO","msg":"first"}`,
		)
		writeLog(t, logPath,
			`{"time":"2026-01-01T10:00:03Z","level":"ERROR","msg":"third","agent_id":"a1","event":"Stop","extra":1}`,
		)

		entries, err := AggregateLogs(logPath, 2)
		if err != nil {
			t.Fatalf("AggregateLogs failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("got %d entries, want 3", len(entries))
		}
		for i, want := range []string{"first", "second", "third"} {
			if entries[i].Message != want {
				t.Errorf("entries[%d].Message = %q, want %q", i, entries[i].Message, want)
			}
		}
		last := entries[2]
		if last.AgentID != "a1" || last.Event != "Stop" {
			t.Errorf("last entry = %+v", last)
		}
		if last.Attrs["extra"] != float64(1) {
			t.Errorf("extra attr = %v", last.Attrs["extra"])
		}
	})

	t.Run("no files is not an error", func(t *testing.T) {
		entries, err := AggregateLogs(filepath.Join(t.TempDir(), "hooks.log"), 2)
		if err != nil {
			t.Fatalf("AggregateLogs failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("got %d entries, want 0", len(entries))
		}
	})

	t.Run("skips malformed lines", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "hooks.log")
		writeLog(t, logPath,
			`{"time":"2026-01-01T10:00:01Z","level":"INFO","msg":"ok"}`,
			`{"time":"2026-01-01T10:00:02Z","lev`,
			``,
			`not json`,
		)
		entries, err := AggregateLogs(logPath, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("got %d entries, want 1", len(entries))
		}
	})

	t.Run("reads what the logger wrote", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "hooks.log")
		logger, err := NewLogger(logPath, LevelDebug, DefaultRotationConfig())
		if err != nil {
			t.Fatal(err)
		}
		logger.WithSession("s9").WithEvent("PreToolUse").Warn("blocked git write", "pattern", "commit")
		_ = logger.Close()

		entries, err := AggregateLogs(logPath, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		e := entries[0]
		if e.SessionID != "s9" || e.Event != "PreToolUse" || e.Level != LevelWarn {
			t.Errorf("entry = %+v", e)
		}
		if e.Timestamp.IsZero() {
			t.Error("timestamp was not parsed")
		}
	})
}

func TestFilterLogs(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	entries := []LogEntry{
		{Timestamp: base, Level: LevelDebug, Message: "parsed payload", SessionID: "s1", Event: "SessionStart"},
		{Timestamp: base.Add(time.Minute), Level: LevelWarn, Message: "blocked git write", SessionID: "s1", AgentID: "a1", Event: "PreToolUse"},
		{Timestamp: base.Add(2 * time.Minute), Level: LevelError, Message: "hook failed", SessionID: "s2", Event: "Stop"},
	}

	tests := []struct {
		name   string
		filter LogFilter
		want   int
	}{
		{"empty filter", LogFilter{}, 3},
		{"level warn", LogFilter{Level: "warn"}, 2},
		{"level error", LogFilter{Level: LevelError}, 1},
		{"session", LogFilter{SessionID: "s1"}, 2},
		{"agent", LogFilter{AgentID: "a1"}, 1},
		{"event case-insensitive", LogFilter{Event: "pretooluse"}, 1},
		{"message", LogFilter{MessageContains: "git"}, 1},
		{"start time", LogFilter{StartTime: base.Add(30 * time.Second)}, 2},
		{"end time", LogFilter{EndTime: base.Add(30 * time.Second)}, 1},
		{"combined", LogFilter{SessionID: "s1", Level: LevelWarn}, 1},
		{"no match", LogFilter{SessionID: "nope"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterLogs(entries, tt.filter); len(got) != tt.want {
				t.Errorf("FilterLogs() returned %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestTail(t *testing.T) {
	entries := []LogEntry{{Message: "a"}, {Message: "b"}, {Message: "c"}}

	if got := Tail(entries, 2); len(got) != 2 || got[0].Message != "b" {
		t.Errorf("Tail(2) = %+v", got)
	}
	if got := Tail(entries, 0); len(got) != 3 {
		t.Errorf("Tail(0) = %d entries, want 3", len(got))
	}
	if got := Tail(entries, 10); len(got) != 3 {
		t.Errorf("Tail(10) = %d entries, want 3", len(got))
	}
}

func TestWriteText(t *testing.T) {
	entries := []LogEntry{{
		Timestamp: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		Level:     LevelWarn,
		Message:   "blocked git write",
		SessionID: "s1",
		Event:     "PreToolUse",
		Attrs:     map[string]any{"pattern": "add"},
	}}

	var buf bytes.Buffer
	if err := WriteText(&buf, entries); err != nil {
		t.Fatal(err)
	}
	want := `[2026-01-01 10:00:00.000] WARN - blocked git write (session=s1, event=PreToolUse) {"pattern":"add"}` + "\n"
	if buf.String() != want {
		t.Errorf("WriteText() = %q, want %q", buf.String(), want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("WriteJSON(nil) = %q, want []", buf.String())
	}

	buf.Reset()
	if err := WriteJSON(&buf, []LogEntry{{Level: LevelInfo, Message: "m"}}); err != nil {
		t.Fatal(err)
	}
	var decoded []LogEntry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0].Message != "m" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestParseLogEntry(t *testing.T) {
	if _, err := parseLogEntry("{"); err == nil {
		t.Error("expected error for invalid JSON")
	}

	entry, err := parseLogEntry(`{"time":"bad","level":"INFO","msg":7,"session_id":"s1"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !entry.Timestamp.IsZero() {
		t.Error("unparseable time should stay zero")
	}
	if entry.Message != "" || entry.Attrs["msg"] != float64(7) {
		t.Errorf("non-string msg should land in attrs: %+v", entry)
	}
	if entry.SessionID != "s1" {
		t.Errorf("SessionID = %q", entry.SessionID)
	}
}
