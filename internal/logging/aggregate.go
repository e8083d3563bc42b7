package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// LogEntry is one parsed log line.
type LogEntry struct {
	Timestamp time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	SessionID string         `json:"session_id,omitempty"`
	AgentID   string         `json:"agent_id,omitempty"`
	Event     string         `json:"event,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogFilter selects log entries. Set fields are combined with AND; zero
// values match everything.
type LogFilter struct {
	// Level keeps entries at or above this level (DEBUG < INFO < WARN < ERROR).
	Level string

	StartTime time.Time
	EndTime   time.Time

	SessionID string
	AgentID   string
	Event     string

	// MessageContains keeps entries whose message contains this substring.
	MessageContains string
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// AggregateLogs reads the log file at logPath together with up to
// maxBackups rotated siblings and returns every parseable entry sorted by
// time. Missing files are skipped; it is not an error for none to exist.
func AggregateLogs(logPath string, maxBackups int) ([]LogEntry, error) {
	paths := append(BackupPaths(logPath, maxBackups), logPath)

	var entries []LogEntry
	for _, path := range paths {
		fileEntries, err := readLogFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		entries = append(entries, fileEntries...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

func readLogFile(path string) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)

	const maxScanTokenSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Skip lines torn by a concurrent writer or a crash.
		entry, err := parseLogEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file %s: %w", path, err)
	}
	return entries, nil
}

// parseLogEntry parses a single JSON log line into a LogEntry.
func parseLogEntry(line string) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	entry := LogEntry{Attrs: make(map[string]any)}

	for key, value := range raw {
		str, isString := value.(string)
		switch {
		case key == slogTimeKey && isString:
			if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
				entry.Timestamp = t
			}
		case key == slogLevelKey && isString:
			entry.Level = str
		case key == slogMessageKey && isString:
			entry.Message = str
		case key == KeySession && isString:
			entry.SessionID = str
		case key == KeyAgent && isString:
			entry.AgentID = str
		case key == KeyEvent && isString:
			entry.Event = str
		default:
			entry.Attrs[key] = value
		}
	}

	return entry, nil
}

const (
	slogTimeKey    = "time"
	slogLevelKey   = "level"
	slogMessageKey = "msg"
)

// FilterLogs returns the entries matching filter.
func FilterLogs(entries []LogEntry, filter LogFilter) []LogEntry {
	if filter == (LogFilter{}) {
		return entries
	}

	var filtered []LogEntry
	for _, entry := range entries {
		if matchesFilter(entry, filter) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func matchesFilter(entry LogEntry, filter LogFilter) bool {
	if filter.Level != "" {
		want := levelOrder[ParseLevel(filter.Level)]
		if got, ok := levelOrder[entry.Level]; ok && got < want {
			return false
		}
	}

	if !filter.StartTime.IsZero() && entry.Timestamp.Before(filter.StartTime) {
		return false
	}
	if !filter.EndTime.IsZero() && entry.Timestamp.After(filter.EndTime) {
		return false
	}

	if filter.SessionID != "" && entry.SessionID != filter.SessionID {
		return false
	}
	if filter.AgentID != "" && entry.AgentID != filter.AgentID {
		return false
	}
	if filter.Event != "" && !strings.EqualFold(entry.Event, filter.Event) {
		return false
	}

	if filter.MessageContains != "" && !strings.Contains(entry.Message, filter.MessageContains) {
		return false
	}
	return true
}

// Tail returns the last n entries, or all of them when n <= 0.
func Tail(entries []LogEntry, n int) []LogEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}

// WriteText renders entries one per line:
//
//	[2006-01-02 15:04:05.000] WARN - message (session=s1, agent=a1, event=Stop) {"k":"v"}
func WriteText(w io.Writer, entries []LogEntry) error {
	for _, entry := range entries {
		parts := []string{
			fmt.Sprintf("[%s]", entry.Timestamp.Format("2006-01-02 15:04:05.000")),
			entry.Level,
			"-",
			entry.Message,
		}

		var scope []string
		if entry.SessionID != "" {
			scope = append(scope, "session="+entry.SessionID)
		}
		if entry.AgentID != "" {
			scope = append(scope, "agent="+entry.AgentID)
		}
		if entry.Event != "" {
			scope = append(scope, "event="+entry.Event)
		}
		if len(scope) > 0 {
			parts = append(parts, fmt.Sprintf("(%s)", strings.Join(scope, ", ")))
		}

		if len(entry.Attrs) > 0 {
			if attrs, err := json.Marshal(entry.Attrs); err == nil {
				parts = append(parts, string(attrs))
			}
		}

		if _, err := io.WriteString(w, strings.Join(parts, " ")+"\n"); err != nil {
			return fmt.Errorf("failed to write log entry: %w", err)
		}
	}
	return nil
}

// WriteJSON renders entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []LogEntry) error {
	if entries == nil {
		entries = []LogEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
