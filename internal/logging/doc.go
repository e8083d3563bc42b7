// Package logging provides structured logging for laneguard hook invocations.
//
// Hook output travels on stdout, so log lines never do. They are appended as
// JSON to a file next to the coordination state (hooks.log by default), and
// the file is rotated by size.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(logPath, "WARN", logging.DefaultRotationConfig())
//	if err != nil {
//	    logger = logging.NopLogger()
//	}
//	defer logger.Close()
//
//	logger.Warn("blocked git write", "pattern", "commit")
//
// # Context Propagation
//
// Child loggers carry the hook's identity on every line:
//
//	hookLogger := logger.WithSession("s1").WithAgent("a1").WithEvent("PreToolUse")
//	hookLogger.Warn("blocked git write")
//
// Output:
//
//	{"time":"...","level":"WARN","msg":"blocked git write","session_id":"s1","agent_id":"a1","event":"PreToolUse"}
//
// # Log Rotation
//
// [RotatingWriter] renames hooks.log to hooks.log.1 when it grows past
// MaxSizeMB, shifting older backups up to MaxBackups.
//
// # Reading Logs Back
//
// [AggregateLogs] reads the live file and its backups, [FilterLogs] narrows
// the result by level, session, agent, event, time range, or message text,
// and [WriteText] or [WriteJSON] render it.
//
// # Log Levels
//
//   - [LevelDebug]: payload parsing and routing details
//   - [LevelInfo]: handled events
//   - [LevelWarn]: denied commands, malformed payloads, fail-open recoveries (default)
//   - [LevelError]: state write failures
package logging
