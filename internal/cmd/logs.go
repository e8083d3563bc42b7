package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/laneguard/internal/config"
	"github.com/Iron-Ham/laneguard/internal/logging"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View hook logs",
	Long: `View and filter the hook log written next to the state file, including
rotated backups.

Examples:
  # Show the last 50 entries
  laneguard logs

  # Show every blocked command for one session
  laneguard logs --session s1 --event PreToolUse -n 0

  # Show warnings from the last hour as JSON
  laneguard logs --level warn --since 1h --format json`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsSessionID string
	logsAgentID   string
	logsEvent     string
	logsLevel     string
	logsSince     string
	logsGrep      string
	logsTail      int
	logsFormat    string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsSessionID, "session", "s", "", "Filter by session id")
	logsCmd.Flags().StringVar(&logsAgentID, "agent", "", "Filter by agent id")
	logsCmd.Flags().StringVarP(&logsEvent, "event", "e", "", "Filter by hook event name")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter by message substring")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVarP(&logsFormat, "format", "o", "text", "Output format: text or json")
}

func runLogs(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(logsFormat)
	if format != "text" && format != formatJSON {
		return fmt.Errorf("unsupported format %q (supported: text, json)", logsFormat)
	}

	filter := logging.LogFilter{
		Level:           logsLevel,
		SessionID:       logsSessionID,
		AgentID:         logsAgentID,
		Event:           logsEvent,
		MessageContains: logsGrep,
	}
	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since duration %q: %w", logsSince, err)
		}
		filter.StartTime = time.Now().Add(-d)
	}

	cfg, _ := config.LoadOrDefault()
	statePath, err := config.ResolveStatePath(cfg, "")
	if err != nil {
		return err
	}
	logPath := config.ResolveLogPath(cfg, statePath)

	entries, err := logging.AggregateLogs(logPath, cfg.Logging.MaxBackups)
	if err != nil {
		return fmt.Errorf("failed to read logs: %w", err)
	}
	entries = logging.Tail(logging.FilterLogs(entries, filter), logsTail)

	out := cmd.OutOrStdout()
	if format == formatJSON {
		return logging.WriteJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No log entries in %s\n", logPath)
		return nil
	}
	return logging.WriteText(out, entries)
}
