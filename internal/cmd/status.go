package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Iron-Ham/laneguard/internal/config"
	"github.com/Iron-Ham/laneguard/internal/coordination"
	"github.com/Iron-Ham/laneguard/internal/session"
	"github.com/Iron-Ham/laneguard/internal/watch"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded sessions and their sub-agent lanes",
	Long: `Display the coordination state the hook has recorded: every session with
its mode, and every sub-agent with its lane and workspace target.

The state file is only read, never rewritten.

Examples:
  laneguard status
  laneguard status --session s1 --format yaml
  laneguard status --watch`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var (
	statusFormat  string
	statusSession string
	statusWatch   bool
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusFormat, "format", "o", formatTable, "Output format: table, json, or yaml")
	statusCmd.Flags().StringVarP(&statusSession, "session", "s", "", "Only show this session")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Re-render whenever the state file changes")
}

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// statusReport is the rendered view of one state file.
type statusReport struct {
	StatePath string          `json:"state_path" yaml:"state_path"`
	Exists    bool            `json:"exists" yaml:"exists"`
	Corrupt   bool            `json:"corrupt,omitempty" yaml:"corrupt,omitempty"`
	Modified  *time.Time      `json:"modified,omitempty" yaml:"modified,omitempty"`
	Sessions  []sessionReport `json:"sessions" yaml:"sessions"`
}

type sessionReport struct {
	Key          string           `json:"session_key" yaml:"session_key"`
	Mode         string           `json:"mode" yaml:"mode"`
	SharedLaneID string           `json:"shared_lane_id,omitempty" yaml:"shared_lane_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" yaml:"updated_at"`
	StoppedAt    *time.Time       `json:"stopped_at,omitempty" yaml:"stopped_at,omitempty"`
	Subagents    []subagentReport `json:"subagents" yaml:"subagents"`
}

type subagentReport struct {
	AgentID         string    `json:"agent_id" yaml:"agent_id"`
	AgentType       string    `json:"agent_type" yaml:"agent_type"`
	Status          string    `json:"status" yaml:"status"`
	LaneID          string    `json:"lane_id" yaml:"lane_id"`
	WorkspaceTarget string    `json:"workspace_target" yaml:"workspace_target"`
	LastToolName    string    `json:"last_tool_name,omitempty" yaml:"last_tool_name,omitempty"`
	LastFilePath    string    `json:"last_file_path,omitempty" yaml:"last_file_path,omitempty"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(statusFormat)
	switch format {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unsupported format %q (supported: table, json, yaml)", statusFormat)
	}

	statePath, err := resolveStatePath()
	if err != nil {
		return err
	}

	render := func() error {
		report, err := buildStatusReport(cmd.Context(), statePath, statusSession)
		if err != nil {
			return err
		}
		return writeStatus(cmd.OutOrStdout(), report, format)
	}

	if !statusWatch {
		return render()
	}
	return watchStatus(cmd, statePath, render)
}

// resolveStatePath finds the state file the way the hook would from the
// current directory.
func resolveStatePath() (string, error) {
	cfg, _ := config.LoadOrDefault()
	return config.ResolveStatePath(cfg, "")
}

func buildStatusReport(ctx context.Context, statePath, onlySession string) (*statusReport, error) {
	snap, err := session.NewFileStore().Snapshot(ctx, statePath)
	if err != nil {
		return nil, err
	}

	report := &statusReport{
		StatePath: statePath,
		Exists:    snap.Exists,
		Corrupt:   snap.Corrupt,
		Sessions:  []sessionReport{},
	}
	if !snap.ModTime.IsZero() {
		mod := snap.ModTime
		report.Modified = &mod
	}

	for _, sess := range snap.State.SortedSessions() {
		if onlySession != "" && sess.SessionKey != onlySession {
			continue
		}
		sr := sessionReport{
			Key:       sess.SessionKey,
			Mode:      string(sess.Mode),
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
			StoppedAt: sess.StoppedAt,
			Subagents: []subagentReport{},
		}
		if sess.SharedLaneID != nil {
			sr.SharedLaneID = *sess.SharedLaneID
		}
		for _, sub := range snap.State.SessionSubagents(sess.SessionKey) {
			sr.Subagents = append(sr.Subagents, subagentReport{
				AgentID:         sub.AgentID,
				AgentType:       sub.AgentType,
				Status:          string(sub.Status),
				LaneID:          sub.LaneID,
				WorkspaceTarget: sub.WorkspaceTarget,
				LastToolName:    deref(sub.LastToolName),
				LastFilePath:    deref(sub.LastFilePath),
				UpdatedAt:       sub.UpdatedAt,
			})
		}
		report.Sessions = append(report.Sessions, sr)
	}
	return report, nil
}

func writeStatus(w io.Writer, report *statusReport, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, renderStatusTable(report, terminalWidth(w)))
		return err
	}
}

func watchStatus(cmd *cobra.Command, statePath string, render func() error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	redraw := func() {
		if isTerminal(out) {
			// Clear the screen and home the cursor.
			_, _ = io.WriteString(out, "\x1b[H\x1b[2J")
		}
		if err := render(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "laneguard: %v\n", err)
		}
	}

	w, err := watch.New(statePath, redraw)
	if err != nil {
		return err
	}
	w.SetErrorCallback(func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "laneguard: watch error: %v\n", err)
	})

	redraw()
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// modeOrDefault reports the stored mode, or the default for records that
// predate a valid one.
func modeOrDefault(m string) string {
	if mode, ok := coordination.ParseMode(m); ok {
		return string(mode)
	}
	return string(coordination.DefaultMode) + " (default)"
}
