package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Iron-Ham/laneguard/internal/config"
	"github.com/Iron-Ham/laneguard/internal/errors"
	"github.com/Iron-Ham/laneguard/internal/hooks"
	"github.com/Iron-Ham/laneguard/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// maxPayloadBytes bounds how much of stdin the hook reads.
const maxPayloadBytes = 8 << 20

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Handle one hook event read from stdin",
	Long: `Read one hook event as JSON from stdin, update the coordination state,
and print the hook decision as a single JSON line on stdout.

The command always exits 0. Internal failures are reported to the host as a
non-blocking system message so that a broken hook never stops the agent.

Examples:
  echo '{"hook_event_name":"SessionStart","session_id":"s1"}' | laneguard hook
  laneguard hook --mode shared < event.json`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)

	hookCmd.Flags().String("mode", "", "coordination mode override: shared or isolated (overrides "+config.EnvModeOverride+")")
}

func runHook(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// An invalid logging section must not stop the hook.
	cfg, _ := config.LoadOrDefault()

	payload, err := readPayload(cmd.InOrStdin(), maxPayloadBytes)
	if err != nil {
		logReadFailure(cfg, err)
		writeOutput(out, hooks.FailOpen(errors.NewHookError("", "read", err)))
		return nil
	}

	d := hooks.NewDispatcher(session.NewFileStore(), cfg)
	writeOutput(out, d.Run(cmd.Context(), payload))
	return nil
}

// readPayload reads the whole event from r. An interactive terminal yields
// an empty payload instead of blocking for input. More than limit bytes is
// an error rather than a truncated event.
func readPayload(r io.Reader, limit int64) ([]byte, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPayloadRead, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", errors.ErrPayloadTooLarge, limit)
	}
	return data, nil
}

// logReadFailure records a payload that never reached the dispatcher. The
// event's cwd is unknown here, so the log goes next to the default state path.
func logReadFailure(cfg *config.Config, err error) {
	statePath, pathErr := config.ResolveStatePath(cfg, "")
	if pathErr != nil {
		return
	}
	logger := hooks.FileLogger(cfg, statePath)
	defer func() { _ = logger.Close() }()
	logger.Warn("hook payload not read", "error", err.Error())
}

func writeOutput(w io.Writer, o hooks.Output) {
	// Nothing useful can be done if stdout is gone.
	_, _ = w.Write(o.Encode())
}
