package hooks

import (
	"fmt"
	"time"

	"github.com/Iron-Ham/laneguard/internal/coordination"
	"github.com/Iron-Ham/laneguard/internal/errors"
	"github.com/Iron-Ham/laneguard/internal/event"
	"github.com/Iron-Ham/laneguard/internal/logging"
	"github.com/Iron-Ham/laneguard/internal/policy"
)

// call is everything one handler invocation may read or mutate.
type call struct {
	ev       event.Event
	state    *coordination.State
	override string
	now      time.Time
	log      *logging.Logger
}

// handlerFunc handles one hook event. Handlers mutate c.state in place and
// never persist it themselves.
type handlerFunc func(c *call) Output

// handlers maps hook event names to their handler. Anything else goes to
// handleDefault.
var handlers = map[string]handlerFunc{
	event.SessionStart:  handleSessionStart,
	event.SubagentStart: handleSubagentStart,
	event.PreToolUse:    handlePreToolUse,
	event.PostToolUse:   handlePostToolUse,
	event.SubagentStop:  handleSubagentStop,
	event.Stop:          handleStop,
}

func lookupHandler(ev event.Event) handlerFunc {
	if !ev.IsKnown() {
		return handleDefault
	}
	return handlers[ev.Name]
}

// prologue resolves the mode and upserts the session and the event's
// sub-agent. Every handler except Stop and the default runs it first.
func (c *call) prologue() (coordination.Mode, *coordination.Subagent) {
	existing := c.state.Sessions[coordination.SessionKey(c.ev)]
	mode := coordination.ResolveMode(c.override, existing)

	if coordination.UpsertSession(c.state, c.ev, mode, c.now) == nil {
		c.log.Debug("session not recorded", "reason", errors.ErrEmptySessionKey.Error())
	}
	sub := coordination.UpsertSubagent(c.state, c.ev, mode, c.now)

	c.log.Debug("routed hook event",
		"mode", string(mode),
		"subagent_key", sub.SubagentKey,
		"workspace_target", sub.WorkspaceTarget,
	)
	return mode, sub
}

func handleSessionStart(c *call) Output {
	mode, _ := c.prologue()

	// The main agent never gets a SubagentStart of its own.
	mainEv := c.ev.Retag(event.SessionStart, coordination.MainAgentID)
	coordination.UpsertSubagent(c.state, mainEv, mode, c.now)

	return EventContext(event.SessionStart,
		fmt.Sprintf("GitButler coordination initialized in %s mode.", mode))
}

func handleSubagentStart(c *call) Output {
	mode, sub := c.prologue()
	return EventContext(event.SubagentStart,
		fmt.Sprintf("Assigned %s to %s using %s coordination mode.", sub.SubagentKey, sub.WorkspaceTarget, mode))
}

func handlePreToolUse(c *call) Output {
	mode, sub := c.prologue()

	switch {
	case !policy.IsGuarded(c.ev.ToolName):
	case c.ev.ToolName == policy.BashTool:
		verdict := policy.EvaluateBashCommand(c.ev.Command)
		if !verdict.Allow {
			c.log.Warn("blocked raw git write command",
				"pattern", verdict.Pattern,
				"command", c.ev.Command,
			)
			return PreToolDeny(verdict.Reason)
		}
	default:
		c.log.Debug("write tool routed",
			"tool", c.ev.ToolName,
			"file_path", c.ev.TouchedPath(),
			"workspace_target", sub.WorkspaceTarget,
		)
	}

	return PreToolAllow(
		fmt.Sprintf("Routed via %s mode", mode),
		fmt.Sprintf("Using %s for %s", sub.WorkspaceTarget, sub.SubagentKey),
	)
}

func handlePostToolUse(c *call) Output {
	_, sub := c.prologue()
	return EventContext(event.PostToolUse,
		fmt.Sprintf("Recorded tool output ownership for %s in %s.", sub.SubagentKey, sub.WorkspaceTarget))
}

func handleSubagentStop(c *call) Output {
	// UpsertSubagent marks the record stopped because of the event name.
	_, sub := c.prologue()
	return EventContext(event.SubagentStop,
		fmt.Sprintf("Subagent %s stopped; lane %s released.", sub.SubagentKey, sub.LaneID))
}

// handleStop only reads existing state: no mode resolution, no sub-agent
// upsert. A re-entrant Stop (stop_hook_active) changes nothing.
func handleStop(c *call) Output {
	key := coordination.SessionKey(c.ev)
	if key == "" {
		c.log.Debug("stop skipped", "reason", errors.ErrEmptySessionKey.Error())
		return NoopOutput()
	}

	sess, ok := c.state.Sessions[key]
	if !ok {
		c.log.Debug("stop for unknown session")
		return NoopOutput()
	}

	if c.ev.StopHookActive {
		c.log.Debug("stop hook already active, skipping")
		return NoopOutput()
	}

	stoppedAt := c.now
	sess.UpdatedAt = stoppedAt
	sess.StoppedAt = &stoppedAt

	return EventContext(event.Stop,
		fmt.Sprintf("Session %s stopped under %s coordination mode.", key, sess.Mode))
}

func handleDefault(c *call) Output {
	if c.ev.Name != event.Unknown {
		c.log.Debug("no handler for hook event")
	}
	return NoopOutput()
}
