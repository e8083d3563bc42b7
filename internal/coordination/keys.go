package coordination

import (
	"strings"

	"github.com/Iron-Ham/laneguard/internal/event"
)

// MainAgentID is the reserved agent id for the session's top-level actor.
const MainAgentID = "main"

// SessionKey returns the trimmed session id, or "" when the event has none.
func SessionKey(ev event.Event) string {
	return strings.TrimSpace(ev.SessionID)
}

// AgentID returns the trimmed agent id, defaulting to MainAgentID.
func AgentID(ev event.Event) string {
	if id := strings.TrimSpace(ev.AgentID); id != "" {
		return id
	}
	return MainAgentID
}

// SubagentKey joins the session key and agent id with a colon.
func SubagentKey(ev event.Event) string {
	return SessionKey(ev) + ":" + AgentID(ev)
}

// LaneID returns the lane an event's agent works in under the given mode.
func LaneID(mode Mode, ev event.Event) string {
	if mode == ModeShared {
		return "lane:" + SessionKey(ev) + ":shared"
	}
	return "lane:" + SessionKey(ev) + ":" + AgentID(ev)
}

// WorkspaceTarget returns the addressable handle for an event's lane.
func WorkspaceTarget(mode Mode, ev event.Event) string {
	return "stack:" + LaneID(mode, ev)
}
