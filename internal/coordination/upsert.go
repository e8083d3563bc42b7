package coordination

import (
	"time"

	"github.com/Iron-Ham/laneguard/internal/event"
)

// UpsertSession creates or updates the session record for ev. It returns
// nil without touching the state when the event has no session key.
func UpsertSession(st *State, ev event.Event, mode Mode, now time.Time) *Session {
	key := SessionKey(ev)
	if key == "" {
		return nil
	}

	incoming := &Session{
		SessionKey: key,
		Mode:       mode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mode == ModeShared {
		lane := LaneID(mode, ev)
		incoming.SharedLaneID = &lane
	}

	merged := mergeSession(st.Sessions[key], incoming)
	st.Sessions[key] = merged
	return merged
}

// UpsertSubagent creates or updates the sub-agent record for ev. Unlike
// UpsertSession it always writes a record, even for an empty session key.
// The status is stopped only for SubagentStop; any other event reactivates.
func UpsertSubagent(st *State, ev event.Event, mode Mode, now time.Time) *Subagent {
	key := SubagentKey(ev)

	status := StatusActive
	if ev.Name == event.SubagentStop {
		status = StatusStopped
	}

	incoming := &Subagent{
		SubagentKey:     key,
		SessionKey:      SessionKey(ev),
		AgentID:         AgentID(ev),
		AgentType:       ev.AgentType,
		LaneID:          LaneID(mode, ev),
		WorkspaceTarget: WorkspaceTarget(mode, ev),
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastToolName:    optional(ev.ToolName),
		LastFilePath:    optional(ev.TouchedPath()),
	}

	merged := mergeSubagent(st.Subagents[key], incoming)
	st.Subagents[key] = merged
	return merged
}

// mergeSession folds incoming into existing. Only created_at carries over:
// any event after a Stop means the session is live again, so stopped_at is
// cleared.
func mergeSession(existing, incoming *Session) *Session {
	if existing == nil {
		return incoming
	}
	incoming.CreatedAt = keepTime(existing.CreatedAt, incoming.CreatedAt)
	return incoming
}

// mergeSubagent folds incoming into existing, keeping created_at and any
// sticky field the incoming event left empty.
func mergeSubagent(existing, incoming *Subagent) *Subagent {
	if existing == nil {
		existing = &Subagent{}
	}
	incoming.CreatedAt = keepTime(existing.CreatedAt, incoming.CreatedAt)
	incoming.AgentType = preferIncoming(incoming.AgentType, existing.AgentType, MainAgentID)
	incoming.LastToolName = preferIncomingPtr(incoming.LastToolName, existing.LastToolName)
	incoming.LastFilePath = preferIncomingPtr(incoming.LastFilePath, existing.LastFilePath)
	return incoming
}

func preferIncoming(incoming, existing, fallback string) string {
	if incoming != "" {
		return incoming
	}
	if existing != "" {
		return existing
	}
	return fallback
}

func preferIncomingPtr(incoming, existing *string) *string {
	if incoming != nil {
		return incoming
	}
	return existing
}

func keepTime(existing, incoming time.Time) time.Time {
	if !existing.IsZero() {
		return existing
	}
	return incoming
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
