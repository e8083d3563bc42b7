package event

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Hook event names recognized by the dispatcher.
const (
	SessionStart  = "SessionStart"
	SubagentStart = "SubagentStart"
	PreToolUse    = "PreToolUse"
	PostToolUse   = "PostToolUse"
	SubagentStop  = "SubagentStop"
	Stop          = "Stop"

	// Unknown names payloads that are malformed or carry no event name.
	Unknown = "unknown"
)

// Payload paths read from the host's JSON object.
const (
	pathEventName        = "hook_event_name"
	pathSessionID        = "session_id"
	pathAgentID          = "agent_id"
	pathAgentType        = "agent_type"
	pathToolName         = "tool_name"
	pathCommand          = "tool_input.command"
	pathFilePath         = "tool_input.file_path"
	pathResponseFilePath = "tool_response.filePath"
	pathStopHookActive   = "stop_hook_active"
	pathCWD              = "cwd"
)

// Event is one hook invocation's payload. Name is trimmed once here; the
// other string fields hold the raw values and key derivation normalizes them.
type Event struct {
	Name             string
	SessionID        string
	AgentID          string
	AgentType        string
	ToolName         string
	Command          string
	FilePath         string
	ResponseFilePath string
	StopHookActive   bool
	CWD              string

	// ParseError is set when the payload was not valid JSON.
	ParseError string
}

// Parse decodes a raw hook payload. It never fails: empty input yields an
// empty event named Unknown, and invalid JSON yields an Unknown event with
// ParseError set.
func Parse(data []byte) Event {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Event{Name: Unknown}
	}
	if !gjson.ValidBytes(data) {
		return Event{
			Name:       Unknown,
			ParseError: fmt.Sprintf("invalid JSON payload (%d bytes)", len(data)),
		}
	}

	root := gjson.ParseBytes(data)
	ev := Event{
		Name:             strings.TrimSpace(root.Get(pathEventName).String()),
		SessionID:        root.Get(pathSessionID).String(),
		AgentID:          root.Get(pathAgentID).String(),
		AgentType:        root.Get(pathAgentType).String(),
		ToolName:         root.Get(pathToolName).String(),
		Command:          root.Get(pathCommand).String(),
		FilePath:         root.Get(pathFilePath).String(),
		ResponseFilePath: root.Get(pathResponseFilePath).String(),
		StopHookActive:   root.Get(pathStopHookActive).Type == gjson.True,
		CWD:              root.Get(pathCWD).String(),
	}
	if ev.Name == "" {
		ev.Name = Unknown
	}
	return ev
}

// Retag returns a copy of the event attributed to a different event name
// and agent. The receiver is not modified.
func (e Event) Retag(name, agentID string) Event {
	e.Name = name
	e.AgentID = agentID
	return e
}

// TouchedPath returns the file path the tool invocation referenced, preferring
// the request's tool_input over the tool_response.
func (e Event) TouchedPath() string {
	if e.FilePath != "" {
		return e.FilePath
	}
	return e.ResponseFilePath
}

// IsKnown reports whether the event name has a dedicated handler.
func (e Event) IsKnown() bool {
	switch e.Name {
	case SessionStart, SubagentStart, PreToolUse, PostToolUse, SubagentStop, Stop:
		return true
	default:
		return false
	}
}
