// Package testutil provides fixtures for laneguard tests: hook payload
// builders and state-file helpers.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Iron-Ham/laneguard/internal/coordination"
)

// Payload is a hook payload under construction. Methods mutate and return
// the receiver so calls chain.
type Payload map[string]any

// NewPayload starts a payload for eventName. An empty sessionID is omitted.
func NewPayload(eventName, sessionID string) Payload {
	p := Payload{"hook_event_name": eventName}
	if sessionID != "" {
		p["session_id"] = sessionID
	}
	return p
}

// Agent sets agent_id and, when non-empty, agent_type.
func (p Payload) Agent(id, agentType string) Payload {
	p["agent_id"] = id
	if agentType != "" {
		p["agent_type"] = agentType
	}
	return p
}

// Tool sets tool_name and tool_input.
func (p Payload) Tool(name string, input map[string]any) Payload {
	p["tool_name"] = name
	if input != nil {
		p["tool_input"] = input
	}
	return p
}

// Bash sets a Bash tool invocation running command.
func (p Payload) Bash(command string) Payload {
	return p.Tool("Bash", map[string]any{"command": command})
}

// Response sets tool_response.
func (p Payload) Response(resp map[string]any) Payload {
	p["tool_response"] = resp
	return p
}

// StopHookActive sets the Stop re-entrancy flag.
func (p Payload) StopHookActive(active bool) Payload {
	p["stop_hook_active"] = active
	return p
}

// CWD sets the working directory the host reports.
func (p Payload) CWD(dir string) Payload {
	p["cwd"] = dir
	return p
}

// Bytes encodes the payload.
func (p Payload) Bytes(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}
	return data
}

// ClearHookEnv unsets every environment variable the hook reads, for the
// duration of the test.
func ClearHookEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GITBUTLER_COORDINATION_MODE",
		"GITBUTLER_HOOK_STATE_PATH",
		"CLAUDE_PROJECT_DIR",
		"LANEGUARD_COORDINATION_MODE",
		"LANEGUARD_STATE_PATH",
		"LANEGUARD_STATE_PROJECT_DIR",
	} {
		t.Setenv(name, "")
	}
}

// StatePath returns a state file location inside a fresh temp project
// directory. The file does not exist yet.
func StatePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".claude", "gitbutler", "hooks-state.json")
}

// WriteStateFile writes content to path, creating parent directories.
func WriteStateFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create state dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write state file: %v", err)
	}
}

// ReadState loads the state file at path. A missing file fails the test.
func ReadState(t *testing.T, path string) *coordination.State {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read state file: %v", err)
	}
	return coordination.Decode(data)
}

// ReadRawState returns the state file as a generic JSON object.
func ReadRawState(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read state file: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("state file is not a JSON object: %v", err)
	}
	return raw
}
