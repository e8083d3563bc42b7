package event

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Event
	}{
		{
			name:    "empty payload",
			payload: "  \n",
			want:    Event{Name: Unknown},
		},
		{
			name: "full pre tool use payload",
			payload: `{
				"hook_event_name": "PreToolUse",
				"session_id": " s1 ",
				"agent_id": "a1",
				"agent_type": "reviewer",
				"tool_name": "Bash",
				"tool_input": {"command": "git status", "file_path": "/repo/a.go"},
				"tool_response": {"filePath": "/repo/b.go"},
				"cwd": "/repo"
			}`,
			want: Event{
				Name:             PreToolUse,
				SessionID:        " s1 ",
				AgentID:          "a1",
				AgentType:        "reviewer",
				ToolName:         "Bash",
				Command:          "git status",
				FilePath:         "/repo/a.go",
				ResponseFilePath: "/repo/b.go",
				CWD:              "/repo",
			},
		},
		{
			name:    "missing event name",
			payload: `{"session_id": "s1"}`,
			want:    Event{Name: Unknown, SessionID: "s1"},
		},
		{
			name:    "non object payload",
			payload: `[1, 2, 3]`,
			want:    Event{Name: Unknown},
		},
		{
			name:    "numeric session id is coerced",
			payload: `{"hook_event_name": "Stop", "session_id": 42}`,
			want:    Event{Name: Stop, SessionID: "42"},
		},
		{
			name:    "stop hook active only when literally true",
			payload: `{"hook_event_name": "Stop", "stop_hook_active": "true"}`,
			want:    Event{Name: Stop},
		},
		{
			name:    "stop hook active true",
			payload: `{"hook_event_name": "Stop", "stop_hook_active": true}`,
			want:    Event{Name: Stop, StopHookActive: true},
		},
		{
			name:    "event name is trimmed",
			payload: `{"hook_event_name": " SubagentStop\n", "agent_id": " a "}`,
			want:    Event{Name: SubagentStop, AgentID: " a "},
		},
		{
			name:    "blank event name",
			payload: `{"hook_event_name": "   "}`,
			want:    Event{Name: Unknown},
		},
		{
			name:    "string tool response is tolerated",
			payload: `{"hook_event_name": "PostToolUse", "tool_response": "ok"}`,
			want:    Event{Name: PostToolUse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse([]byte(tt.payload))
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	got := Parse([]byte(`{"hook_event_name": "PreToolUse",`))
	if got.Name != Unknown {
		t.Errorf("Name = %q, want %q", got.Name, Unknown)
	}
	if got.ParseError == "" {
		t.Error("expected ParseError to be set")
	}
	if got.IsKnown() {
		t.Error("malformed payload should not be a known event")
	}
}

func TestRetag(t *testing.T) {
	orig := Event{Name: SubagentStart, SessionID: "s1", AgentID: "worker"}
	retagged := orig.Retag(SessionStart, "main")

	if retagged.Name != SessionStart || retagged.AgentID != "main" {
		t.Errorf("Retag() = %+v", retagged)
	}
	if retagged.SessionID != "s1" {
		t.Errorf("SessionID = %q, want %q", retagged.SessionID, "s1")
	}
	if orig.Name != SubagentStart || orig.AgentID != "worker" {
		t.Error("Retag should not modify the receiver")
	}
}

func TestTouchedPath(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"prefers tool input", Event{FilePath: "a", ResponseFilePath: "b"}, "a"},
		{"falls back to response", Event{ResponseFilePath: "b"}, "b"},
		{"empty", Event{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.TouchedPath(); got != tt.want {
				t.Errorf("TouchedPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
