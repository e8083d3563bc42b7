package coordination

import (
	"testing"

	"github.com/Iron-Ham/laneguard/internal/event"
)

func TestSessionKeyAndAgentID(t *testing.T) {
	tests := []struct {
		name        string
		ev          event.Event
		wantSession string
		wantAgent   string
		wantKey     string
	}{
		{"plain", event.Event{SessionID: "s1", AgentID: "a1"}, "s1", "a1", "s1:a1"},
		{"trims whitespace", event.Event{SessionID: "  s1\t", AgentID: " a1 "}, "s1", "a1", "s1:a1"},
		{"defaults agent to main", event.Event{SessionID: "s1"}, "s1", MainAgentID, "s1:main"},
		{"blank agent is main", event.Event{SessionID: "s1", AgentID: "   "}, "s1", MainAgentID, "s1:main"},
		{"empty session", event.Event{AgentID: "a1"}, "", "a1", ":a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionKey(tt.ev); got != tt.wantSession {
				t.Errorf("SessionKey() = %q, want %q", got, tt.wantSession)
			}
			if got := AgentID(tt.ev); got != tt.wantAgent {
				t.Errorf("AgentID() = %q, want %q", got, tt.wantAgent)
			}
			if got := SubagentKey(tt.ev); got != tt.wantKey {
				t.Errorf("SubagentKey() = %q, want %q", got, tt.wantKey)
			}
		})
	}
}

func TestSubagentKey_IgnoresOtherFields(t *testing.T) {
	a := event.Event{Name: event.PreToolUse, SessionID: "s1", AgentID: "a1", ToolName: "Bash", Command: "ls"}
	b := event.Event{Name: event.SubagentStop, SessionID: "s1", AgentID: "a1", AgentType: "reviewer", CWD: "/x"}

	if SubagentKey(a) != SubagentKey(b) {
		t.Errorf("SubagentKey differs: %q vs %q", SubagentKey(a), SubagentKey(b))
	}
}

func TestLaneID(t *testing.T) {
	e1 := event.Event{SessionID: "s1", AgentID: "alpha"}
	e2 := event.Event{SessionID: "s1", AgentID: "beta"}

	t.Run("shared collapses agents of one session", func(t *testing.T) {
		if LaneID(ModeShared, e1) != LaneID(ModeShared, e2) {
			t.Errorf("shared lanes differ: %q vs %q", LaneID(ModeShared, e1), LaneID(ModeShared, e2))
		}
		if got := LaneID(ModeShared, e1); got != "lane:s1:shared" {
			t.Errorf("LaneID() = %q, want %q", got, "lane:s1:shared")
		}
	})

	t.Run("isolated separates agents", func(t *testing.T) {
		if LaneID(ModeIsolated, e1) == LaneID(ModeIsolated, e2) {
			t.Errorf("isolated lanes should differ, both %q", LaneID(ModeIsolated, e1))
		}
		if got := LaneID(ModeIsolated, e1); got != "lane:s1:alpha" {
			t.Errorf("LaneID() = %q, want %q", got, "lane:s1:alpha")
		}
	})

	t.Run("unknown mode behaves as isolated", func(t *testing.T) {
		if got := LaneID(Mode("bogus"), e1); got != "lane:s1:alpha" {
			t.Errorf("LaneID() = %q, want %q", got, "lane:s1:alpha")
		}
	})
}

func TestWorkspaceTarget(t *testing.T) {
	ev := event.Event{SessionID: "s1"}
	if got := WorkspaceTarget(ModeIsolated, ev); got != "stack:lane:s1:main" {
		t.Errorf("WorkspaceTarget() = %q, want %q", got, "stack:lane:s1:main")
	}
	if got := WorkspaceTarget(ModeShared, ev); got != "stack:lane:s1:shared" {
		t.Errorf("WorkspaceTarget() = %q, want %q", got, "stack:lane:s1:shared")
	}
}
