package coordination

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// StateVersion is the schema version written to every persisted state.
const StateVersion = 1

// Status is a sub-agent's lifecycle status.
type Status string

const (
	// StatusActive marks a sub-agent that has seen any event other than SubagentStop.
	StatusActive Status = "active"
	// StatusStopped marks a sub-agent whose latest event was SubagentStop.
	StatusStopped Status = "stopped"
)

// Session is one logical working session.
type Session struct {
	SessionKey   string     `json:"session_key"`
	Mode         Mode       `json:"mode"`
	SharedLaneID *string    `json:"shared_lane_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StoppedAt    *time.Time `json:"stopped_at,omitempty"`

	// Extra keeps unrecognized record fields until the record is rewritten.
	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON writes the known fields followed by any Extra ones.
func (s Session) MarshalJSON() ([]byte, error) {
	type plain Session
	return marshalRecord(plain(s), s.Extra)
}

// Subagent is one (session, agent) execution unit.
type Subagent struct {
	SubagentKey     string    `json:"subagent_key"`
	SessionKey      string    `json:"session_key"`
	AgentID         string    `json:"agent_id"`
	AgentType       string    `json:"agent_type"`
	LaneID          string    `json:"lane_id"`
	WorkspaceTarget string    `json:"workspace_target"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	LastToolName    *string   `json:"last_tool_name"`
	LastFilePath    *string   `json:"last_file_path"`

	// Extra keeps unrecognized record fields until the record is rewritten.
	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON writes the known fields followed by any Extra ones.
func (s Subagent) MarshalJSON() ([]byte, error) {
	type plain Subagent
	return marshalRecord(plain(s), s.Extra)
}

// State is the aggregate root persisted between hook invocations.
type State struct {
	Version   int
	Sessions  map[string]*Session
	Subagents map[string]*Subagent

	// Extra keeps unrecognized top-level fields so they survive a rewrite.
	Extra map[string]json.RawMessage
}

// Initial returns an empty state at the current schema version.
func Initial() *State {
	return &State{
		Version:   StateVersion,
		Sessions:  make(map[string]*Session),
		Subagents: make(map[string]*Subagent),
	}
}

// Decode builds a valid state from arbitrary bytes. It never fails:
// unparseable input yields Initial(), a non-object sessions or subagents
// value yields an empty map, and records that are not objects are dropped.
// Within a record, a field of the wrong type reads as its zero value and
// unknown fields are kept.
func Decode(data []byte) *State {
	st := Initial()

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return st
	}

	for key, raw := range top {
		switch key {
		case "version":
			// Always rewritten to StateVersion.
		case "sessions":
			st.Sessions = decodeRecords(raw, decodeSession)
		case "subagents":
			st.Subagents = decodeRecords(raw, decodeSubagent)
		default:
			if st.Extra == nil {
				st.Extra = make(map[string]json.RawMessage)
			}
			st.Extra[key] = raw
		}
	}

	return st.Normalize()
}

// Normalize repairs s in place and returns it: the version is forced to
// StateVersion, nil maps are allocated, nil records and sessions with an
// empty key are dropped, and missing record keys are backfilled from their
// map key. Calling it twice is the same as calling it once.
func (s *State) Normalize() *State {
	if s == nil {
		return Initial()
	}

	s.Version = StateVersion
	if s.Sessions == nil {
		s.Sessions = make(map[string]*Session)
	}
	if s.Subagents == nil {
		s.Subagents = make(map[string]*Subagent)
	}

	for key, sess := range s.Sessions {
		if sess == nil || strings.TrimSpace(key) == "" {
			delete(s.Sessions, key)
			continue
		}
		if sess.SessionKey == "" {
			sess.SessionKey = key
		}
	}
	for key, sub := range s.Subagents {
		if sub == nil {
			delete(s.Subagents, key)
			continue
		}
		if sub.SubagentKey == "" {
			sub.SubagentKey = key
		}
	}
	return s
}

// MarshalJSON writes the state as one flat object, merging Extra with the
// recognized fields. Recognized fields win on a name clash.
func (s State) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+3)
	for key, raw := range s.Extra {
		out[key] = raw
	}
	out["version"] = s.Version
	out["sessions"] = s.Sessions
	out["subagents"] = s.Subagents
	return json.Marshal(out)
}

// SortedSessions returns the sessions ordered by creation time, then key.
func (s *State) SortedSessions() []*Session {
	sessions := make([]*Session, 0, len(s.Sessions))
	for _, sess := range s.Sessions {
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].SessionKey < sessions[j].SessionKey
	})
	return sessions
}

// SessionSubagents returns the sub-agents recorded for a session key,
// ordered by agent id with MainAgentID first.
func (s *State) SessionSubagents(sessionKey string) []*Subagent {
	var subs []*Subagent
	for _, sub := range s.Subagents {
		if sub.SessionKey == sessionKey {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if (subs[i].AgentID == MainAgentID) != (subs[j].AgentID == MainAgentID) {
			return subs[i].AgentID == MainAgentID
		}
		return subs[i].AgentID < subs[j].AgentID
	})
	return subs
}
