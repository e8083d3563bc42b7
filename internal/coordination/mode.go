package coordination

import "strings"

// Mode is how the agents of one session share work lanes.
type Mode string

const (
	// ModeShared routes every agent of a session to one lane.
	ModeShared Mode = "shared"
	// ModeIsolated gives each agent its own lane.
	ModeIsolated Mode = "isolated"

	// DefaultMode applies when neither an override nor a prior record decides.
	DefaultMode = ModeIsolated
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeShared || m == ModeIsolated
}

// ParseMode normalizes s and reports whether it names a known mode.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", false
	}
	return m, true
}

// ResolveMode picks the effective mode for one invocation. A valid override
// wins, then the mode already stored on the session, then DefaultMode. This
// makes a session's mode sticky until an override replaces it.
func ResolveMode(override string, existing *Session) Mode {
	if m, ok := ParseMode(override); ok {
		return m
	}
	if existing != nil && existing.Mode.Valid() {
		return existing.Mode
	}
	return DefaultMode
}
