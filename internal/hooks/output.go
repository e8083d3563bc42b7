package hooks

import (
	"encoding/json"

	"github.com/Iron-Ham/laneguard/internal/event"
)

// Permission decisions understood by the host for PreToolUse.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// FailOpenPrefix starts the system message emitted when the pipeline fails.
const FailOpenPrefix = "GitButler hook runtime warning: "

// Output is the decision written back to the host. Continue is always true:
// the hook never halts the host, it only denies individual tool calls.
type Output struct {
	Continue       bool                `json:"continue"`
	SuppressOutput bool                `json:"suppressOutput"`
	SystemMessage  string              `json:"systemMessage,omitempty"`
	Specific       *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// HookSpecificOutput carries per-event context and, for PreToolUse, the
// permission decision.
type HookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string `json:"additionalContext,omitempty"`
}

// NoopOutput lets the host proceed with nothing to report.
func NoopOutput() Output {
	return Output{Continue: true, SuppressOutput: true}
}

// SystemMessage reports msg to the host without blocking it.
func SystemMessage(msg string) Output {
	out := NoopOutput()
	out.SystemMessage = msg
	return out
}

// FailOpen converts a pipeline failure into a non-blocking warning.
func FailOpen(err error) Output {
	return SystemMessage(FailOpenPrefix + err.Error())
}

// PreToolAllow permits a tool call. Empty reason or context are omitted.
func PreToolAllow(reason, additionalContext string) Output {
	out := NoopOutput()
	out.Specific = &HookSpecificOutput{
		HookEventName:            event.PreToolUse,
		PermissionDecision:       DecisionAllow,
		PermissionDecisionReason: reason,
		AdditionalContext:        additionalContext,
	}
	return out
}

// PreToolDeny blocks a tool call with reason.
func PreToolDeny(reason string) Output {
	out := NoopOutput()
	out.Specific = &HookSpecificOutput{
		HookEventName:            event.PreToolUse,
		PermissionDecision:       DecisionDeny,
		PermissionDecisionReason: reason,
	}
	return out
}

// EventContext attaches informational context to a non-tool event.
func EventContext(hookEventName, additionalContext string) Output {
	out := NoopOutput()
	out.Specific = &HookSpecificOutput{
		HookEventName:     hookEventName,
		AdditionalContext: additionalContext,
	}
	return out
}

// Denied reports whether the output blocks a tool call.
func (o Output) Denied() bool {
	return o.Specific != nil && o.Specific.PermissionDecision == DecisionDeny
}

// Encode renders the output as a single JSON line.
func (o Output) Encode() []byte {
	data, err := json.Marshal(o)
	if err != nil {
		// Output holds only strings and bools.
		data, _ = json.Marshal(NoopOutput())
	}
	return append(data, '\n')
}
