package coordination

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Record field names. Anything else found in a persisted record is kept in
// the record's Extra map.
var (
	sessionFields = fieldSet("session_key", "mode", "shared_lane_id", "created_at", "updated_at", "stopped_at")

	subagentFields = fieldSet("subagent_key", "session_key", "agent_id", "agent_type", "lane_id",
		"workspace_target", "status", "created_at", "updated_at", "last_tool_name", "last_file_path")
)

// timeLayouts are tried in order when reading a persisted timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func fieldSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// decodeRecords reads a sessions or subagents object. Entries that are not
// objects are dropped; inside an object, each field is read on its own so
// one bad value costs only that value.
func decodeRecords[T any](raw json.RawMessage, decode func(gjson.Result) *T) map[string]*T {
	out := make(map[string]*T)

	entries := gjson.ParseBytes(raw)
	if !entries.IsObject() {
		return out
	}
	entries.ForEach(func(key, entry gjson.Result) bool {
		if entry.IsObject() {
			out[key.String()] = decode(entry)
		}
		return true
	})
	return out
}

func decodeSession(r gjson.Result) *Session {
	return &Session{
		SessionKey:   stringField(r, "session_key"),
		Mode:         Mode(stringField(r, "mode")),
		SharedLaneID: optionalStringField(r, "shared_lane_id"),
		CreatedAt:    timeField(r, "created_at"),
		UpdatedAt:    timeField(r, "updated_at"),
		StoppedAt:    optionalTimeField(r, "stopped_at"),
		Extra:        extraFields(r, sessionFields),
	}
}

func decodeSubagent(r gjson.Result) *Subagent {
	return &Subagent{
		SubagentKey:     stringField(r, "subagent_key"),
		SessionKey:      stringField(r, "session_key"),
		AgentID:         stringField(r, "agent_id"),
		AgentType:       stringField(r, "agent_type"),
		LaneID:          stringField(r, "lane_id"),
		WorkspaceTarget: stringField(r, "workspace_target"),
		Status:          Status(stringField(r, "status")),
		CreatedAt:       timeField(r, "created_at"),
		UpdatedAt:       timeField(r, "updated_at"),
		LastToolName:    optionalStringField(r, "last_tool_name"),
		LastFilePath:    optionalStringField(r, "last_file_path"),
		Extra:           extraFields(r, subagentFields),
	}
}

// stringField returns the field when it is a JSON string, else "".
func stringField(r gjson.Result, name string) string {
	if v := r.Get(name); v.Type == gjson.String {
		return v.Str
	}
	return ""
}

func optionalStringField(r gjson.Result, name string) *string {
	if v := r.Get(name); v.Type == gjson.String {
		s := v.Str
		return &s
	}
	return nil
}

// timeField returns the zero time for missing, non-string or unparseable
// values.
func timeField(r gjson.Result, name string) time.Time {
	t, _ := parseTime(stringField(r, name))
	return t
}

func optionalTimeField(r gjson.Result, name string) *time.Time {
	t, ok := parseTime(stringField(r, name))
	if !ok {
		return nil
	}
	return &t
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func extraFields(r gjson.Result, known map[string]bool) map[string]json.RawMessage {
	var extra map[string]json.RawMessage
	r.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if known[name] {
			return true
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[name] = json.RawMessage(value.Raw)
		return true
	})
	return extra
}

// marshalRecord encodes v (a record with its Extra field excluded) and then
// adds the extra fields that do not clash with a known one.
func marshalRecord(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, ok := fields[name]; !ok {
			fields[name] = raw
		}
	}
	return json.Marshal(fields)
}
