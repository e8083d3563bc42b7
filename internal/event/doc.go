// Package event models the JSON payload a host agent process delivers to a
// lifecycle hook.
//
// The payload shape is owned by the host and drifts between releases, so
// decoding is deliberately tolerant: fields are extracted by path with
// gjson and coerced to strings, unknown fields are ignored, and a payload
// that is not valid JSON becomes an [Event] named [Unknown] rather than an
// error.
//
// # Main Types
//
//   - [Event]: the subset of the payload the coordination layer consumes
//   - [Parse]: converts raw stdin bytes into an [Event]
//
// # Event Names
//
// The dispatch key is hook_event_name. Recognized values are [SessionStart],
// [SubagentStart], [PreToolUse], [PostToolUse], [SubagentStop] and [Stop];
// anything else is routed to the default handler.
package event
