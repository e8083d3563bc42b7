// Package coordination holds the coordination-state machine for hook events:
// which work lane each session and sub-agent is routed to, and the records
// that remember those decisions between invocations.
//
// Everything here is pure and in-memory. Loading and saving the state file
// is the job of the session package; deciding what to do for each event is
// the job of the hooks package.
//
// # Keys and Lanes
//
// Lane identity is recomputed from (mode, session, agent) on every event:
//
//	shared:   lane:{session}:shared   (one lane per session)
//	isolated: lane:{session}:{agent}  (one lane per agent)
//
// The workspace target is "stack:" followed by the lane id. Because nothing
// is looked up out of band, switching a session's mode only changes where
// records written from then on point.
//
// # Records
//
// [State] is the aggregate root: a schema version plus maps of [Session]
// and [Subagent] records. [UpsertSession] and [UpsertSubagent] merge an
// incoming event into the existing record, keeping created_at and any
// sticky breadcrumb the event does not replace.
package coordination
