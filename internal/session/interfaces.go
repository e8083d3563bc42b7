// Package session persists the coordination state between hook invocations.
//
// The hook process is short-lived: it loads the state file once, lets one
// handler mutate it, and saves it once. Persistence is last-writer-wins at
// the granularity of the whole document. Writes go through a temporary file
// and an atomic rename so readers never see a torn file, but two overlapping
// invocations can still lose one another's update.
package session

import (
	"context"

	"github.com/Iron-Ham/laneguard/internal/coordination"
)

// StateStore loads and saves the coordination state document.
type StateStore interface {
	// Load returns the state stored at path. A missing, unreadable, or
	// corrupt file yields a freshly initialized state rather than an error.
	Load(ctx context.Context, path string) (*coordination.State, error)

	// Save normalizes st and writes it to path, creating the parent
	// directory when needed.
	Save(ctx context.Context, path string, st *coordination.State) error
}

// Snapshotter reads the state without the self-healing fallbacks, for
// read-only consumers that want to report what is actually on disk.
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) (*Snapshot, error)
}
