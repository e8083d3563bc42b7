package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestHookError(t *testing.T) {
	t.Run("formats event and op", func(t *testing.T) {
		err := NewHookError("PreToolUse", "save", ErrStateWrite)
		want := "hook error [event=PreToolUse, op=save]: coordination state write failed"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("omits empty context", func(t *testing.T) {
		err := NewHookError("", "", nil)
		if err.Error() != "hook error" {
			t.Errorf("Error() = %q, want %q", err.Error(), "hook error")
		}
	})

	t.Run("unwraps to cause", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", NewHookError("Stop", "load", ErrStateCorrupted))
		if !Is(err, ErrStateCorrupted) {
			t.Error("expected errors.Is to find ErrStateCorrupted")
		}
		var hookErr *HookError
		if !As(err, &hookErr) {
			t.Fatal("expected errors.As to find *HookError")
		}
		if hookErr.Event != "Stop" {
			t.Errorf("Event = %q, want %q", hookErr.Event, "Stop")
		}
	})
}

func TestStateError(t *testing.T) {
	cause := New("disk full")
	err := NewStateError("write", "/tmp/state.json", ErrStateWrite).WithCause(cause)

	if !Is(err, ErrStateWrite) {
		t.Error("expected ErrStateWrite to match")
	}
	if !Is(err, cause) {
		t.Error("expected cause to match")
	}
	if Is(err, ErrStateCorrupted) {
		t.Error("did not expect ErrStateCorrupted to match")
	}
	for _, part := range []string{"state write", "path=/tmp/state.json", "disk full"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("Error() = %q, missing %q", err.Error(), part)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrPayloadRead, "event %s", "SessionStart")
	if err.Error() != "event SessionStart: hook payload read failed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !Is(err, ErrPayloadRead) {
		t.Error("expected wrapped sentinel to match")
	}
}
