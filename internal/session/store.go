package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/laneguard/internal/coordination"
	"github.com/Iron-Ham/laneguard/internal/errors"
)

const (
	stateFilePerm = 0644
	stateDirPerm  = 0755
)

// FileStore is the filesystem-backed StateStore.
type FileStore struct{}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads and decodes the state file at path.
//
// Any read failure, including a missing file, is recovered here and yields
// coordination.Initial(). Corrupt or legacy content is repaired by
// coordination.Decode. The returned error is non-nil only when ctx is done.
func (fs *FileStore) Load(ctx context.Context, path string) (*coordination.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return coordination.Initial(), nil
	}
	return coordination.Decode(data), nil
}

// Save writes st to path as indented JSON with a trailing newline.
func (fs *FileStore) Save(ctx context.Context, path string, st *coordination.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(st)
	if err != nil {
		return errors.NewStateError("encode", path, errors.ErrStateWrite).WithCause(err)
	}

	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return errors.NewStateError("mkdir", path, errors.ErrStateWrite).WithCause(err)
	}

	if err := atomicWriteFile(path, data, stateFilePerm); err != nil {
		return errors.NewStateError("write", path, errors.ErrStateWrite).WithCause(err)
	}
	return nil
}

// Snapshot is the on-disk view of the state file.
type Snapshot struct {
	Path    string
	Exists  bool
	ModTime time.Time
	State   *coordination.State

	// Corrupt is set when the file exists but is not a JSON object.
	Corrupt bool
}

// Snapshot reads the state file without writing anything back.
func (fs *FileStore) Snapshot(ctx context.Context, path string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &Snapshot{Path: path, State: coordination.Initial()}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return nil, errors.NewStateError("stat", path, errors.ErrStateCorrupted).WithCause(err)
	}
	if info.IsDir() {
		return nil, errors.NewStateError("read", path, errors.ErrStateCorrupted).
			WithCause(fmt.Errorf("%s is a directory", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStateError("read", path, errors.ErrStateCorrupted).WithCause(err)
	}

	snap.Exists = true
	snap.ModTime = info.ModTime()
	snap.Corrupt = !isJSONObject(data)
	snap.State = coordination.Decode(data)
	return snap, nil
}

// Encode renders st the way it is persisted: normalized, two-space indented,
// newline terminated.
func Encode(st *coordination.State) ([]byte, error) {
	if st == nil {
		st = coordination.Initial()
	}
	st.Normalize()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return append(data, '\n'), nil
}

func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var probe map[string]json.RawMessage
	return json.Unmarshal(trimmed, &probe) == nil
}

// atomicWriteFile writes data to a temp file in the target directory, then
// renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

var (
	_ StateStore  = (*FileStore)(nil)
	_ Snapshotter = (*FileStore)(nil)
)
