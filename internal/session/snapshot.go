package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"hopper/internal/api"
)

// Snapshot is the persisted form of a Session. A CLI process exists only for
// the duration of one command, so every stable state lands on disk and the
// next invocation resumes from it.
type Snapshot struct {
	Epoch        uint64              `json:"epoch"`
	Stage        Stage               `json:"stage"`
	SessionID    string              `json:"session_id"`
	Archive      string              `json:"archive,omitempty"`
	PendingFiles []string            `json:"pending_files,omitempty"`
	Groups       []api.Group         `json:"groups,omitempty"`
	Summary      *api.ScanSummary    `json:"summary,omitempty"`
	XMLCount     int                 `json:"xml_count,omitempty"`
	Files        []api.ConvertedFile `json:"files,omitempty"`
	TotalFiles   int                 `json:"total_files,omitempty"`
	Converted    bool                `json:"converted,omitempty"`
	ActiveGroup  string              `json:"active_group,omitempty"`
	ActiveFile   string              `json:"active_file,omitempty"`
	Selected     []string            `json:"selected,omitempty"`
	Search       string              `json:"search,omitempty"`
	EditMode     bool                `json:"edit_mode,omitempty"`
	LastError    string              `json:"last_error,omitempty"`
	SavedAt      time.Time           `json:"saved_at"`
}

// SnapshotStore persists session snapshots between invocations.
type SnapshotStore interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
	Clear() error
}

// FileSnapshotStore keeps the snapshot as a JSON file in the state
// directory.
type FileSnapshotStore struct {
	path string
}

// NewFileSnapshotStore returns a store rooted at stateDir/session.json.
func NewFileSnapshotStore(stateDir string) *FileSnapshotStore {
	return &FileSnapshotStore{path: filepath.Join(stateDir, "session.json")}
}

// Load reads the snapshot from disk. A missing file yields a nil snapshot
// and no error.
func (f *FileSnapshotStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse session snapshot: %w", err)
	}
	if !snap.Stage.Valid() {
		snap.Stage = StageIdle
	}
	return &snap, nil
}

// Save writes the snapshot with owner-only permissions.
func (f *FileSnapshotStore) Save(snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write session snapshot: %w", err)
	}
	return nil
}

// Clear removes the persisted snapshot. Missing files are fine.
func (f *FileSnapshotStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session snapshot: %w", err)
	}
	return nil
}
