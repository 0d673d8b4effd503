package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hopper/internal/api"
)

const stateFileName = "auth.json"

// State is the persisted authentication snapshot.
type State struct {
	AccessToken      string    `json:"access_token"`
	User             *api.User `json:"user,omitempty"`
	ClientIdentifier string    `json:"client_identifier"`
	SavedAt          time.Time `json:"saved_at"`
}

// StateStore abstracts persistence for authentication state.
type StateStore interface {
	Load() (State, error)
	Save(State) error
}

// FileStateStore writes authentication state to a JSON file on disk.
type FileStateStore struct {
	path string
}

// NewFileStateStore builds a FileStateStore inside stateDir.
func NewFileStateStore(stateDir string) *FileStateStore {
	return &FileStateStore{path: filepath.Join(stateDir, stateFileName)}
}

// Load reads auth state from disk. A missing file resolves to an empty state.
func (s *FileStateStore) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read auth state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode auth state: %w", err)
	}
	return state, nil
}

// Save persists auth state to disk with restricted permissions.
func (s *FileStateStore) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure auth state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode auth state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write auth state: %w", err)
	}
	return nil
}
