package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FileState records the outcome of processing one inbox file.
type FileState struct {
	Path        string    `json:"path"`
	Hash        string    `json:"hash"`
	Size        int64     `json:"size"`
	ProcessedAt time.Time `json:"processed_at"`
	Error       string    `json:"error,omitempty"`
}

// State tracks processed inbox files so restarts do not convert a notice
// twice.
type State struct {
	ProcessedFiles map[string]FileState `json:"processed_files"`
	Version        int                  `json:"version"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		ProcessedFiles: make(map[string]FileState),
		Version:        1,
	}
}

// LoadState reads state from path. A missing file yields an empty state.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading watch state: %w", err)
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing watch state: %w", err)
	}
	if state.ProcessedFiles == nil {
		state.ProcessedFiles = make(map[string]FileState)
	}
	return state, nil
}

// Save writes state to path.
func (s *State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling watch state: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// SeenHash reports whether content with hash was already processed
// successfully.
func (s *State) SeenHash(hash string) bool {
	for _, fs := range s.ProcessedFiles {
		if fs.Hash == hash && fs.Error == "" {
			return true
		}
	}
	return false
}
