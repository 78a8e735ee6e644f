package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultStatePath is where run state lives unless configured otherwise.
const DefaultStatePath = "~/.distill/state.json"

// State tracks progress and stage counters for resumable pipeline runs.
type State struct {
	StartedAt         time.Time `json:"started_at"`
	LastProcessedAt   time.Time `json:"last_processed_at"`
	FilesProcessed    []string  `json:"files_processed"`
	FilesDiscovered   int       `json:"files_discovered"`
	SessionsExtracted int       `json:"sessions_extracted"`
	SessionsEmpty     int       `json:"sessions_empty"`
	WindowsEmitted    int       `json:"windows_emitted"`
	WindowsRejected   int       `json:"windows_rejected"`
	SamplesKept       int       `json:"samples_kept"`
	DuplicatesRemoved int       `json:"duplicates_removed"`
	SecretsScrubbed   int       `json:"secrets_scrubbed"`
	TrainSamples      int       `json:"train_samples"`
	ValSamples        int       `json:"val_samples"`
	Errors            []string  `json:"errors"`

	path string // not serialized
}

// LoadState loads run state from disk, or creates a fresh one.
func LoadState(path string) (*State, error) {
	p := ExpandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{
				StartedAt: time.Now().UTC(),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// NewState returns a fresh state ignoring anything on disk.
func NewState(path string) *State {
	return &State{
		StartedAt: time.Now().UTC(),
		path:      ExpandHome(path),
	}
}

// Save persists the state to disk.
func (s *State) Save() error {
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsProcessed returns true if the given file has already been processed.
func (s *State) IsProcessed(path string) bool {
	for _, f := range s.FilesProcessed {
		if f == path {
			return true
		}
	}
	return false
}

// MarkProcessed records a file as processed.
func (s *State) MarkProcessed(path string) {
	s.FilesProcessed = append(s.FilesProcessed, path)
}

// AddError records a processing error.
func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// ExpandHome expands a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
