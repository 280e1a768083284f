// Package state persists what the last generate run scanned and wrote so
// later runs can prune units that are no longer produced.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	StateFile               = ".praefixum-state.json"
	CurrentStateVersion     = "1"
	CurrentGeneratorVersion = "praefixum-v1"
)

// FileState tracks one scanned source file.
type FileState struct {
	Hash      string    `json:"hash"`
	Sites     int       `json:"sites,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State tracks the scanned sources and generated units of the last run.
type State struct {
	Version          string               `json:"version"`
	GeneratorVersion string               `json:"generator_version,omitempty"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Files            map[string]FileState `json:"files"`
	OutputHashes     map[string]string    `json:"output_hashes,omitempty"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Version:          CurrentStateVersion,
		GeneratorVersion: CurrentGeneratorVersion,
		Files:            make(map[string]FileState),
		OutputHashes:     make(map[string]string),
	}
}

// Load reads the state file from dir. A missing file yields an empty state.
func Load(dir string) (*State, error) {
	path := filepath.Join(dir, StateFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	migrateState(&state)

	return &state, nil
}

// Save writes the state file into dir.
func (s *State) Save(dir string) error {
	migrateState(s)
	s.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, StateFile), data, 0644)
}

// SetFile records the hash and annotated site count of a scanned file.
func (s *State) SetFile(file, hash string, sites int) {
	s.Files[file] = FileState{
		Hash:      hash,
		Sites:     sites,
		UpdatedAt: time.Now(),
	}
}

// GetFileHash returns the stored hash for a file
func (s *State) GetFileHash(file string) (string, bool) {
	fs, ok := s.Files[file]
	if !ok {
		return "", false
	}
	return fs.Hash, true
}

// HasChanged returns true if the file hash differs from stored
func (s *State) HasChanged(file, currentHash string) bool {
	storedHash, ok := s.GetFileHash(file)
	if !ok {
		return true // New file
	}
	return storedHash != currentHash
}

// ChangedFiles returns new or modified files, sorted.
func (s *State) ChangedFiles(currentHashes map[string]string) []string {
	changed := make([]string, 0)
	for file, hash := range currentHashes {
		if s.HasChanged(file, hash) {
			changed = append(changed, file)
		}
	}
	sort.Strings(changed)
	return changed
}

// DeletedFiles returns tracked files that no longer exist, sorted.
func (s *State) DeletedFiles(currentFiles map[string]bool) []string {
	deleted := make([]string, 0)
	for file := range s.Files {
		if !currentFiles[file] {
			deleted = append(deleted, file)
		}
	}
	sort.Strings(deleted)
	return deleted
}

// SetOutputHash records the content hash for a generated output file.
func (s *State) SetOutputHash(path, hash string) {
	if s.OutputHashes == nil {
		s.OutputHashes = make(map[string]string)
	}
	s.OutputHashes[path] = hash
}

// GetOutputHash returns the previously stored hash for a generated output file.
func (s *State) GetOutputHash(path string) (string, bool) {
	hash, ok := s.OutputHashes[path]
	return hash, ok
}

// StaleOutputs returns previously generated files that are not in current,
// sorted.
func (s *State) StaleOutputs(current []string) []string {
	keep := make(map[string]bool, len(current))
	for _, file := range current {
		keep[file] = true
	}
	stale := make([]string, 0)
	for file := range s.OutputHashes {
		if !keep[file] {
			stale = append(stale, file)
		}
	}
	sort.Strings(stale)
	return stale
}

// ForgetOutput drops a generated file from tracking.
func (s *State) ForgetOutput(path string) {
	delete(s.OutputHashes, path)
}

func migrateState(s *State) {
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	if s.OutputHashes == nil {
		s.OutputHashes = make(map[string]string)
	}
	if s.GeneratorVersion == "" {
		s.GeneratorVersion = CurrentGeneratorVersion
	}
	if s.Version == "" {
		s.Version = CurrentStateVersion
	}
}
