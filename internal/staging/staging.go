// Package staging implements the single-slot holding area for uploaded
// reference audio that has not yet been promoted into a voice profile.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	stagedFileName = "reference.wav"

	filePermissions = 0o600
	dirPermissions  = 0o750
)

// ErrEmptyAudio indicates an upload with no payload.
var ErrEmptyAudio = errors.New("reference audio cannot be empty")

// Slot is a fixed single-slot staging area backed by one file on disk. A new
// upload unconditionally replaces the previous one. All slot access goes
// through one mutex so concurrent stage and consume calls cannot observe a
// partially written file.
type Slot struct {
	mu   sync.Mutex
	path string
}

// New creates a staging slot rooted at dir. The directory is created on
// first use, not here, so constructing a slot never touches the filesystem.
func New(dir string) *Slot {
	return &Slot{
		mu:   sync.Mutex{},
		path: filepath.Join(dir, stagedFileName),
	}
}

// Stage writes the uploaded audio into the slot, overwriting any previously
// staged recording.
func (s *Slot) Stage(audio []byte) error {
	if len(audio) == 0 {
		return ErrEmptyAudio
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dirErr := os.MkdirAll(filepath.Dir(s.path), dirPermissions)
	if dirErr != nil {
		return fmt.Errorf("failed to create staging directory: %w", dirErr)
	}

	writeErr := os.WriteFile(s.path, audio, filePermissions)
	if writeErr != nil {
		return fmt.Errorf("failed to write staged reference: %w", writeErr)
	}

	return nil
}

// HasStaged reports whether a staged reference currently exists.
func (s *Slot) HasStaged() bool {
	_, ok := s.StagedPath()

	return ok
}

// StagedPath returns the path of the currently staged reference, if any.
func (s *Slot) StagedPath() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	if statErr != nil {
		return "", false
	}

	return s.path, true
}

// Clear removes the staged reference. Clearing an empty slot is not an error.
func (s *Slot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removeErr := os.Remove(s.path)
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("failed to clear staged reference: %w", removeErr)
	}

	return nil
}
