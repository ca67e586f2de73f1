// Package voicestore implements the durable store for named voice profiles.
// Each profile owns a directory holding its reference audio, an optional
// cached speaker embedding and a metadata record. A profile is visible iff
// its metadata record and its audio artifact both exist; anything else is an
// orphan and is never surfaced.
package voicestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
)

// Profile artifact names, addressed by profile id.
const (
	audioFileName     = "audio.wav"
	embeddingFileName = "embedding.npy"
	metadataFileName  = "metadata.json"

	filePermissions = 0o600
	dirPermissions  = 0o750

	idSeparator = "_"
)

// Store is a directory-per-profile CRUD store. Mutations on the same id are
// serialized through a striped lock; operations on distinct ids proceed
// concurrently.
type Store struct {
	root      string
	stage     core.ReferenceStage
	extractor core.EmbeddingExtractor
	log       *logger.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a profile store rooted at dir.
func New(dir string, stage core.ReferenceStage, extractor core.EmbeddingExtractor, log *logger.Logger) *Store {
	return &Store{
		root:      dir,
		stage:     stage,
		extractor: extractor,
		log:       log,
		locksMu:   sync.Mutex{},
		locks:     map[string]*sync.Mutex{},
	}
}

// DeriveID derives the profile identifier from a display name: lowercased,
// with runs of non-alphanumeric characters collapsed to a single underscore
// and stripped from the ends.
func DeriveID(name string) string {
	lowered := strings.ToLower(name)

	var builder strings.Builder

	previousSeparator := false

	for _, r := range lowered {
		alphanumeric := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alphanumeric {
			builder.WriteRune(r)

			previousSeparator = false

			continue
		}

		if !previousSeparator {
			builder.WriteString(idSeparator)

			previousSeparator = true
		}
	}

	return strings.Trim(builder.String(), idSeparator)
}

// Create promotes the currently staged reference into a durable profile. An
// existing profile with the same derived id is overwritten; normalized name
// collisions are last-write-wins by design. Embedding extraction runs
// best-effort and its tagged outcome is recorded in the metadata, which is
// written last.
func (s *Store) Create(ctx context.Context, name, referenceText string) (core.VoiceProfile, error) {
	if name == "" {
		return core.VoiceProfile{}, core.ErrNameRequired
	}

	id := DeriveID(name)
	if id == "" {
		return core.VoiceProfile{}, core.ErrNameRequired
	}

	stagedPath, staged := s.stage.StagedPath()
	if !staged {
		return core.VoiceProfile{}, core.ErrNoReferenceStaged
	}

	unlock := s.lockID(id)
	defer unlock()

	copyErr := s.copyStagedAudio(stagedPath, id)
	if copyErr != nil {
		return core.VoiceProfile{}, copyErr
	}

	outcome := s.extractEmbedding(ctx, id)

	profile := core.VoiceProfile{
		ID:              id,
		Name:            name,
		ReferenceText:   referenceText,
		HasEmbedding:    outcome.Cached(),
		EmbeddingStatus: outcome.Status,
		EmbeddingError:  outcome.Err,
		CreatedAt:       time.Now().UTC(),
	}

	writeErr := s.writeMetadata(profile)
	if writeErr != nil {
		return core.VoiceProfile{}, writeErr
	}

	s.log.Info("Saved voice profile %q (embedding: %s)", id, outcome.Status)

	return profile, nil
}

// List enumerates visible profiles in storage order. Callers that need a
// stable ordering must sort by CreatedAt themselves.
func (s *Store) List() ([]core.VoiceProfile, error) {
	entries, readErr := os.ReadDir(s.root)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return []core.VoiceProfile{}, nil
		}

		return nil, fmt.Errorf("failed to enumerate voice profiles: %w", readErr)
	}

	profiles := make([]core.VoiceProfile, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		profile, found := s.readVisible(entry.Name())
		if found {
			profiles = append(profiles, profile)
		}
	}

	return profiles, nil
}

// Get returns the profile for id, or core.ErrProfileNotFound.
func (s *Store) Get(id string) (core.VoiceProfile, error) {
	profile, found := s.readVisible(id)
	if !found {
		return core.VoiceProfile{}, core.ErrProfileNotFound
	}

	return profile, nil
}

// Rename changes the display name of a profile. The id and the owned
// artifacts are untouched.
func (s *Store) Rename(_ context.Context, id, newName string) (core.VoiceProfile, error) {
	if newName == "" {
		return core.VoiceProfile{}, core.ErrNameRequired
	}

	unlock := s.lockID(id)
	defer unlock()

	profile, readErr := s.readMetadata(id)
	if readErr != nil {
		return core.VoiceProfile{}, core.ErrProfileNotFound
	}

	profile.Name = newName

	writeErr := s.writeMetadata(profile)
	if writeErr != nil {
		return core.VoiceProfile{}, writeErr
	}

	return profile, nil
}

// Delete removes the profile and all of its artifacts. The metadata record is
// removed last, so a crash mid-delete leaves an unlisted residue rather than
// a half-visible profile.
func (s *Store) Delete(_ context.Context, id string) error {
	unlock := s.lockID(id)
	defer unlock()

	dir := s.profileDir(id)

	_, statErr := os.Stat(dir)
	if statErr != nil {
		return core.ErrProfileNotFound
	}

	for _, name := range []string{embeddingFileName, audioFileName, metadataFileName} {
		removeErr := os.Remove(filepath.Join(dir, name))
		if removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("failed to remove %s for voice %q: %w", name, id, removeErr)
		}
	}

	removeErr := os.RemoveAll(dir)
	if removeErr != nil {
		return fmt.Errorf("failed to remove voice directory %q: %w", id, removeErr)
	}

	s.log.Info("Deleted voice profile %q", id)

	return nil
}

// AudioPath returns the path of the profile's reference audio artifact.
func (s *Store) AudioPath(id string) string {
	return filepath.Join(s.profileDir(id), audioFileName)
}

// EmbeddingPath returns the path of the profile's cached embedding artifact.
func (s *Store) EmbeddingPath(id string) string {
	return filepath.Join(s.profileDir(id), embeddingFileName)
}

func (s *Store) profileDir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *Store) lockID(id string) func() {
	s.locksMu.Lock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}

	s.locksMu.Unlock()

	lock.Lock()

	return lock.Unlock
}

func (s *Store) copyStagedAudio(stagedPath, id string) error {
	audio, readErr := os.ReadFile(stagedPath)
	if readErr != nil {
		return fmt.Errorf("failed to read staged reference: %w", readErr)
	}

	dirErr := os.MkdirAll(s.profileDir(id), dirPermissions)
	if dirErr != nil {
		return fmt.Errorf("failed to create voice directory %q: %w", id, dirErr)
	}

	writeErr := os.WriteFile(s.AudioPath(id), audio, filePermissions)
	if writeErr != nil {
		return fmt.Errorf("failed to write voice audio for %q: %w", id, writeErr)
	}

	return nil
}

// extractEmbedding runs the extractor and keeps the on-disk state consistent
// with the outcome: when extraction is unavailable, any leftover embedding
// artifact from a previous profile under the same id is removed so a stale
// embedding can never be surfaced as valid.
func (s *Store) extractEmbedding(ctx context.Context, id string) core.EmbeddingOutcome {
	outcome := s.extractor.Extract(ctx, s.AudioPath(id), s.EmbeddingPath(id))

	if !outcome.Cached() {
		removeErr := os.Remove(s.EmbeddingPath(id))
		if removeErr != nil && !os.IsNotExist(removeErr) {
			s.log.Warn("Failed to remove stale embedding for %q: %v", id, removeErr)
		}
	}

	return outcome
}

func (s *Store) readMetadata(id string) (core.VoiceProfile, error) {
	data, readErr := os.ReadFile(filepath.Join(s.profileDir(id), metadataFileName))
	if readErr != nil {
		return core.VoiceProfile{}, fmt.Errorf("failed to read metadata for %q: %w", id, readErr)
	}

	var profile core.VoiceProfile

	unmarshalErr := json.Unmarshal(data, &profile)
	if unmarshalErr != nil {
		return core.VoiceProfile{}, fmt.Errorf("failed to decode metadata for %q: %w", id, unmarshalErr)
	}

	return profile, nil
}

func (s *Store) writeMetadata(profile core.VoiceProfile) error {
	data, marshalErr := json.MarshalIndent(profile, "", "  ")
	if marshalErr != nil {
		return fmt.Errorf("failed to encode metadata for %q: %w", profile.ID, marshalErr)
	}

	path := filepath.Join(s.profileDir(profile.ID), metadataFileName)

	writeErr := os.WriteFile(path, data, filePermissions)
	if writeErr != nil {
		return fmt.Errorf("failed to write metadata for %q: %w", profile.ID, writeErr)
	}

	return nil
}

func (s *Store) readVisible(id string) (core.VoiceProfile, bool) {
	profile, metadataErr := s.readMetadata(id)
	if metadataErr != nil {
		return core.VoiceProfile{}, false
	}

	_, audioErr := os.Stat(s.AudioPath(id))
	if audioErr != nil {
		return core.VoiceProfile{}, false
	}

	return profile, true
}
