// Package core defines the domain types, interfaces and error taxonomy shared
// by the voice-service components.
package core

import (
	"context"
	"time"
)

// Mode identifies one of the three synthesis modes supported by the engine.
type Mode string

// Supported synthesis modes.
const (
	ModeCustomVoice Mode = "custom_voice"
	ModeVoiceClone  Mode = "voice_clone"
	ModeVoiceDesign Mode = "voice_design"
)

// ModelSize selects the engine checkpoint. The values are the literal strings
// the engine binary expects.
type ModelSize string

// Engine checkpoint sizes.
const (
	ModelSmall ModelSize = "0.6B"
	ModelLarge ModelSize = "1.7B"
)

// DefaultLanguage is used when a request carries no language hint.
const DefaultLanguage = "Auto"

// EmbeddingStatus tags the outcome of a speaker-embedding extraction.
type EmbeddingStatus string

// Embedding extraction outcomes. Extraction is strictly an optimization:
// Unavailable never blocks cloning, it only makes it slower.
const (
	EmbeddingCached      EmbeddingStatus = "cached"
	EmbeddingUnavailable EmbeddingStatus = "unavailable"
)

// EmbeddingOutcome is the tagged result of one extraction attempt. Err holds
// diagnostic output when Status is EmbeddingUnavailable.
type EmbeddingOutcome struct {
	Status EmbeddingStatus
	Err    string
}

// Cached reports whether the outcome produced a usable embedding artifact.
func (o EmbeddingOutcome) Cached() bool {
	return o.Status == EmbeddingCached
}

// VoiceProfile is a durable, named speaker-conditioning record. The JSON tags
// double as the on-disk metadata format and the API projection.
type VoiceProfile struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ReferenceText   string          `json:"referenceText"`
	HasEmbedding    bool            `json:"hasEmbedding"`
	EmbeddingStatus EmbeddingStatus `json:"embeddingStatus"`
	EmbeddingError  string          `json:"embeddingError,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CustomVoiceSpec carries the fields of a preset-speaker request.
type CustomVoiceSpec struct {
	SpeakerID        string
	StyleInstruction string
}

// VoiceCloneSpec carries the fields of a cloned-voice request. SavedVoiceID
// is optional; without it the currently staged reference is consumed.
type VoiceCloneSpec struct {
	SavedVoiceID  string
	ReferenceText string
}

// VoiceDesignSpec carries the fields of a described-voice request.
type VoiceDesignSpec struct {
	Description string
}

// GenerationRequest describes one synthesis call. Exactly one of the three
// variant pointers must be set; the variant determines the mode.
type GenerationRequest struct {
	Text      string
	ModelSize ModelSize
	Language  string

	CustomVoice *CustomVoiceSpec
	VoiceClone  *VoiceCloneSpec
	VoiceDesign *VoiceDesignSpec
}

// Mode returns the active mode, or ErrModeRequired when zero or more than one
// variant is set.
func (r GenerationRequest) Mode() (Mode, error) {
	var (
		mode  Mode
		count int
	)

	if r.CustomVoice != nil {
		mode = ModeCustomVoice
		count++
	}

	if r.VoiceClone != nil {
		mode = ModeVoiceClone
		count++
	}

	if r.VoiceDesign != nil {
		mode = ModeVoiceDesign
		count++
	}

	if count != 1 {
		return "", ErrModeRequired
	}

	return mode, nil
}

// Validate rejects requests that must not reach the engine: empty text and
// mode ambiguity. Mode-specific lookups (preset speakers, saved voices) are
// resolved later by the orchestrator.
func (r GenerationRequest) Validate() error {
	if r.Text == "" {
		return ErrTextRequired
	}

	_, err := r.Mode()
	if err != nil {
		return err
	}

	return nil
}

// GenerationArtifact references the audio produced by one successful
// synthesis call. Immutable once created.
type GenerationArtifact struct {
	ID       string
	FileName string
	Path     string
	URL      string
}

// ObjectStore is a key-value blob store used to mirror generation artifacts.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// ReferenceStage holds at most one transient uploaded reference recording.
type ReferenceStage interface {
	Stage(audio []byte) error
	HasStaged() bool
	StagedPath() (string, bool)
	Clear() error
}

// ProfileStore is the durable CRUD store for voice profiles.
type ProfileStore interface {
	Create(ctx context.Context, name, referenceText string) (VoiceProfile, error)
	List() ([]VoiceProfile, error)
	Get(id string) (VoiceProfile, error)
	Rename(ctx context.Context, id, newName string) (VoiceProfile, error)
	Delete(ctx context.Context, id string) error
	AudioPath(id string) string
	EmbeddingPath(id string) string
}

// EmbeddingExtractor precomputes a speaker embedding from reference audio.
// The outcome is advisory; it never carries a Go error because extraction
// failure must not propagate to profile creation.
type EmbeddingExtractor interface {
	Extract(ctx context.Context, audioPath, outputPath string) EmbeddingOutcome
}

// ArtifactSink receives finished generation artifacts for durable storage and
// downstream notification. Sink failures are logged by callers, never
// surfaced to the generation request.
type ArtifactSink interface {
	Archive(ctx context.Context, artifact GenerationArtifact, audio []byte) error
}
