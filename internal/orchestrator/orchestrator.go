// Package orchestrator resolves generation requests into fully specified
// engine invocations and manages the resulting output artifacts. Resolution
// is deliberately thin: it picks the fastest available speaker-conditioning
// source but does not pre-validate what the engine will verify itself.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/catalog"
	"github.com/book-expert/voice-service/internal/core"
	"github.com/book-expert/voice-service/internal/engine"
	"github.com/google/uuid"
)

const (
	artifactExtension = ".wav"
	artifactURLPrefix = "/audio/"
)

// Runner executes a resolved engine invocation.
type Runner interface {
	Run(ctx context.Context, inv engine.Invocation) (engine.Result, error)
}

// Orchestrator turns generation requests into engine runs. It holds no
// per-request state; concurrent calls share only the staging slot and the
// profile store, which guard themselves.
type Orchestrator struct {
	profiles core.ProfileStore
	stage    core.ReferenceStage
	runner   Runner
	sink     core.ArtifactSink
	output   string
	log      *logger.Logger
}

// New creates an orchestrator writing artifacts into outputDir. The sink may
// be nil, in which case artifacts live only in the output directory.
func New(
	profiles core.ProfileStore,
	stage core.ReferenceStage,
	runner Runner,
	sink core.ArtifactSink,
	outputDir string,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		profiles: profiles,
		stage:    stage,
		runner:   runner,
		sink:     sink,
		output:   outputDir,
		log:      log,
	}
}

// Generate validates the request, resolves it into one engine invocation,
// waits for the subprocess and returns the output artifact. Failed requests
// are terminal; the caller re-issues if desired.
func (o *Orchestrator) Generate(ctx context.Context, req core.GenerationRequest) (core.GenerationArtifact, error) {
	validationErr := req.Validate()
	if validationErr != nil {
		return core.GenerationArtifact{}, validationErr
	}

	inv, resolveErr := o.resolve(req)
	if resolveErr != nil {
		return core.GenerationArtifact{}, resolveErr
	}

	artifactID := uuid.NewString()
	fileName := artifactID + artifactExtension
	inv.OutputPath = filepath.Join(o.output, fileName)

	_, runErr := o.runner.Run(ctx, inv)
	if runErr != nil {
		return core.GenerationArtifact{}, runErr
	}

	artifact := core.GenerationArtifact{
		ID:       artifactID,
		FileName: fileName,
		Path:     inv.OutputPath,
		URL:      artifactURLPrefix + fileName,
	}

	o.archive(ctx, artifact)

	return artifact, nil
}

// resolve builds the mode-appropriate invocation. The output path is filled
// in by Generate.
func (o *Orchestrator) resolve(req core.GenerationRequest) (engine.Invocation, error) {
	mode, modeErr := req.Mode()
	if modeErr != nil {
		return engine.Invocation{}, modeErr
	}

	inv := engine.Invocation{
		Text:               req.Text,
		Mode:               mode,
		Model:              req.ModelSize,
		Language:           req.Language,
		OutputPath:         "",
		Speaker:            "",
		StyleInstruction:   "",
		EmbeddingPath:      "",
		ReferenceAudioPath: "",
		ReferenceText:      "",
		VoiceDescription:   "",
	}

	if inv.Model == "" {
		inv.Model = core.ModelSmall
	}

	if inv.Language == "" {
		inv.Language = core.DefaultLanguage
	}

	switch mode {
	case core.ModeCustomVoice:
		speaker, known := catalog.Lookup(req.CustomVoice.SpeakerID)
		if !known {
			return engine.Invocation{}, fmt.Errorf("%w: %q", core.ErrUnknownSpeaker, req.CustomVoice.SpeakerID)
		}

		inv.Speaker = speaker.ID
		inv.StyleInstruction = req.CustomVoice.StyleInstruction
	case core.ModeVoiceClone:
		o.resolveCloneConditioning(req.VoiceClone, &inv)
	case core.ModeVoiceDesign:
		// Only the large checkpoint supports voice design.
		inv.Model = core.ModelLarge
		inv.VoiceDescription = req.VoiceDesign.Description
	}

	return inv, nil
}

// resolveCloneConditioning picks the speaker-conditioning source, first match
// wins: saved-profile embedding, saved-profile audio (with reference-text
// backfill), then whatever is currently staged. When nothing matches the
// invocation proceeds unconditioned and the engine surfaces the failure.
func (o *Orchestrator) resolveCloneConditioning(spec *core.VoiceCloneSpec, inv *engine.Invocation) {
	inv.ReferenceText = spec.ReferenceText

	if spec.SavedVoiceID != "" {
		profile, getErr := o.profiles.Get(spec.SavedVoiceID)
		if getErr == nil {
			embeddingPath := o.profiles.EmbeddingPath(profile.ID)
			if profile.HasEmbedding && fileExists(embeddingPath) {
				inv.EmbeddingPath = embeddingPath

				o.log.Info("Using cached speaker embedding for voice %q", profile.ID)

				return
			}

			audioPath := o.profiles.AudioPath(profile.ID)
			if fileExists(audioPath) {
				inv.ReferenceAudioPath = audioPath

				if inv.ReferenceText == "" {
					inv.ReferenceText = profile.ReferenceText
				}

				return
			}
		}
		// An unknown or hollow saved voice falls through to the staged slot.
	}

	stagedPath, staged := o.stage.StagedPath()
	if staged {
		inv.ReferenceAudioPath = stagedPath
	}
}

// archive hands the finished artifact to the sink best-effort. Sink failures
// never affect the generation result.
func (o *Orchestrator) archive(ctx context.Context, artifact core.GenerationArtifact) {
	if o.sink == nil {
		return
	}

	audio, readErr := os.ReadFile(artifact.Path)
	if readErr != nil {
		o.log.Warn("Failed to read artifact %s for archiving: %v", artifact.FileName, readErr)

		return
	}

	archiveErr := o.sink.Archive(ctx, artifact, audio)
	if archiveErr != nil {
		o.log.Warn("Failed to archive artifact %s: %v", artifact.FileName, archiveErr)
	}
}

func fileExists(path string) bool {
	_, statErr := os.Stat(path)

	return statErr == nil
}
