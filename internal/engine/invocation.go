// Package engine builds and runs invocations of the external synthesis
// engine. The engine is an opaque command-line program; this package owns the
// argument contract and the subprocess lifecycle, nothing about the model.
package engine

import "github.com/book-expert/voice-service/internal/core"

// Engine command-line flags.
const (
	flagText             = "--text"
	flagMode             = "--mode"
	flagModel            = "--model"
	flagLanguage         = "--language"
	flagOutput           = "--output"
	flagSpeaker          = "--speaker"
	flagInstruct         = "--instruct"
	flagReferenceText    = "--ref-text"
	flagReferenceAudio   = "--ref-audio"
	flagSpeakerEmbedding = "--speaker-embedding"
	flagVoiceDescription = "--voice-description"
)

// Invocation is one fully resolved engine call. Only the fields relevant to
// the mode are set; Args emits exactly the flags that carry a value.
type Invocation struct {
	Text       string
	Mode       core.Mode
	Model      core.ModelSize
	Language   string
	OutputPath string

	// custom_voice
	Speaker          string
	StyleInstruction string

	// voice_clone conditioning: at most one of EmbeddingPath and
	// ReferenceAudioPath is set, embedding preferred by resolution.
	EmbeddingPath      string
	ReferenceAudioPath string
	ReferenceText      string

	// voice_design
	VoiceDescription string
}

// Args returns the engine argument vector for the invocation, starting with
// the generation script path.
func (inv Invocation) Args(scriptPath string) []string {
	args := []string{
		scriptPath,
		flagText, inv.Text,
		flagMode, string(inv.Mode),
		flagModel, string(inv.Model),
		flagLanguage, inv.Language,
		flagOutput, inv.OutputPath,
	}

	if inv.Speaker != "" {
		args = append(args, flagSpeaker, inv.Speaker)
	}

	if inv.StyleInstruction != "" {
		args = append(args, flagInstruct, inv.StyleInstruction)
	}

	if inv.ReferenceText != "" {
		args = append(args, flagReferenceText, inv.ReferenceText)
	}

	if inv.VoiceDescription != "" {
		args = append(args, flagVoiceDescription, inv.VoiceDescription)
	}

	if inv.EmbeddingPath != "" {
		args = append(args, flagSpeakerEmbedding, inv.EmbeddingPath)
	} else if inv.ReferenceAudioPath != "" {
		args = append(args, flagReferenceAudio, inv.ReferenceAudioPath)
	}

	return args
}
