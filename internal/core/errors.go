package core

import "errors"

// Static errors shared across the service. Validation errors are returned
// before any side effect takes place; ErrEngineFailure wraps the captured
// stderr of a failed synthesis subprocess.
var (
	// ErrTextRequired indicates a generation request with empty text.
	ErrTextRequired = errors.New("text is required")
	// ErrNameRequired indicates a profile operation with an empty name.
	ErrNameRequired = errors.New("voice name is required")
	// ErrModeRequired indicates a generation request without exactly one mode.
	ErrModeRequired = errors.New("exactly one generation mode is required")
	// ErrProfileNotFound indicates an unknown voice profile id.
	ErrProfileNotFound = errors.New("voice not found")
	// ErrNoReferenceStaged indicates that profile creation was attempted
	// without a staged reference recording.
	ErrNoReferenceStaged = errors.New("no reference audio uploaded")
	// ErrUnknownSpeaker indicates a custom_voice request naming a speaker
	// that is not in the preset catalog.
	ErrUnknownSpeaker = errors.New("unknown preset speaker")
	// ErrEngineFailure indicates a non-zero exit from the synthesis engine.
	ErrEngineFailure = errors.New("speech generation failed")
)
