// Package embedding precomputes speaker embeddings from reference audio by
// invoking the external extraction script. Extraction is strictly an
// optimization: a missing embedding only makes cloning slower, so failures
// are recorded as a tagged outcome and never propagated as errors.
package embedding

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
)

// Extraction script flags.
const (
	flagAudio  = "--audio"
	flagOutput = "--output"
)

// Extractor runs the one-shot embedding extraction subprocess.
type Extractor struct {
	binaryPath string
	scriptPath string
	timeout    time.Duration
	log        *logger.Logger
}

// New creates an extractor for the given interpreter binary and extraction
// script. A zero timeout disables the per-extraction deadline.
func New(binaryPath, scriptPath string, timeout time.Duration, log *logger.Logger) *Extractor {
	return &Extractor{
		binaryPath: binaryPath,
		scriptPath: scriptPath,
		timeout:    timeout,
		log:        log,
	}
}

// Extract computes the embedding for audioPath and writes it to outputPath.
// Re-extraction overwrites the previous embedding, it never duplicates.
// A non-zero exit yields EmbeddingUnavailable with the captured diagnostics.
func (e *Extractor) Extract(ctx context.Context, audioPath, outputPath string) core.EmbeddingOutcome {
	runCtx := ctx

	if e.timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.log.Info("Extracting speaker embedding: %s -> %s", audioPath, outputPath)

	var stderr bytes.Buffer

	// #nosec G204 -- binary and script paths come from validated configuration
	cmd := exec.CommandContext(
		runCtx,
		e.binaryPath,
		e.scriptPath,
		flagAudio, audioPath,
		flagOutput, outputPath,
	)
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		diagnostic := runErr.Error()
		if stderr.Len() > 0 {
			diagnostic = stderr.String()
		}

		e.log.Warn("Embedding extraction failed for %s: %s", audioPath, diagnostic)

		return core.EmbeddingOutcome{
			Status: core.EmbeddingUnavailable,
			Err:    diagnostic,
		}
	}

	e.log.Info("Speaker embedding cached: %s", outputPath)

	return core.EmbeddingOutcome{
		Status: core.EmbeddingCached,
		Err:    "",
	}
}
