package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
)

const outputDirPermissions = 0o750

// Result carries the captured output streams of one engine run.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes engine invocations as one-shot subprocesses. Each call
// spawns an independent process; the runner itself holds no mutable state, so
// concurrent runs only contend on the operating system.
type Runner struct {
	binaryPath string
	scriptPath string
	timeout    time.Duration
	log        *logger.Logger
}

// NewRunner creates a runner for the given interpreter binary and generation
// script. A zero timeout disables the per-invocation deadline.
func NewRunner(binaryPath, scriptPath string, timeout time.Duration, log *logger.Logger) *Runner {
	return &Runner{
		binaryPath: binaryPath,
		scriptPath: scriptPath,
		timeout:    timeout,
		log:        log,
	}
}

// Run executes one invocation and waits for the subprocess to exit. The wait
// suspends only the calling goroutine. A non-zero exit returns
// core.ErrEngineFailure wrapped with the captured stderr; the produced audio
// file is never inspected.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Result, error) {
	dirErr := os.MkdirAll(filepath.Dir(inv.OutputPath), outputDirPermissions)
	if dirErr != nil {
		return Result{Stdout: "", Stderr: ""}, fmt.Errorf("failed to create output directory: %w", dirErr)
	}

	runCtx := ctx

	if r.timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := inv.Args(r.scriptPath)

	r.log.Info("Running engine: mode=%s model=%s output=%s", inv.Mode, inv.Model, inv.OutputPath)

	var stdout, stderr bytes.Buffer

	// #nosec G204 -- binary and script paths come from validated configuration
	cmd := exec.CommandContext(runCtx, r.binaryPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runErr != nil {
		return result, fmt.Errorf("%w: %v: %s", core.ErrEngineFailure, runErr, result.Stderr)
	}

	return result, nil
}
