package encode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"vicom/internal/logging"
)

// Encoder executes ffmpeg with composed argument lists and tracks the
// in-flight processes so they can be killed on shutdown.
type Encoder struct {
	binary    string
	processes map[string]*exec.Cmd
	processMu sync.Mutex
}

// NewEncoder creates an Encoder. An empty binary falls back to "ffmpeg" on PATH.
func NewEncoder(binary string) *Encoder {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Encoder{
		binary:    binary,
		processes: make(map[string]*exec.Cmd),
	}
}

// Run executes one encode. outputPath is only used as the tracking key; the
// actual output destination is part of args. Any non-zero exit is a failure.
// Canceling ctx kills the subprocess.
func (e *Encoder) Run(ctx context.Context, outputPath string, args []string) error {
	cmd := exec.CommandContext(ctx, e.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.processMu.Lock()
	e.processes[outputPath] = cmd
	e.processMu.Unlock()

	defer func() {
		e.processMu.Lock()
		delete(e.processes, outputPath)
		e.processMu.Unlock()
	}()

	logging.Debug("Running %s %s", e.binary, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error("FFmpeg stderr: %s", stderr.String())
		return fmt.Errorf("encoder exited abnormally: %w", err)
	}

	return nil
}

// Cleanup kills all in-flight encode processes.
func (e *Encoder) Cleanup() {
	e.processMu.Lock()
	defer e.processMu.Unlock()

	for path, cmd := range e.processes {
		if cmd.Process != nil {
			logging.Info("Killing encode process for: %s", path)
			if err := cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill encode process for %s: %v", path, err)
			}
		}
	}
}
