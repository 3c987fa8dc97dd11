package removebg

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"vicom/internal/logging"
)

// ErrNoCandidate means every candidate invocation failed; the Report carries
// the per-candidate reasons.
var ErrNoCandidate = errors.New("no background-removal candidate succeeded")

// pngSignature is the 8-byte magic at the start of every PNG file.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// tinyPNG is a 1x1 transparent PNG used to exercise the helper end to end.
var tinyPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAA" +
		"AAC0lEQVR42mP8z8AABQMBgZp6f1kAAAAASUVORK5CYII=")

// Candidate is one way of invoking the background-removal helper. The
// contract is image bytes on stdin, PNG bytes on stdout, zero exit.
type Candidate struct {
	Name string
	Bin  string
	Args []string
}

// Attempt records the outcome of trying one candidate.
type Attempt struct {
	Candidate string `json:"candidate"`
	Error     string `json:"error,omitempty"`
}

// Report describes a full probe pass: which candidate won, if any, and what
// every attempted candidate said.
type Report struct {
	Winner   string    `json:"winner,omitempty"`
	Attempts []Attempt `json:"attempts"`
}

// Health is the result of a helper health check.
type Health struct {
	OK        bool      `json:"ok"`
	Result    string    `json:"result,omitempty"`
	Bytes     int       `json:"bytes,omitempty"`
	ModelsDir string    `json:"modelsDir"`
	Attempts  []Attempt `json:"attempts,omitempty"`
}

// Runner drives the background-removal helper through an ordered list of
// candidate invocations, trying each until one succeeds.
type Runner struct {
	candidates []Candidate
	modelsDir  string
	timeout    time.Duration
}

// NewRunner builds a Runner from the environment. PYTHON_BIN and
// REMBG_HELPER override the interpreter and helper script; U2NET_HOME
// overrides where the helper finds its models.
func NewRunner() *Runner {
	helper := envOr("REMBG_HELPER", "/opt/pyenv/bin/rembg_pipe.py")

	candidates := []Candidate{
		{Name: "configured-python", Bin: envOr("PYTHON_BIN", "/opt/pyenv/bin/python"), Args: []string{helper}},
		{Name: "system-python3", Bin: "python3", Args: []string{helper}},
	}

	modelsDir := os.Getenv("U2NET_HOME")
	if modelsDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			modelsDir = filepath.Join(home, ".u2net")
		}
	}

	return &Runner{
		candidates: candidates,
		modelsDir:  modelsDir,
		timeout:    15 * time.Second,
	}
}

// NewRunnerWith builds a Runner over an explicit candidate list. Used by
// tests and by deployments that know exactly where the helper lives.
func NewRunnerWith(candidates []Candidate, modelsDir string, timeout time.Duration) *Runner {
	return &Runner{candidates: candidates, modelsDir: modelsDir, timeout: timeout}
}

// ModelsDir reports where the helper is told to find its models.
func (r *Runner) ModelsDir() string { return r.modelsDir }

// Process pushes image bytes through the first working candidate and
// returns the produced PNG bytes. The Report is returned in all cases so
// callers can surface what was tried.
func (r *Runner) Process(ctx context.Context, image []byte) ([]byte, Report, error) {
	report := Report{Attempts: make([]Attempt, 0, len(r.candidates))}

	for _, c := range r.candidates {
		out, err := r.runOne(ctx, c, image)
		if err == nil {
			report.Winner = c.Name
			report.Attempts = append(report.Attempts, Attempt{Candidate: c.Name})
			return out, report, nil
		}

		logging.Debug("Background-removal candidate %s failed: %v", c.Name, err)
		report.Attempts = append(report.Attempts, Attempt{Candidate: c.Name, Error: err.Error()})
		if ctx.Err() != nil {
			return nil, report, ctx.Err()
		}
	}

	return nil, report, ErrNoCandidate
}

// CheckHealth runs a tiny transparent PNG through the helper and classifies
// the output.
func (r *Runner) CheckHealth(ctx context.Context) Health {
	out, report, err := r.Process(ctx, tinyPNG)
	if err != nil {
		return Health{OK: false, ModelsDir: r.modelsDir, Attempts: report.Attempts}
	}

	result := "BYTES_OK"
	if bytes.HasPrefix(out, pngSignature) {
		result = "PNG_OK"
	}
	return Health{
		OK:        true,
		Result:    result,
		Bytes:     len(out),
		ModelsDir: r.modelsDir,
		Attempts:  report.Attempts,
	}
}

func (r *Runner) runOne(ctx context.Context, c Candidate, image []byte) ([]byte, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Bin, c.Args...)
	cmd.Stdin = bytes.NewReader(image)
	cmd.Env = append(os.Environ(), "U2NET_HOME="+r.modelsDir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, firstLine(msg))
		}
		return nil, err
	}
	if stdout.Len() == 0 {
		return nil, errors.New("helper produced no output")
	}
	return stdout.Bytes(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstLine(s string) string {
	if i := bytes.IndexByte([]byte(s), '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
