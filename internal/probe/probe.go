package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"vicom/internal/logging"
)

// ErrNoDuration indicates that ffprobe could not report a finite, positive
// duration for the input. This usually means the file is corrupt or not a
// media container at all.
var ErrNoDuration = errors.New("could not determine video duration")

// Prober reads stream durations via the ffprobe binary.
type Prober struct {
	binary string
}

// New creates a Prober. An empty binary falls back to "ffprobe" on PATH.
func New(binary string) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// DurationSeconds returns the clip duration in seconds.
//
// The container-level duration is preferred; some containers (notably
// fragmented MP4 and raw streams) omit it, so the first video stream's
// duration is used as a fallback. Returns ErrNoDuration when neither
// query yields a finite positive value.
func (p *Prober) DurationSeconds(ctx context.Context, path string) (float64, error) {
	if d, err := p.query(ctx, path,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nk=1:nw=1",
	); err == nil && valid(d) {
		return d, nil
	}

	d, err := p.query(ctx, path,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=duration",
		"-of", "default=nk=1:nw=1",
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoDuration, err)
	}
	if !valid(d) {
		return 0, ErrNoDuration
	}
	return d, nil
}

// query runs ffprobe with the given flags followed by the file path and
// parses stdout as a decimal seconds value.
func (p *Prober) query(ctx context.Context, path string, flags ...string) (float64, error) {
	args := append(append([]string(nil), flags...), path)
	cmd := exec.CommandContext(ctx, p.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Debug("ffprobe failed for %s: %v (%s)", path, err, strings.TrimSpace(stderr.String()))
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	d, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned %q: %w", out, err)
	}
	return d, nil
}

func valid(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}
