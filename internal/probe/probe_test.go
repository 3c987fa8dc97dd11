package probe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// stubProbe writes an executable script that mimics ffprobe output.
func stubProbe(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "ffprobe-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	return path
}

func TestNewDefaultsToPathLookup(t *testing.T) {
	p := New("")
	if p.binary != "ffprobe" {
		t.Errorf("Expected default binary ffprobe, got %s", p.binary)
	}

	p = New("  ")
	if p.binary != "ffprobe" {
		t.Errorf("Expected default binary for blank input, got %s", p.binary)
	}
}

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    float64
		wantErr bool
	}{
		{"ContainerDuration", `echo "120.5"`, 120.5, false},
		{"WholeSeconds", `echo "42"`, 42, false},
		{"ZeroDuration", `echo "0"`, 0, true},
		{"NegativeDuration", `echo "-3"`, 0, true},
		{"Garbage", `echo "N/A"`, 0, true},
		{"EmptyOutput", `true`, 0, true},
		{"NonZeroExit", `exit 1`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(stubProbe(t, tt.script))
			got, err := p.DurationSeconds(context.Background(), "clip.mp4")

			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error")
				}
				if !errors.Is(err, ErrNoDuration) {
					t.Errorf("Expected ErrNoDuration, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("DurationSeconds() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected duration %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDurationSecondsStreamFallback(t *testing.T) {
	// Report no container duration, then a stream duration on the second call.
	script := `case "$*" in
*format=duration*) echo "N/A" ;;
*stream=duration*) echo "17.25" ;;
esac`

	p := New(stubProbe(t, script))
	got, err := p.DurationSeconds(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("DurationSeconds() error: %v", err)
	}
	if got != 17.25 {
		t.Errorf("Expected fallback duration 17.25, got %v", got)
	}
}

func TestDurationSecondsMissingBinary(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, err := p.DurationSeconds(context.Background(), "clip.mp4"); err == nil {
		t.Fatal("Expected an error for a missing binary")
	}
}

func TestValid(t *testing.T) {
	if valid(math.NaN()) || valid(math.Inf(1)) || valid(0) || valid(-1) {
		t.Error("valid() accepted a degenerate duration")
	}
	if !valid(0.001) {
		t.Error("valid() rejected a small positive duration")
	}
}
