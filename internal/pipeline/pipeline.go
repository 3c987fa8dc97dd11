package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vicom/internal/encode"
	"vicom/internal/logging"
	"vicom/internal/mediatypes"
	"vicom/internal/metrics"
	"vicom/internal/probe"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Sentinel errors classifying a per-file failure. Handlers map these to
// HTTP status codes at the boundary.
var (
	// ErrValidation covers bad client input: missing files, unsupported
	// format, oversized uploads, unaccepted extensions, invalid trim ranges.
	ErrValidation = errors.New("invalid request")

	// ErrProbe covers inputs whose duration cannot be read; the file is
	// corrupt or not a supported media container.
	ErrProbe = errors.New("unreadable input")

	// ErrEncode covers encoder subprocess failures. Never retried here;
	// retry policy belongs to the caller.
	ErrEncode = errors.New("encode failed")
)

// Options are the per-request encode parameters shared by every file in the
// request.
type Options struct {
	Format            mediatypes.OutputFormat
	Preset            mediatypes.Preset
	RequestedSizeMB   float64
	PreserveMetadata  bool
	PreserveSubtitles bool
	Enhancement       mediatypes.Enhancement

	// TrimStart/TrimEnd are whole seconds; zero or negative means unset.
	// Both must be set together.
	TrimStart int
	TrimEnd   int

	CustomName string

	// MaxFileBytes is the per-endpoint upload ceiling; zero disables the check.
	MaxFileBytes int64

	// FileCount is the number of files in the whole request, used by the
	// output naming policy.
	FileCount int
}

// Upload is one file from the client: declared name, declared size, payload.
type Upload struct {
	Name string
	Size int64
	Data io.Reader
}

// Artifact describes one produced output file.
type Artifact struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	Date        time.Time `json:"date"`
	DownloadURL string    `json:"downloadUrl"`
}

// Pipeline runs the per-file transcode workflow:
// validate, stage, probe, plan, encode, finalize, cleanup.
type Pipeline struct {
	inputDir  string
	outputDir string
	prober    *probe.Prober
	encoder   *encode.Encoder
}

// New creates a Pipeline over the given staging and output directories.
func New(inputDir, outputDir string, prober *probe.Prober, encoder *encode.Encoder) *Pipeline {
	return &Pipeline{
		inputDir:  inputDir,
		outputDir: outputDir,
		prober:    prober,
		encoder:   encoder,
	}
}

// ValidateFormat rejects format tokens outside the supported set.
func ValidateFormat(format mediatypes.OutputFormat) error {
	if !mediatypes.SupportedFormats[format] {
		return fmt.Errorf("%w: unsupported format: %s", ErrValidation, format)
	}
	return nil
}

// Process moves one upload through the full state machine and returns the
// artifact descriptor. index is the file's position within the request,
// used for output naming. The staged copy of the upload is deleted before
// returning, whatever the outcome.
func (p *Pipeline) Process(ctx context.Context, up Upload, index int, opts Options) (Artifact, error) {
	start := time.Now()

	metrics.EncodeJobsInProgress.Inc()
	defer metrics.EncodeJobsInProgress.Dec()

	art, err := p.process(ctx, up, index, opts)
	status := "success"
	if err != nil {
		status = classify(err)
	}
	metrics.EncodeJobsTotal.WithLabelValues(string(opts.Format), status).Inc()
	metrics.EncodeJobDuration.Observe(time.Since(start).Seconds())

	return art, err
}

func (p *Pipeline) process(ctx context.Context, up Upload, index int, opts Options) (Artifact, error) {
	// Received -> Validated
	if strings.TrimSpace(up.Name) == "" {
		return Artifact{}, fmt.Errorf("%w: invalid file payload", ErrValidation)
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return Artifact{}, err
	}
	if opts.MaxFileBytes > 0 && up.Size > opts.MaxFileBytes {
		return Artifact{}, fmt.Errorf("%w: file size exceeds %s limit",
			ErrValidation, humanize.IBytes(uint64(opts.MaxFileBytes)))
	}

	ext := strings.ToLower(filepath.Ext(up.Name))
	if !mediatypes.IsAcceptedInput(ext) {
		return Artifact{}, fmt.Errorf("%w: unsupported input type: %s", ErrValidation, ext)
	}

	// Validated -> Staged
	stagedPath := filepath.Join(p.inputDir, uuid.NewString()+ext)
	if err := writeStagedInput(stagedPath, up.Data); err != nil {
		return Artifact{}, fmt.Errorf("failed to stage upload: %w", err)
	}
	// The staged copy belongs to this request alone and never outlives it.
	defer removeQuietly(stagedPath)

	// Staged -> Probed
	duration, err := p.prober.DurationSeconds(ctx, stagedPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: failed to read video duration (file may be corrupted or unsupported)", ErrProbe)
	}

	// Probed -> Planned
	effectiveDuration, trim, err := resolveTrim(opts.TrimStart, opts.TrimEnd, duration)
	if err != nil {
		return Artifact{}, err
	}

	profile, err := encode.ResolveProfile(opts.Format)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sizeMB := encode.EffectiveSizeMB(opts.Preset, opts.RequestedSizeMB)
	targetBytes := int64(math.Floor(sizeMB * 1024 * 1024))
	if targetBytes < 1 {
		targetBytes = 1
	}
	videoKbps := encode.VideoBitrateKbps(targetBytes, effectiveDuration, profile.AudioBitrateKbps)

	logging.Debug("Planned encode for %s: %s, %d kbps video over %.2fs targeting %s",
		up.Name, opts.Format, videoKbps, effectiveDuration, humanize.IBytes(uint64(targetBytes)))

	// Planned -> Encoding. The encoder writes to a hidden in-flight name;
	// the artifact only appears under its final name after a clean exit,
	// so delivery can never observe a partial write.
	workPath := filepath.Join(p.outputDir, ".inflight-"+uuid.NewString()+"."+profile.Container)
	args := encode.BuildArgs(encode.CommandSpec{
		InputPath:         stagedPath,
		OutputPath:        workPath,
		Profile:           profile,
		VideoBitrateKbps:  videoKbps,
		Trim:              trim,
		PreserveMetadata:  opts.PreserveMetadata,
		PreserveSubtitles: opts.PreserveSubtitles,
		Enhancement:       opts.Enhancement,
	})

	if err := p.encoder.Run(ctx, workPath, args); err != nil {
		removeQuietly(workPath)
		if ctx.Err() != nil {
			return Artifact{}, ctx.Err()
		}
		return Artifact{}, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	// Encoding -> Finalized
	outName, err := uniqueFileName(p.outputDir, proposeBaseName(opts.CustomName, up.Name, index, opts.FileCount)+"."+profile.Container)
	if err != nil {
		removeQuietly(workPath)
		return Artifact{}, fmt.Errorf("failed to finalize output name: %w", err)
	}

	outPath := filepath.Join(p.outputDir, outName)
	if err := os.Rename(workPath, outPath); err != nil {
		removeQuietly(workPath)
		return Artifact{}, fmt.Errorf("failed to publish output: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to stat output: %w", err)
	}

	return Artifact{
		Name:        outName,
		Size:        info.Size(),
		Date:        info.ModTime(),
		DownloadURL: "/api/download/" + url.PathEscape(outName),
	}, nil
}

// resolveTrim validates the trim window against the probed duration and
// returns the effective encode duration.
func resolveTrim(start, end int, duration float64) (float64, *encode.TrimWindow, error) {
	hasStart := start > 0
	hasEnd := end > 0

	if hasStart != hasEnd {
		return 0, nil, fmt.Errorf("%w: both trimStart and trimEnd must be provided to trim", ErrValidation)
	}
	if !hasEnd {
		return duration, nil, nil
	}
	if start >= end || float64(end) > duration {
		return 0, nil, fmt.Errorf("%w: invalid trim range; ensure trimEnd > trimStart and within duration", ErrValidation)
	}

	return float64(end - start), &encode.TrimWindow{Start: start, End: end}, nil
}

func writeStagedInput(path string, data io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		removeQuietly(path)
		return err
	}
	return f.Close()
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove %s: %v", path, err)
	}
}

func classify(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrProbe):
		return "unreadable"
	case errors.Is(err, ErrEncode):
		return "encode_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
