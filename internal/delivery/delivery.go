package delivery

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"vicom/internal/logging"
	"vicom/internal/mediatypes"
	"vicom/internal/metrics"
	"vicom/internal/pipeline"
	"vicom/internal/streaming"
)

// Sentinel errors for target resolution.
var (
	// ErrNotFound means the requested name does not resolve to a servable
	// artifact: it is missing, hidden, or not a regular file.
	ErrNotFound = errors.New("artifact not found")

	// ErrEmptyArtifact means the artifact exists but has zero bytes, which
	// indicates a publish bug rather than a client mistake.
	ErrEmptyArtifact = errors.New("artifact is empty")
)

// Target is a resolved, stat-ed artifact ready for delivery.
type Target struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// ContentType returns the MIME type derived from the artifact's extension.
func (t Target) ContentType() string {
	return mediatypes.GetMimeType(strings.ToLower(filepath.Ext(t.Name)))
}

// ETag returns a weak validator derived from modification time and size.
func (t Target) ETag() string {
	return fmt.Sprintf("W/\"%d-%d\"", t.ModTime.UnixMilli(), t.Size)
}

// Service serves finished artifacts out of the output directory.
type Service struct {
	outputDir string
	stream    streaming.Config
}

// NewService creates a delivery Service over the given output directory.
func NewService(outputDir string) *Service {
	return &Service{
		outputDir: outputDir,
		stream:    streaming.DefaultConfig(),
	}
}

// Resolve maps a client-supplied name to an artifact in the output
// directory. Any directory components are stripped so the lookup can never
// escape it, and dot-prefixed names are refused because in-flight encodes
// are published under hidden names.
func (s *Service) Resolve(name string) (Target, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) || strings.HasPrefix(base, ".") {
		return Target{}, ErrNotFound
	}

	path := filepath.Join(s.outputDir, base)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Target{}, ErrNotFound
	}

	return Target{
		Name:    base,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// List returns every finished video artifact in the output directory,
// newest first. Hidden entries (in-flight encodes) and non-video files are
// skipped.
func (s *Service) List() ([]pipeline.Artifact, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	artifacts := make([]pipeline.Artifact, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !mediatypes.IsVideoArtifact(strings.ToLower(filepath.Ext(name))) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logging.Warn("Skipping unreadable artifact %s: %v", name, err)
			continue
		}

		artifacts = append(artifacts, pipeline.Artifact{
			Name:        name,
			Size:        info.Size(),
			Date:        info.ModTime(),
			DownloadURL: "/api/download/" + url.PathEscape(name),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Date.After(artifacts[j].Date)
	})
	return artifacts, nil
}

// ServeHead writes the artifact's headers with no body and no range
// processing.
func (s *Service) ServeHead(w http.ResponseWriter, t Target) {
	s.baseHeaders(w, t)
	w.Header().Set("Content-Length", strconv.FormatInt(t.Size, 10))
	w.WriteHeader(http.StatusOK)
	metrics.DeliveryRequestsTotal.WithLabelValues("head", "ok").Inc()
}

// ServeGet delivers the artifact body. forceDownload switches the response
// to an attachment and bypasses range processing; otherwise a Range header
// selects a 206 partial response and its absence a full inline 200.
func (s *Service) ServeGet(w http.ResponseWriter, r *http.Request, t Target, forceDownload bool) error {
	mode := deliveryMode(r, forceDownload)

	if t.Size == 0 {
		metrics.DeliveryRequestsTotal.WithLabelValues(mode, "empty").Inc()
		return ErrEmptyArtifact
	}

	s.baseHeaders(w, t)

	if forceDownload {
		w.Header().Set("Content-Disposition", ContentDisposition(t.Name))
		w.Header().Set("Content-Length", strconv.FormatInt(t.Size, 10))
		w.WriteHeader(http.StatusOK)
		return s.streamSection(w, r, t, 0, t.Size, mode)
	}

	rng, err := ParseRange(r.Header.Get("Range"), t.Size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", t.Size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		metrics.DeliveryRequestsTotal.WithLabelValues(mode, "unsatisfiable").Inc()
		return nil
	}

	if rng != nil {
		w.Header().Set("Content-Range", rng.ContentRange(t.Size))
		w.Header().Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
		w.WriteHeader(http.StatusPartialContent)
		return s.streamSection(w, r, t, rng.Start, rng.Length(), mode)
	}

	w.Header().Set("Content-Length", strconv.FormatInt(t.Size, 10))
	w.WriteHeader(http.StatusOK)
	return s.streamSection(w, r, t, 0, t.Size, mode)
}

// streamSection copies length bytes of the artifact starting at offset to
// the client. Client disconnects are logged at debug and not reported as
// errors; headers are already written by the time the copy starts, so a
// copy failure can only terminate the body.
func (s *Service) streamSection(w http.ResponseWriter, r *http.Request, t Target, offset, length int64, mode string) error {
	f, err := os.Open(t.Path)
	if err != nil {
		metrics.DeliveryRequestsTotal.WithLabelValues(mode, "error").Inc()
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	written, err := streaming.Copy(r.Context(), w, io.NewSectionReader(f, offset, length), s.stream)
	metrics.DeliveryBytesTotal.Add(float64(written))

	switch {
	case err == nil:
		metrics.DeliveryRequestsTotal.WithLabelValues(mode, "ok").Inc()
		logging.Debug("Delivered %s: %d bytes (%s)", t.Name, written, mode)
		return nil
	case errors.Is(err, streaming.ErrClientGone):
		metrics.DeliveryRequestsTotal.WithLabelValues(mode, "ok").Inc()
		logging.Debug("Client disconnected while receiving %s after %d bytes", t.Name, written)
		return nil
	default:
		metrics.DeliveryRequestsTotal.WithLabelValues(mode, "error").Inc()
		return fmt.Errorf("failed streaming %s: %w", t.Name, err)
	}
}

func (s *Service) baseHeaders(w http.ResponseWriter, t Target) {
	h := w.Header()
	h.Set("Content-Type", t.ContentType())
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", "no-store")
	h.Set("ETag", t.ETag())
	h.Set("Last-Modified", t.ModTime.UTC().Format(http.TimeFormat))
	h.Set("X-Content-Type-Options", "nosniff")
}

func deliveryMode(r *http.Request, forceDownload bool) string {
	switch {
	case forceDownload:
		return "attachment"
	case r.Header.Get("Range") != "":
		return "range"
	default:
		return "inline"
	}
}

var nonASCII = regexp.MustCompile(`[^\x20-\x7E]`)

// ContentDisposition builds an attachment disposition carrying both an
// ASCII fallback filename and the RFC 5987 encoded original.
func ContentDisposition(name string) string {
	fallback := nonASCII.ReplaceAllString(name, "_")
	fallback = strings.ReplaceAll(fallback, `"`, `_`)
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fallback, encodeRFC5987(name))
}

// encodeRFC5987 percent-encodes everything outside the attr-char set of
// RFC 5987 so non-ASCII filenames survive the Content-Disposition header.
func encodeRFC5987(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '!', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
