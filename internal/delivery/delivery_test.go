package delivery

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeArtifact drops a file into dir and returns the Service over dir.
func writeArtifact(t *testing.T, dir, name string, data []byte) *Service {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return NewService(dir)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	svc := writeArtifact(t, dir, "clip.mp4", []byte("payload"))

	target, err := svc.Resolve("clip.mp4")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if target.Name != "clip.mp4" || target.Size != 7 {
		t.Errorf("Resolve() = %+v, want name clip.mp4 size 7", target)
	}
}

func TestResolveStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	svc := writeArtifact(t, dir, "clip.mp4", []byte("payload"))

	target, err := svc.Resolve("../../etc/clip.mp4")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if target.Path != filepath.Join(dir, "clip.mp4") {
		t.Errorf("Resolve() escaped the output directory: %s", target.Path)
	}
}

func TestResolveRejections(t *testing.T) {
	dir := t.TempDir()
	svc := writeArtifact(t, dir, ".inflight-abc.mp4", []byte("partial"))
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"missing.mp4", ".inflight-abc.mp4", "..", ".", "", "sub"} {
		if _, err := svc.Resolve(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestServeGetFull(t *testing.T) {
	data := []byte(strings.Repeat("x", 1000))
	svc := writeArtifact(t, t.TempDir(), "clip.mp4", data)
	target, _ := svc.Resolve("clip.mp4")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/download/clip.mp4", nil)
	if err := svc.ServeGet(rec, req, target, false); err != nil {
		t.Fatalf("ServeGet() error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 1000 {
		t.Errorf("Expected 1000 body bytes, got %d", rec.Body.Len())
	}
	h := rec.Header()
	if h.Get("Content-Type") != "video/mp4" {
		t.Errorf("Content-Type = %q", h.Get("Content-Type"))
	}
	if h.Get("Accept-Ranges") != "bytes" {
		t.Errorf("Accept-Ranges = %q", h.Get("Accept-Ranges"))
	}
	if h.Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", h.Get("Cache-Control"))
	}
	if !strings.HasPrefix(h.Get("ETag"), `W/"`) {
		t.Errorf("ETag = %q, want weak validator", h.Get("ETag"))
	}
	if h.Get("Last-Modified") == "" {
		t.Error("Last-Modified missing")
	}
	if h.Get("Content-Disposition") != "" {
		t.Error("Inline response must not carry a disposition")
	}
}

func TestServeGetPartial(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	svc := writeArtifact(t, t.TempDir(), "clip.mp4", data)
	target, _ := svc.Resolve("clip.mp4")

	tests := []struct {
		name       string
		header     string
		wantStart  int64
		wantLength int
		wantCR     string
	}{
		{"FirstHundred", "bytes=0-99", 0, 100, "bytes 0-99/1000"},
		{"Tail", "bytes=900-", 900, 100, "bytes 900-999/1000"},
		{"ClampedEnd", "bytes=990-5000", 990, 10, "bytes 990-999/1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/download/clip.mp4", nil)
			req.Header.Set("Range", tt.header)

			if err := svc.ServeGet(rec, req, target, false); err != nil {
				t.Fatalf("ServeGet() error: %v", err)
			}
			if rec.Code != http.StatusPartialContent {
				t.Fatalf("Expected 206, got %d", rec.Code)
			}
			if got := rec.Header().Get("Content-Range"); got != tt.wantCR {
				t.Errorf("Content-Range = %q, want %q", got, tt.wantCR)
			}
			body := rec.Body.Bytes()
			if len(body) != tt.wantLength {
				t.Fatalf("Expected %d body bytes, got %d", tt.wantLength, len(body))
			}
			if body[0] != data[tt.wantStart] {
				t.Errorf("Body starts with byte %d, want %d", body[0], data[tt.wantStart])
			}
		})
	}
}

func TestServeGetUnsatisfiableRange(t *testing.T) {
	svc := writeArtifact(t, t.TempDir(), "clip.mp4", make([]byte, 1000))
	target, _ := svc.Resolve("clip.mp4")

	for _, header := range []string{"bytes=2000-3000", "bytes=abc"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/download/clip.mp4", nil)
		req.Header.Set("Range", header)

		if err := svc.ServeGet(rec, req, target, false); err != nil {
			t.Fatalf("ServeGet() error: %v", err)
		}
		if rec.Code != http.StatusRequestedRangeNotSatisfiable {
			t.Errorf("Range %q: expected 416, got %d", header, rec.Code)
		}
		if got := rec.Header().Get("Content-Range"); got != "bytes */1000" {
			t.Errorf("Range %q: Content-Range = %q, want %q", header, got, "bytes */1000")
		}
		if rec.Body.Len() != 0 {
			t.Errorf("Range %q: 416 must have no body, got %d bytes", header, rec.Body.Len())
		}
	}
}

func TestServeGetForceDownload(t *testing.T) {
	svc := writeArtifact(t, t.TempDir(), "clip☃.mp4", []byte("payload"))
	target, _ := svc.Resolve("clip☃.mp4")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/download/x?download=true", nil)
	// A Range header must be ignored when the client forces a download.
	req.Header.Set("Range", "bytes=0-1")

	if err := svc.ServeGet(rec, req, target, true); err != nil {
		t.Fatalf("ServeGet() error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "payload" {
		t.Errorf("Expected whole body, got %q", rec.Body.String())
	}

	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `filename="clip_.mp4"`) {
		t.Errorf("Disposition missing ASCII fallback: %q", cd)
	}
	if !strings.Contains(cd, "filename*=UTF-8''clip%E2%98%83.mp4") {
		t.Errorf("Disposition missing RFC 5987 filename: %q", cd)
	}
}

func TestServeGetEmptyArtifact(t *testing.T) {
	svc := writeArtifact(t, t.TempDir(), "clip.mp4", nil)
	target, _ := svc.Resolve("clip.mp4")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/download/clip.mp4", nil)
	if err := svc.ServeGet(rec, req, target, false); !errors.Is(err, ErrEmptyArtifact) {
		t.Errorf("ServeGet() error = %v, want ErrEmptyArtifact", err)
	}
}

func TestServeHead(t *testing.T) {
	svc := writeArtifact(t, t.TempDir(), "clip.webm", make([]byte, 512))
	target, _ := svc.Resolve("clip.webm")

	rec := httptest.NewRecorder()
	svc.ServeHead(rec, target)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Length"); got != "512" {
		t.Errorf("Content-Length = %q, want 512", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/webm" {
		t.Errorf("Content-Type = %q, want video/webm", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD must have no body, got %d bytes", rec.Body.Len())
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mp4", "b.webm", ".inflight-x.mp4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	svc := NewService(dir)
	artifacts, err := svc.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("Expected 2 artifacts, got %d", len(artifacts))
	}
	for _, a := range artifacts {
		if a.DownloadURL != "/api/download/"+a.Name {
			t.Errorf("DownloadURL = %q for %q", a.DownloadURL, a.Name)
		}
	}
}

func TestContentDispositionASCII(t *testing.T) {
	cd := ContentDisposition("report final.mp4")
	if cd != `attachment; filename="report final.mp4"; filename*=UTF-8''report%20final.mp4` {
		t.Errorf("ContentDisposition() = %q", cd)
	}
}
