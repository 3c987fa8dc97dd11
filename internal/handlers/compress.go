package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"vicom/internal/logging"
	"vicom/internal/mediatypes"
	"vicom/internal/pipeline"
)

// maxCompressFileBytes is the per-file ceiling for the single/custom path.
const maxCompressFileBytes = 5 << 30 // 5 GB

// maxFormMemory is how much multipart data is held in memory before the
// standard library spools parts to temp files.
const maxFormMemory = 64 << 20

// Compress handles POST /api/compress: one or more uploads encoded with the
// full option set (trim window, custom output name). Processing aborts on
// the first failing file.
func (h *Handlers) Compress(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeJSONError(w, "Invalid multipart form.", http.StatusBadRequest)
		return
	}
	defer cleanupForm(r)

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONError(w, "No files uploaded.", http.StatusBadRequest)
		return
	}

	opts := parseEncodeOptions(r)
	opts.MaxFileBytes = maxCompressFileBytes
	opts.FileCount = len(files)
	opts.CustomName = strings.TrimSpace(r.FormValue("customName"))
	opts.TrimStart = parseWholeSeconds(r.FormValue("trimStart"))
	opts.TrimEnd = parseWholeSeconds(r.FormValue("trimEnd"))

	if err := pipeline.ValidateFormat(opts.Format); err != nil {
		writeJSONError(w, userMessage(err), http.StatusBadRequest)
		return
	}

	results := make([]pipeline.Artifact, 0, len(files))
	for index, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeJSONError(w, "Error during compression. Please try again.", http.StatusInternalServerError)
			return
		}

		art, err := h.pipeline.Process(r.Context(), pipeline.Upload{
			Name: fh.Filename,
			Size: fh.Size,
			Data: f,
		}, index, opts)
		f.Close()

		if err != nil {
			logging.Warn("Compression failed for %s: %v", fh.Filename, err)
			writeJSONError(w, userMessage(err), statusFor(err))
			return
		}
		results = append(results, art)
	}

	message := "Video compressed successfully!"
	if len(files) > 1 {
		message = "Videos compressed successfully!"
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"message": message,
		"files":   results,
	})
}

// parseEncodeOptions reads the option fields shared by the compress and
// batch endpoints. Absent fields take the same defaults in both.
func parseEncodeOptions(r *http.Request) pipeline.Options {
	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = string(mediatypes.FormatMP4)
	}

	preset := strings.ToLower(r.FormValue("preset"))
	if preset == "" {
		preset = string(mediatypes.PresetCustom)
	}

	enhancement := strings.ToLower(r.FormValue("enhancement"))
	if enhancement == "" {
		enhancement = string(mediatypes.EnhanceNone)
	}

	size, _ := strconv.ParseFloat(r.FormValue("size"), 64)

	return pipeline.Options{
		Format:            mediatypes.OutputFormat(format),
		Preset:            mediatypes.Preset(preset),
		RequestedSizeMB:   size,
		PreserveMetadata:  r.FormValue("preserveMetadata") == "true",
		PreserveSubtitles: r.FormValue("preserveSubtitles") == "true",
		Enhancement:       mediatypes.Enhancement(enhancement),
	}
}

// parseWholeSeconds floors a decimal seconds field to a non-negative int;
// anything unparseable counts as unset.
func parseWholeSeconds(value string) int {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0
	}
	return int(math.Floor(f))
}

// statusFor maps pipeline sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrValidation), errors.Is(err, pipeline.ErrProbe):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// userMessage strips the internal sentinel prefix from a pipeline error so
// the client sees only the human-readable part.
func userMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{pipeline.ErrValidation, pipeline.ErrProbe, pipeline.ErrEncode} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("failed to clean up multipart temp files: %v", err)
		}
	}
}
