package handlers

import (
	"fmt"
	"net/http"

	"vicom/internal/logging"
	"vicom/internal/pipeline"
)

// maxBatchFileBytes is the per-file ceiling for the batch path.
const maxBatchFileBytes = 500 << 20 // 500 MB

// batchFailure reports one file that could not be processed.
type batchFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Batch handles POST /api/batch: many uploads with the shared option set
// and no per-file trim or naming overrides. Unlike Compress, a failing file
// does not abort the run; each file succeeds or fails independently and the
// response reports both sides.
func (h *Handlers) Batch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeJSONError(w, "Invalid multipart form.", http.StatusBadRequest)
		return
	}
	defer cleanupForm(r)

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	opts := parseEncodeOptions(r)
	opts.MaxFileBytes = maxBatchFileBytes
	opts.FileCount = len(files)

	if err := pipeline.ValidateFormat(opts.Format); err != nil {
		writeJSONError(w, userMessage(err), http.StatusBadRequest)
		return
	}

	processed := make([]pipeline.Artifact, 0, len(files))
	failed := make([]batchFailure, 0)

	for index, fh := range files {
		f, err := fh.Open()
		if err != nil {
			failed = append(failed, batchFailure{Name: fh.Filename, Error: "could not read upload"})
			continue
		}

		art, err := h.pipeline.Process(r.Context(), pipeline.Upload{
			Name: fh.Filename,
			Size: fh.Size,
			Data: f,
		}, index, opts)
		f.Close()

		if err != nil {
			logging.Warn("Batch item failed for %s: %v", fh.Filename, err)
			failed = append(failed, batchFailure{Name: fh.Filename, Error: userMessage(err)})
			if r.Context().Err() != nil {
				// Client is gone; nothing left to report to
				return
			}
			continue
		}
		processed = append(processed, art)
	}

	status := http.StatusOK
	if len(processed) == 0 {
		status = http.StatusInternalServerError
	}

	message := "Batch processing completed successfully!"
	if len(failed) > 0 {
		message = fmt.Sprintf("Batch processing completed: %d succeeded, %d failed", len(processed), len(failed))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, map[string]interface{}{
		"message": message,
		"files":   processed,
		"failed":  failed,
	})
}
