package handlers

import (
	"io"
	"net/http"

	"vicom/internal/logging"
)

// maxImageBytes caps remove-bg uploads; still images are small compared to
// video uploads.
const maxImageBytes = 50 << 20 // 50 MB

// RemoveBackground handles POST /api/remove-bg: one image part in, PNG
// bytes out, processed by whichever helper candidate responds.
func (h *Handlers) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeJSONError(w, "Invalid multipart form.", http.StatusBadRequest)
		return
	}
	defer cleanupForm(r)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Provide an image (field: file).", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeJSONError(w, "Image too large.", http.StatusBadRequest)
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeJSONError(w, "Could not read upload.", http.StatusBadRequest)
		return
	}

	out, report, err := h.removebg.Process(r.Context(), image)
	if err != nil {
		logging.Error("Background removal failed for %s: %d candidates exhausted", header.Filename, len(report.Attempts))
		writeJSONError(w, "Background removal failed.", http.StatusBadGateway)
		return
	}

	logging.Debug("Background removed for %s via %s (%d bytes)", header.Filename, report.Winner, len(out))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(out); err != nil {
		logging.Error("failed to write remove-bg response: %v", err)
	}
}

// RemoveBackgroundHealth handles GET /api/remove-bg/health by pushing a
// tiny probe image through the helper.
func (h *Handlers) RemoveBackgroundHealth(w http.ResponseWriter, r *http.Request) {
	health := h.removebg.CheckHealth(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if !health.OK {
		w.WriteHeader(http.StatusInternalServerError)
	}
	writeJSON(w, health)
}
