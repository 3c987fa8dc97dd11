package handlers

import (
	"net/http"

	"vicom/internal/logging"
)

// ListVideos handles GET /api/videos: every finished artifact currently in
// the output directory, derived from a directory scan at request time.
func (h *Handlers) ListVideos(w http.ResponseWriter, _ *http.Request) {
	artifacts, err := h.delivery.List()
	if err != nil {
		logging.Error("Failed to list artifacts: %v", err)
		writeJSONError(w, "Failed to list videos", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, artifacts)
}
