package handlers

import (
	"errors"
	"net/http"

	"vicom/internal/delivery"
	"vicom/internal/logging"

	"github.com/gorilla/mux"
)

// Download handles GET and HEAD /api/download/{filename}. A
// ?download=true query switches the response to an attachment; otherwise a
// Range header selects a partial response and its absence a full inline one.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]

	target, err := h.delivery.Resolve(name)
	if err != nil {
		writeJSONError(w, "File not found", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodHead {
		h.delivery.ServeHead(w, target)
		return
	}

	forceDownload := r.URL.Query().Get("download") == "true"
	if err := h.delivery.ServeGet(w, r, target, forceDownload); err != nil {
		if errors.Is(err, delivery.ErrEmptyArtifact) {
			logging.Error("Zero-byte artifact requested: %s", target.Name)
			writeJSONError(w, "File is empty or unreadable", http.StatusInternalServerError)
			return
		}
		// Headers are already on the wire; all we can do is log
		logging.Error("Delivery failed for %s: %v", target.Name, err)
	}
}
