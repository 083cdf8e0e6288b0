package handlers

import (
	"net/http"
)

type extensionsPayload struct {
	Extensions []string `json:"extensions"`
}

// GetExtensions returns the extension allow-list.
func (h *Handlers) GetExtensions(w http.ResponseWriter, r *http.Request) {
	exts, err := h.db.GetAllowedExtensions(r.Context())
	if err != nil {
		writeDBError(w, err, "load allowed extensions")
		return
	}
	respondJSON(w, http.StatusOK, extensionsPayload{Extensions: exts})
}

// SetExtensions replaces the extension allow-list. Lists containing a blocked
// extension are rejected without changing anything.
func (h *Handlers) SetExtensions(w http.ResponseWriter, r *http.Request) {
	var req extensionsPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Extensions == nil {
		writeJSONError(w, "extensions is required", http.StatusBadRequest)
		return
	}

	exts, err := h.db.SetAllowedExtensions(r.Context(), req.Extensions)
	if err != nil {
		writeDBError(w, err, "save allowed extensions")
		return
	}
	respondJSON(w, http.StatusOK, extensionsPayload{Extensions: exts})
}
