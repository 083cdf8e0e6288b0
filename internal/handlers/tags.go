package handlers

import (
	"net/http"

	"art-vault/internal/database"
)

// ListTags returns all tags with live asset counts.
func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.db.ListTags(r.Context())
	if err != nil {
		writeDBError(w, err, "list tags")
		return
	}
	if tags == nil {
		tags = []database.Tag{}
	}
	respondJSON(w, http.StatusOK, tags)
}

type renameTagRequest struct {
	Name string `json:"name"`
}

// RenameTag changes a tag's name.
func (h *Handlers) RenameTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req renameTagRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tag, err := h.db.RenameTag(r.Context(), id, req.Name)
	if err != nil {
		writeDBError(w, err, "rename tag")
		return
	}
	respondJSON(w, http.StatusOK, tag)
}

// DeleteTag removes a tag from every asset.
func (h *Handlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteTag(r.Context(), id); err != nil {
		writeDBError(w, err, "delete tag")
		return
	}
	writeJSONStatus(w, "deleted")
}
