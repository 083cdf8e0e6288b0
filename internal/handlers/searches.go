package handlers

import (
	"net/http"

	"art-vault/internal/database"
)

type savedSearchRequest struct {
	Name   string               `json:"name"`
	Filter database.AssetFilter `json:"filter"`
}

// ListSearches returns all saved searches.
func (h *Handlers) ListSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := h.db.ListSavedSearches(r.Context())
	if err != nil {
		writeDBError(w, err, "list saved searches")
		return
	}
	respondJSON(w, http.StatusOK, searches)
}

// CreateSearch stores a named filter.
func (h *Handlers) CreateSearch(w http.ResponseWriter, r *http.Request) {
	var req savedSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	search, err := h.db.CreateSavedSearch(r.Context(), req.Name, req.Filter)
	if err != nil {
		writeDBError(w, err, "save search")
		return
	}
	respondJSON(w, http.StatusCreated, search)
}

// GetSearch returns one saved search.
func (h *Handlers) GetSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	search, err := h.db.GetSavedSearch(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "load saved search")
		return
	}
	respondJSON(w, http.StatusOK, search)
}

// DeleteSearch removes a saved search.
func (h *Handlers) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteSavedSearch(r.Context(), id); err != nil {
		writeDBError(w, err, "delete saved search")
		return
	}
	writeJSONStatus(w, "deleted")
}

// RunSearch lists the assets matching a saved search. Paging comes from the
// request's page and pageSize parameters.
func (h *Handlers) RunSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	search, err := h.db.GetSavedSearch(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "load saved search")
		return
	}

	filter := search.Filter
	q := r.URL.Query()
	if filter.Page, err = optionalInt(q, "page"); err != nil {
		writeDBError(w, err, "run saved search")
		return
	}
	if filter.PageSize, err = optionalInt(q, "pageSize"); err != nil {
		writeDBError(w, err, "run saved search")
		return
	}

	page, err := h.db.ListAssets(r.Context(), filter)
	if err != nil {
		writeDBError(w, err, "run saved search")
		return
	}
	respondJSON(w, http.StatusOK, page)
}
