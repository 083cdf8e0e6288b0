package handlers

import (
	"net/http"
)

type bulkTagsRequest struct {
	AssetIDs []int64  `json:"assetIds"`
	Add      []string `json:"add"`
	Remove   []string `json:"remove"`
}

type bulkResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// BulkTags adds and removes tags across many assets. Either every asset is
// updated or none is.
func (h *Handlers) BulkTags(w http.ResponseWriter, r *http.Request) {
	var req bulkTagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.db.BulkUpdateTags(r.Context(), req.AssetIDs, req.Add, req.Remove); err != nil {
		writeDBError(w, err, "update tags")
		return
	}
	respondJSON(w, http.StatusOK, bulkResponse{Status: "ok", Count: len(req.AssetIDs)})
}

// BulkDelete soft-deletes many assets in one transaction.
func (h *Handlers) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.db.SoftDeleteAssets(r.Context(), req.AssetIDs); err != nil {
		writeDBError(w, err, "delete assets")
		return
	}
	respondJSON(w, http.StatusOK, bulkResponse{Status: "deleted", Count: len(req.AssetIDs)})
}

// BulkRestore restores many soft-deleted assets in one transaction.
func (h *Handlers) BulkRestore(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.db.RestoreAssets(r.Context(), req.AssetIDs); err != nil {
		writeDBError(w, err, "restore assets")
		return
	}
	respondJSON(w, http.StatusOK, bulkResponse{Status: "restored", Count: len(req.AssetIDs)})
}
