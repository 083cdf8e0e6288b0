package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"art-vault/internal/database"
	"art-vault/internal/filesystem"
	"art-vault/internal/scanner"
)

type folderRequest struct {
	Path     string `json:"path"`
	IsActive *bool  `json:"isActive"`
}

// ListFolders returns registered scan folders. Soft-deleted folders are
// included with ?includeDeleted=true.
func (h *Handlers) ListFolders(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"

	folders, err := h.db.ListScanFolders(r.Context(), includeDeleted)
	if err != nil {
		writeDBError(w, err, "list folders")
		return
	}
	if folders == nil {
		folders = []database.ScanFolder{}
	}
	respondJSON(w, http.StatusOK, folders)
}

// CreateFolder registers an existing directory and requests a scan of it.
func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		writeJSONError(w, "Invalid path", http.StatusBadRequest)
		return
	}

	info, err := filesystem.StatWithRetry(abs, filesystem.DefaultRetryConfig())
	if err != nil {
		writeJSONError(w, "Folder does not exist or is not accessible", http.StatusBadRequest)
		return
	}
	if !info.IsDir() {
		writeJSONError(w, "Path is not a directory", http.StatusBadRequest)
		return
	}

	folder, err := h.db.CreateScanFolder(r.Context(), abs)
	if err != nil {
		writeDBError(w, err, "create folder")
		return
	}

	h.scanner.Trigger().TriggerScan(scanner.ModeManual)
	respondJSON(w, http.StatusCreated, folder)
}

// UpdateFolder toggles whether a folder is scanned.
func (h *Handlers) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		writeJSONError(w, "isActive is required", http.StatusBadRequest)
		return
	}

	folder, err := h.db.SetScanFolderActive(r.Context(), id, *req.IsActive)
	if err != nil {
		writeDBError(w, err, "update folder")
		return
	}
	respondJSON(w, http.StatusOK, folder)
}

// DeleteFolder removes a folder. Folders that still own assets are only
// soft-deleted.
func (h *Handlers) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	physical, err := h.db.DeleteScanFolder(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "delete folder")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted", "physical": physical})
}
