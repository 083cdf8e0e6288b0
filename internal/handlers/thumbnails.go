package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"art-vault/internal/assettypes"
	"art-vault/internal/filesystem"
	"art-vault/internal/logging"

	"github.com/gorilla/mux"
)

// GetThumbnail serves a generated thumbnail by file name. Names are uuids, so
// responses can be cached indefinitely.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeJSONError(w, "Invalid thumbnail name", http.StatusBadRequest)
		return
	}
	h.serveImage(w, r, filepath.Join(h.thumbDir, name), "public, max-age=31536000, immutable")
}

// GetPlaceholder serves the placeholder thumbnail used for assets without a
// generated one.
func (h *Handlers) GetPlaceholder(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, h.placeholder, "public, max-age=3600")
}

func (h *Handlers) serveImage(w http.ResponseWriter, r *http.Request, path, cacheControl string) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		writeJSONError(w, "Thumbnail not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSONError(w, "Thumbnail not found", http.StatusNotFound)
		return
	}

	logging.Debug("Serving thumbnail %s", path)
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Content-Type", assettypes.GetMimeType(filepath.Ext(path)))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
