package handlers

import (
	"github.com/gorilla/mux"
)

// NewRouter registers every route on a new router.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Scanning
	api.HandleFunc("/scan/start", h.StartScan).Methods("POST")
	api.HandleFunc("/scan/status", h.ScanStatus).Methods("GET")
	api.HandleFunc("/scan/events", h.ScanEvents).Methods("GET")

	// Scan folders and settings
	api.HandleFunc("/folders", h.ListFolders).Methods("GET")
	api.HandleFunc("/folders", h.CreateFolder).Methods("POST")
	api.HandleFunc("/folders/{id:[0-9]+}", h.UpdateFolder).Methods("PATCH")
	api.HandleFunc("/folders/{id:[0-9]+}", h.DeleteFolder).Methods("DELETE")
	api.HandleFunc("/settings/extensions", h.GetExtensions).Methods("GET")
	api.HandleFunc("/settings/extensions", h.SetExtensions).Methods("PUT")

	// Assets
	api.HandleFunc("/assets", h.ListAssets).Methods("GET")
	api.HandleFunc("/assets/facets", h.GetFacets).Methods("GET")
	api.HandleFunc("/assets/bulk/tags", h.BulkTags).Methods("POST")
	api.HandleFunc("/assets/bulk/delete", h.BulkDelete).Methods("POST")
	api.HandleFunc("/assets/bulk/restore", h.BulkRestore).Methods("POST")
	api.HandleFunc("/assets/{id:[0-9]+}", h.GetAsset).Methods("GET")
	api.HandleFunc("/assets/{id:[0-9]+}", h.UpdateAsset).Methods("PATCH")
	api.HandleFunc("/assets/{id:[0-9]+}", h.DeleteAsset).Methods("DELETE")
	api.HandleFunc("/assets/{id:[0-9]+}/tags", h.SetAssetTags).Methods("PUT")
	api.HandleFunc("/assets/{id:[0-9]+}/restore", h.RestoreAsset).Methods("POST")
	api.HandleFunc("/assets/{id:[0-9]+}/permanent", h.PurgeAsset).Methods("DELETE")
	api.HandleFunc("/assets/{id:[0-9]+}/parent", h.SetParent).Methods("PUT")
	api.HandleFunc("/assets/{id:[0-9]+}/parent", h.ClearParent).Methods("DELETE")
	api.HandleFunc("/assets/{id:[0-9]+}/children", h.ListChildren).Methods("GET")

	// Tags
	api.HandleFunc("/tags", h.ListTags).Methods("GET")
	api.HandleFunc("/tags/{id:[0-9]+}", h.RenameTag).Methods("PUT")
	api.HandleFunc("/tags/{id:[0-9]+}", h.DeleteTag).Methods("DELETE")

	// Collections
	api.HandleFunc("/collections", h.ListCollections).Methods("GET")
	api.HandleFunc("/collections", h.CreateCollection).Methods("POST")
	api.HandleFunc("/collections/{id:[0-9]+}", h.GetCollection).Methods("GET")
	api.HandleFunc("/collections/{id:[0-9]+}", h.UpdateCollection).Methods("PUT")
	api.HandleFunc("/collections/{id:[0-9]+}", h.DeleteCollection).Methods("DELETE")
	api.HandleFunc("/collections/{id:[0-9]+}/assets", h.AddCollectionAssets).Methods("POST")
	api.HandleFunc("/collections/{id:[0-9]+}/assets", h.RemoveCollectionAssets).Methods("DELETE")

	// Saved searches
	api.HandleFunc("/searches", h.ListSearches).Methods("GET")
	api.HandleFunc("/searches", h.CreateSearch).Methods("POST")
	api.HandleFunc("/searches/{id:[0-9]+}", h.GetSearch).Methods("GET")
	api.HandleFunc("/searches/{id:[0-9]+}", h.DeleteSearch).Methods("DELETE")
	api.HandleFunc("/searches/{id:[0-9]+}/assets", h.RunSearch).Methods("GET")

	// Thumbnails
	api.HandleFunc("/thumbnails/placeholder", h.GetPlaceholder).Methods("GET", "HEAD")
	api.HandleFunc("/thumbnails/{name}", h.GetThumbnail).Methods("GET", "HEAD")

	return r
}
