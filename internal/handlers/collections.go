package handlers

import (
	"net/http"

	"art-vault/internal/database"
)

// ListCollections returns all material sets.
func (h *Handlers) ListCollections(w http.ResponseWriter, r *http.Request) {
	sets, err := h.db.ListMaterialSets(r.Context())
	if err != nil {
		writeDBError(w, err, "list collections")
		return
	}
	if sets == nil {
		sets = []database.MaterialSet{}
	}
	respondJSON(w, http.StatusOK, sets)
}

// CreateCollection creates a material set.
func (h *Handlers) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var in database.MaterialSetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	set, err := h.db.CreateMaterialSet(r.Context(), in)
	if err != nil {
		writeDBError(w, err, "create collection")
		return
	}
	respondJSON(w, http.StatusCreated, set)
}

// GetCollection returns one material set.
func (h *Handlers) GetCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	set, err := h.db.GetMaterialSet(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "load collection")
		return
	}
	respondJSON(w, http.StatusOK, set)
}

// UpdateCollection replaces a material set's name, description, cover and
// colour.
func (h *Handlers) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in database.MaterialSetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	set, err := h.db.UpdateMaterialSet(r.Context(), id, in)
	if err != nil {
		writeDBError(w, err, "update collection")
		return
	}
	respondJSON(w, http.StatusOK, set)
}

// DeleteCollection removes a material set. Its assets are untouched.
func (h *Handlers) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteMaterialSet(r.Context(), id); err != nil {
		writeDBError(w, err, "delete collection")
		return
	}
	writeJSONStatus(w, "deleted")
}

// AddCollectionAssets adds assets to a material set.
func (h *Handlers) AddCollectionAssets(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, true)
}

// RemoveCollectionAssets removes assets from a material set.
func (h *Handlers) RemoveCollectionAssets(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, false)
}

func (h *Handlers) changeMembership(w http.ResponseWriter, r *http.Request, add bool) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var err error
	if add {
		err = h.db.AddAssetsToSet(r.Context(), id, req.AssetIDs)
	} else {
		err = h.db.RemoveAssetsFromSet(r.Context(), id, req.AssetIDs)
	}
	if err != nil {
		writeDBError(w, err, "update collection assets")
		return
	}

	set, err := h.db.GetMaterialSet(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "load collection")
		return
	}
	respondJSON(w, http.StatusOK, set)
}
