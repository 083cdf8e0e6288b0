package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"art-vault/internal/assettypes"
	"art-vault/internal/database"
	"art-vault/internal/media"
)

// multiValue returns every value of a repeatable query parameter, also
// splitting comma separated lists.
func multiValue(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func optionalInt64(q url.Values, key string) (*int64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", database.ErrInvalid, key)
	}
	return &n, nil
}

func optionalBool(q url.Values, key string) (*bool, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", database.ErrInvalid, key)
	}
	return &b, nil
}

func optionalInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", database.ErrInvalid, key)
	}
	return n, nil
}

// paletteColor snaps a #RRGGBB query value to the dominant colour palette,
// so any shade filters by the bucket it would have been indexed under.
func paletteColor(v string) (string, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(v), "#")
	n, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 6 || err != nil {
		return "", fmt.Errorf("%w: color must be #RRGGBB, got %q", database.ErrInvalid, v)
	}
	return media.NearestPaletteColor(uint8(n>>16), uint8(n>>8), uint8(n)), nil
}

// parseAssetFilter builds a filter from query parameters. Value validation
// beyond parsing is left to the database layer.
func parseAssetFilter(q url.Values) (database.AssetFilter, error) {
	f := database.AssetFilter{
		Query:     strings.TrimSpace(q.Get("q")),
		Tags:      multiValue(q, "tag"),
		SortBy:    assettypes.SortField(q.Get("sort")),
		SortOrder: assettypes.SortOrder(q.Get("order")),
	}
	for _, t := range multiValue(q, "type") {
		f.FileTypes = append(f.FileTypes, assettypes.FileType(strings.ToLower(t)))
	}

	for _, c := range multiValue(q, "color") {
		snapped, err := paletteColor(c)
		if err != nil {
			return f, err
		}
		f.Colors = append(f.Colors, snapped)
	}

	var err error
	if f.FolderID, err = optionalInt64(q, "folderId"); err != nil {
		return f, err
	}
	if f.SetID, err = optionalInt64(q, "setId"); err != nil {
		return f, err
	}
	if f.Favorite, err = optionalBool(q, "favorite"); err != nil {
		return f, err
	}
	if v := q.Get("minRating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("%w: minRating must be an integer", database.ErrInvalid)
		}
		f.MinRating = &n
	}

	deleted, err := optionalBool(q, "deleted")
	if err != nil {
		return f, err
	}
	f.Deleted = deleted != nil && *deleted

	rootsOnly, err := optionalBool(q, "rootsOnly")
	if err != nil {
		return f, err
	}
	f.RootsOnly = rootsOnly != nil && *rootsOnly

	if f.Page, err = optionalInt(q, "page"); err != nil {
		return f, err
	}
	if f.PageSize, err = optionalInt(q, "pageSize"); err != nil {
		return f, err
	}
	return f, nil
}

// ListAssets returns a filtered, sorted page of assets.
func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAssetFilter(r.URL.Query())
	if err != nil {
		writeDBError(w, err, "list assets")
		return
	}

	page, err := h.db.ListAssets(r.Context(), filter)
	if err != nil {
		writeDBError(w, err, "list assets")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// facetsResponse adds the full colour palette so clients can offer buckets
// that have no assets yet.
type facetsResponse struct {
	*database.Facets
	Palette []string `json:"palette"`
}

// GetFacets returns counts used to build filter menus.
func (h *Handlers) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.db.GetFacets(r.Context())
	if err != nil {
		writeDBError(w, err, "load facets")
		return
	}
	respondJSON(w, http.StatusOK, facetsResponse{Facets: facets, Palette: media.PaletteHex()})
}

// GetAsset returns one asset, including soft-deleted ones.
func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	asset, err := h.db.GetAsset(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "load asset")
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// UpdateAsset edits rating, favorite flag and description.
func (h *Handlers) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch database.AssetPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	asset, err := h.db.UpdateAsset(r.Context(), id, patch)
	if err != nil {
		writeDBError(w, err, "update asset")
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

type tagsPayload struct {
	Tags []string `json:"tags"`
}

// SetAssetTags replaces an asset's tags.
func (h *Handlers) SetAssetTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req tagsPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	tags, err := h.db.SetAssetTags(r.Context(), id, req.Tags)
	if err != nil {
		writeDBError(w, err, "set tags")
		return
	}
	respondJSON(w, http.StatusOK, tagsPayload{Tags: tags})
}

// DeleteAsset soft-deletes an asset.
func (h *Handlers) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.SoftDeleteAsset(r.Context(), id); err != nil {
		writeDBError(w, err, "delete asset")
		return
	}
	writeJSONStatus(w, "deleted")
}

// RestoreAsset brings a soft-deleted asset back.
func (h *Handlers) RestoreAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.RestoreAsset(r.Context(), id); err != nil {
		writeDBError(w, err, "restore asset")
		return
	}
	asset, err := h.db.GetAsset(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "load asset")
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// PurgeAsset permanently removes an asset and its generated thumbnail. The
// file on disk is left alone, so the next scan will index it again unless
// its folder is removed.
func (h *Handlers) PurgeAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	asset, err := h.db.PurgeAsset(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "purge asset")
		return
	}
	h.extractor.DiscardThumbnail(asset.ThumbnailPath)
	writeJSONStatus(w, "purged")
}

type parentRequest struct {
	ParentID *int64 `json:"parentId"`
}

// SetParent groups an asset under another as a version.
func (h *Handlers) SetParent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req parentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ParentID == nil {
		writeJSONError(w, "parentId is required", http.StatusBadRequest)
		return
	}

	asset, err := h.db.SetParent(r.Context(), id, *req.ParentID)
	if err != nil {
		writeDBError(w, err, "set parent")
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// ClearParent detaches an asset from its parent.
func (h *Handlers) ClearParent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	asset, err := h.db.ClearParent(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "clear parent")
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// ListChildren returns the versions grouped under an asset.
func (h *Handlers) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	children, err := h.db.ListChildren(r.Context(), id)
	if err != nil {
		writeDBError(w, err, "list children")
		return
	}
	if children == nil {
		children = []database.Asset{}
	}
	respondJSON(w, http.StatusOK, children)
}
