package database

import (
	"time"

	"art-vault/internal/assettypes"
)

// ScanFolder is a root directory registered for periodic indexing.
type ScanFolder struct {
	ID         int64      `json:"id"`
	Path       string     `json:"path"`
	IsActive   bool       `json:"isActive"`
	IsDeleted  bool       `json:"isDeleted"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	AssetCount int        `json:"assetCount"`
}

// Asset is one indexed file plus its extracted and user metadata.
type Asset struct {
	ID            int64               `json:"id"`
	FolderID      *int64              `json:"folderId,omitempty"`
	ParentID      *int64              `json:"parentId,omitempty"`
	FileName      string              `json:"fileName"`
	FilePath      string              `json:"filePath"`
	FileType      assettypes.FileType `json:"fileType"`
	Size          int64               `json:"size"`
	FileHash      *string             `json:"fileHash,omitempty"`
	ThumbnailPath string              `json:"thumbnailPath"`
	Rating        int                 `json:"rating"`
	IsFavorite    bool                `json:"isFavorite"`
	ImageWidth    *int                `json:"imageWidth,omitempty"`
	ImageHeight   *int                `json:"imageHeight,omitempty"`
	BitDepth      *int                `json:"bitDepth,omitempty"`
	HasAlpha      *bool               `json:"hasAlpha,omitempty"`
	DominantColor *string             `json:"dominantColor,omitempty"`
	Description   string              `json:"description"`
	AddedAt       time.Time           `json:"addedAt"`
	LastScannedAt time.Time           `json:"lastScannedAt"`
	ModifiedAt    time.Time           `json:"modifiedAt"`
	IsDeleted     bool                `json:"isDeleted"`
	DeletedAt     *time.Time          `json:"deletedAt,omitempty"`
	ChildCount    int                 `json:"childCount"`
	Tags          []string            `json:"tags"`
}

// NewAsset carries everything the scan pipeline knows about a newly
// discovered file. Optional metadata is nil when it could not be extracted.
type NewAsset struct {
	FolderID      int64
	FilePath      string
	FileName      string
	FileType      assettypes.FileType
	Size          int64
	ModifiedAt    time.Time
	ThumbnailPath string
	FileHash      *string
	ImageWidth    *int
	ImageHeight   *int
	BitDepth      *int
	HasAlpha      *bool
	DominantColor *string
}

// AssetPatch holds user-editable asset fields. Nil fields are left unchanged.
type AssetPatch struct {
	Rating      *int    `json:"rating,omitempty"`
	IsFavorite  *bool   `json:"isFavorite,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Tag is a named label shared across assets.
type Tag struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	AssetCount int       `json:"assetCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MaterialSet is a user-curated collection of assets.
type MaterialSet struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CoverAssetID *int64    `json:"coverAssetId,omitempty"`
	CustomColor  *string   `json:"customColor,omitempty"`
	AssetCount   int       `json:"assetCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MaterialSetInput is used to create or replace a material set.
type MaterialSetInput struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	CoverAssetID *int64  `json:"coverAssetId,omitempty"`
	CustomColor  *string `json:"customColor,omitempty"`
}

// SavedSearch is a named, persisted asset filter.
type SavedSearch struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Filter    AssetFilter `json:"filter"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AssetFilter selects, orders and pages assets. The zero value lists every
// live asset, newest first.
type AssetFilter struct {
	Query     string                `json:"q,omitempty"`
	FileTypes []assettypes.FileType `json:"types,omitempty"`
	Tags      []string              `json:"tags,omitempty"`
	FolderID  *int64                `json:"folderId,omitempty"`
	SetID     *int64                `json:"setId,omitempty"`
	Favorite  *bool                 `json:"favorite,omitempty"`
	MinRating *int                  `json:"minRating,omitempty"`
	Colors    []string              `json:"colors,omitempty"`
	Deleted   bool                  `json:"deleted,omitempty"`
	RootsOnly bool                  `json:"rootsOnly,omitempty"`
	SortBy    assettypes.SortField  `json:"sortBy,omitempty"`
	SortOrder assettypes.SortOrder  `json:"sortOrder,omitempty"`
	Page      int                   `json:"page,omitempty"`
	PageSize  int                   `json:"pageSize,omitempty"`
}

// AssetPage is one page of a filtered asset listing.
type AssetPage struct {
	Items      []Asset `json:"items"`
	TotalItems int     `json:"totalItems"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// Facets summarizes live assets for filter UIs.
type Facets struct {
	Types     map[string]int `json:"types"`
	Colors    map[string]int `json:"colors"`
	Ratings   map[int]int    `json:"ratings"`
	Favorites int            `json:"favorites"`
	Total     int            `json:"total"`
}
