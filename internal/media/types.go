package media

import "art-vault/internal/assettypes"

// Metadata is everything extraction learned about one file. Optional fields
// are nil when they could not be computed. ThumbnailPath is never empty; it
// falls back to the configured placeholder.
type Metadata struct {
	FileType      assettypes.FileType
	ThumbnailPath string
	FileHash      *string
	Width         *int
	Height        *int
	BitDepth      *int
	HasAlpha      *bool
	DominantColor *string
}

// ExtractorConfig controls thumbnail output and hashing.
type ExtractorConfig struct {
	// ThumbnailDir receives generated thumbnails. When empty every asset uses
	// the placeholder.
	ThumbnailDir string
	// PlaceholderPath is recorded whenever no thumbnail could be generated.
	PlaceholderPath string
	// ThumbnailWidth is the fixed output width; height keeps the aspect ratio.
	ThumbnailWidth int
	// HashEnabled turns on SHA-256 content hashing.
	HashEnabled bool
	// HashMaxBytes skips hashing for files of this size or larger.
	HashMaxBytes int64
	// MaxDecodePixels bounds full image decodes. Larger images keep their
	// header dimensions and the placeholder thumbnail. Zero means
	// DefaultMaxDecodePixels.
	MaxDecodePixels int
	// UseVips prefers libvips for thumbnails when it has been initialized.
	UseVips bool
}

const (
	// DefaultThumbnailWidth is used when ExtractorConfig.ThumbnailWidth is unset.
	DefaultThumbnailWidth = 400
	// DefaultMaxDecodePixels is used when ExtractorConfig.MaxDecodePixels is unset.
	DefaultMaxDecodePixels = 16384 * 16384
)
