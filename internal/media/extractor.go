package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"art-vault/internal/assettypes"
	"art-vault/internal/logging"
)

// Extractor derives metadata and a thumbnail for a single file.
type Extractor struct {
	cfg    ExtractorConfig
	thumbs *ThumbnailGenerator
}

// NewExtractor builds an extractor from cfg.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.MaxDecodePixels <= 0 {
		cfg.MaxDecodePixels = DefaultMaxDecodePixels
	}
	e := &Extractor{cfg: cfg}
	if cfg.ThumbnailDir != "" {
		e.thumbs = NewThumbnailGenerator(cfg.ThumbnailDir, cfg.ThumbnailWidth, cfg.UseVips)
	}
	return e
}

// PlaceholderPath returns the thumbnail recorded when none was generated.
func (e *Extractor) PlaceholderPath() string {
	return e.cfg.PlaceholderPath
}

// Extract classifies the file at path and computes whatever metadata it can.
// Decode, thumbnail and hash failures degrade to missing fields and the
// placeholder thumbnail; the only error returned is ctx's when it is done.
func (e *Extractor) Extract(ctx context.Context, path string, size int64) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta := &Metadata{
		FileType:      assettypes.GetFileType(assettypes.ExtensionOf(path)),
		ThumbnailPath: e.cfg.PlaceholderPath,
	}

	if meta.FileType == assettypes.FileTypeImage {
		e.extractImage(path, meta)
	}

	if err := ctx.Err(); err != nil {
		e.DiscardThumbnail(meta.ThumbnailPath)
		return nil, err
	}

	if e.cfg.HashEnabled && (e.cfg.HashMaxBytes <= 0 || size < e.cfg.HashMaxBytes) {
		sum, err := HashFile(path)
		if err != nil {
			logging.Debug("Hashing %s failed: %v", path, err)
		} else {
			meta.FileHash = &sum
		}
	} else if e.cfg.HashEnabled {
		logging.Debug("Skipping hash for %s: %d bytes exceeds limit %d", path, size, e.cfg.HashMaxBytes)
	}

	return meta, nil
}

func (e *Extractor) extractImage(path string, meta *Metadata) {
	dims, err := GetImageDimensions(path)
	if err != nil {
		logging.Info("Could not read image header %s, recording without metadata: %v", path, err)
		return
	}
	if dims.Width*dims.Height > e.cfg.MaxDecodePixels {
		logging.Info("Image %s is %dx%d, over the decode limit; recording dimensions only", path, dims.Width, dims.Height)
		meta.Width = &dims.Width
		meta.Height = &dims.Height
		return
	}

	img, err := decodeImage(path)
	if err != nil {
		logging.Info("Could not decode image %s, recording without metadata: %v", path, err)
		return
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	depth := bitDepthOf(img)
	alpha := hasAlphaChannel(img)
	color := DominantColor(img)

	meta.Width = &width
	meta.Height = &height
	meta.BitDepth = &depth
	meta.HasAlpha = &alpha
	meta.DominantColor = &color

	if e.thumbs == nil {
		return
	}
	thumb, err := e.thumbs.Generate(path, img)
	if err != nil {
		logging.Debug("Thumbnail generation failed for %s: %v", path, err)
		return
	}
	meta.ThumbnailPath = thumb
}

// IsGenerated reports whether thumbPath is a thumbnail this extractor wrote,
// as opposed to the placeholder or a foreign path.
func (e *Extractor) IsGenerated(thumbPath string) bool {
	if thumbPath == "" || e.thumbs == nil || thumbPath == e.cfg.PlaceholderPath {
		return false
	}
	dir := filepath.Clean(e.thumbs.Dir()) + string(filepath.Separator)
	return strings.HasPrefix(filepath.Clean(thumbPath), dir)
}

// DiscardThumbnail removes a generated thumbnail. The placeholder and paths
// outside the thumbnail directory are never touched.
func (e *Extractor) DiscardThumbnail(thumbPath string) {
	if !e.IsGenerated(thumbPath) {
		return
	}
	if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
		logging.Warn("Failed to remove thumbnail %s: %v", thumbPath, err)
	}
}
