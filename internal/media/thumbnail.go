package media

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"art-vault/internal/logging"
	"art-vault/internal/metrics"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ThumbnailGenerator writes fixed-width thumbnails under a directory, each
// with a freshly generated unique name.
type ThumbnailGenerator struct {
	dir     string
	width   int
	useVips bool
}

// NewThumbnailGenerator creates dir if needed. A width of zero selects
// DefaultThumbnailWidth.
func NewThumbnailGenerator(dir string, width int, useVips bool) *ThumbnailGenerator {
	if width <= 0 {
		width = DefaultThumbnailWidth
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Warn("ThumbnailGenerator: failed to create thumbnail dir: %v", err)
		}
	}
	logging.Debug("ThumbnailGenerator: dir %s, width %d, vips %v", dir, width, useVips)
	return &ThumbnailGenerator{
		dir:     dir,
		width:   width,
		useVips: useVips,
	}
}

// Dir returns the output directory.
func (t *ThumbnailGenerator) Dir() string {
	return t.dir
}

// heightFor keeps the aspect ratio of a srcW x srcH image at the target width.
func (t *ThumbnailGenerator) heightFor(srcW, srcH int) int {
	if srcW <= 0 {
		return t.width
	}
	h := srcH * t.width / srcW
	if h < 1 {
		h = 1
	}
	return h
}

// Generate writes a thumbnail for the image at srcPath, already decoded as
// img, and returns the output path. libvips is tried first when enabled;
// any failure there falls back to the pure Go encoder.
func (t *ThumbnailGenerator) Generate(srcPath string, img image.Image) (string, error) {
	if t.dir == "" {
		return "", fmt.Errorf("no thumbnail directory configured")
	}

	b := img.Bounds()
	height := t.heightFor(b.Dx(), b.Dy())

	if t.useVips && IsVipsAvailable() {
		out, err := t.generateVips(srcPath, height)
		if err == nil {
			return out, nil
		}
		logging.Debug("Vips thumbnail failed for %s: %v, falling back to imaging", srcPath, err)
	}

	return t.generateImaging(img, height)
}

func (t *ThumbnailGenerator) generateVips(srcPath string, height int) (string, error) {
	start := time.Now()
	data, err := thumbnailWithVips(srcPath, t.width, height)
	if err == nil {
		out := filepath.Join(t.dir, uuid.NewString()+".webp")
		err = os.WriteFile(out, data, 0o644)
		if err == nil {
			recordThumbnail("vips", start, nil)
			return out, nil
		}
	}
	recordThumbnail("vips", start, err)
	return "", err
}

func (t *ThumbnailGenerator) generateImaging(img image.Image, height int) (string, error) {
	start := time.Now()
	thumb := imaging.Resize(img, t.width, height, imaging.Lanczos)

	out := filepath.Join(t.dir, uuid.NewString()+".jpg")
	err := imaging.Save(thumb, out, imaging.JPEGQuality(80))
	recordThumbnail("imaging", start, err)
	if err != nil {
		_ = os.Remove(out)
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	logging.Debug("Thumbnail written: %s", out)
	return out, nil
}

func recordThumbnail(backend string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues(backend, status).Inc()
	metrics.ThumbnailGenerationDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
