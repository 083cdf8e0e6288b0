package media

import (
	"fmt"
	"image"
	"image/color"

	"art-vault/internal/filesystem"
	"art-vault/internal/logging"
	"art-vault/internal/metrics"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageDimensions holds image width and height
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions reads the image header for its dimensions without
// decoding pixels.
func GetImageDimensions(path string) (*ImageDimensions, error) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}

	return &ImageDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// decodeImage fully decodes the image at path, keeping the decoder's native
// pixel type so bit depth and alpha can be inspected.
func decodeImage(path string) (image.Image, error) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		metrics.ImageDecodeTotal.WithLabelValues("unknown", "error").Inc()
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	img, format, err := image.Decode(file)
	if err != nil {
		metrics.ImageDecodeTotal.WithLabelValues("unknown", "error").Inc()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	metrics.ImageDecodeTotal.WithLabelValues(format, "success").Inc()
	logging.Debug("Decoded image format: %s for %s", format, path)
	return img, nil
}

// bitDepthOf returns bits per channel for the decoded pixel type.
func bitDepthOf(img image.Image) int {
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16, *image.Alpha16:
		return 16
	default:
		return 8
	}
}

// hasAlphaChannel reports whether the decoded image carries transparency.
// Formats with a dedicated alpha channel always report true; premultiplied
// and paletted images report true only when a non-opaque value is present.
func hasAlphaChannel(img image.Image) bool {
	switch m := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.Alpha, *image.Alpha16:
		return true
	case *image.RGBA:
		return !m.Opaque()
	case *image.RGBA64:
		return !m.Opaque()
	case *image.Paletted:
		return paletteHasAlpha(m.Palette)
	default:
		return false
	}
}

func paletteHasAlpha(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a < 0xffff {
			return true
		}
	}
	return false
}
