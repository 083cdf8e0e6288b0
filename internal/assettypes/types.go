package assettypes

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileType classifies an asset by extension.
type FileType string

const (
	// FileTypeImage represents a raster image that can be decoded for metadata.
	FileTypeImage FileType = "image"
	// FileTypeModel represents a 3D model or scene file.
	FileTypeModel FileType = "model"
	// FileTypeTexture represents a texture or HDR format that is not decoded.
	FileTypeTexture FileType = "texture"
	// FileTypeOther represents any extension without a mapping.
	FileTypeOther FileType = "other"
)

// Valid reports whether t is one of the known classifications.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeImage, FileTypeModel, FileTypeTexture, FileTypeOther:
		return true
	}
	return false
}

// SortField specifies which asset field to sort by.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByName sorts by file name.
	SortByName SortField = "name"
	// SortByAdded sorts by the time the asset was first indexed.
	SortByAdded SortField = "added"
	// SortByModified sorts by on-disk modification time.
	SortByModified SortField = "modified"
	// SortBySize sorts by file size.
	SortBySize SortField = "size"
	// SortByRating sorts by user rating.
	SortByRating SortField = "rating"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// ImageExtensions are formats the scanner decodes for dimensions, colour and
// thumbnails.
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// TextureExtensions are GPU and HDR texture formats.
var TextureExtensions = map[string]bool{
	".tga":  true,
	".dds":  true,
	".exr":  true,
	".hdr":  true,
	".ktx":  true,
	".ktx2": true,
	".psd":  true,
}

// ModelExtensions are 3D model and scene formats.
var ModelExtensions = map[string]bool{
	".fbx":   true,
	".obj":   true,
	".blend": true,
	".gltf":  true,
	".glb":   true,
	".stl":   true,
	".3ds":   true,
	".dae":   true,
	".usd":   true,
	".usdz":  true,
	".ply":   true,
	".abc":   true,
	".max":   true,
	".ma":    true,
	".mb":    true,
}

// MimeTypes maps thumbnail and image extensions to their MIME types.
var MimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// DefaultBlockedExtensions lists executable-style extensions that can never be
// added to the scanner allow-list.
var DefaultBlockedExtensions = []string{
	".exe", ".bat", ".cmd", ".sh", ".ps1", ".msi",
	".dll", ".com", ".scr", ".vbs", ".js", ".jar",
}

// NormalizeExtension lowercases ext and ensures a single leading dot.
// Empty input returns "".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

// ExtensionOf returns the normalized extension of a file path.
func ExtensionOf(path string) string {
	return NormalizeExtension(filepath.Ext(path))
}

// GetFileType classifies a normalized extension. Unmapped extensions are
// FileTypeOther.
func GetFileType(ext string) FileType {
	ext = NormalizeExtension(ext)
	switch {
	case ImageExtensions[ext]:
		return FileTypeImage
	case TextureExtensions[ext]:
		return FileTypeTexture
	case ModelExtensions[ext]:
		return FileTypeModel
	default:
		return FileTypeOther
	}
}

// GetMimeType returns the MIME type for an extension, or
// application/octet-stream when unknown.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[NormalizeExtension(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// DefaultAllowedExtensions returns the built-in scanner allow-list: every
// image, texture and model extension, sorted.
func DefaultAllowedExtensions() []string {
	out := make([]string, 0, len(ImageExtensions)+len(TextureExtensions)+len(ModelExtensions))
	for _, m := range []map[string]bool{ImageExtensions, TextureExtensions, ModelExtensions} {
		for ext := range m {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
