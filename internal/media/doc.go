// Package media extracts metadata from art assets.
//
// For decodable images it records dimensions, bit depth, alpha presence and
// a dominant colour snapped to a small fixed palette, and writes a
// fixed-width thumbnail (WebP through libvips when available, JPEG
// otherwise). Other file types get the placeholder thumbnail. Content hashing
// is optional and bounded by a file size cap.
package media
