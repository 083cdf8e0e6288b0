// Package assettypes holds the dependency-free classification tables shared
// by the scanner, database and HTTP layers.
//
// Extensions map to one of four [FileType] values:
//
//	assettypes.GetFileType(".png")  // image
//	assettypes.GetFileType(".fbx")  // model
//	assettypes.GetFileType(".exr")  // texture
//	assettypes.GetFileType(".zip")  // other
//
// Use [NormalizeExtension] before comparing user supplied extensions; all
// comparisons in art-vault are case-insensitive on the dotted form.
package assettypes
