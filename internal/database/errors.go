package database

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would violate a uniqueness rule,
	// such as a duplicate tag, collection or folder path.
	ErrConflict = errors.New("conflict")

	// ErrInvalid is returned for input that fails validation.
	ErrInvalid = errors.New("invalid input")

	// ErrAssetExists is returned by InsertAsset when a live asset already
	// owns the path. The scanner treats it as "already indexed".
	ErrAssetExists = errors.New("asset already exists")

	// ErrBlockedExtension is returned when an extension on the deny-list is
	// written to the allow-list.
	ErrBlockedExtension = errors.New("extension is blocked")
)
