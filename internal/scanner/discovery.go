package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"art-vault/internal/assettypes"
	"art-vault/internal/filesystem"
	"art-vault/internal/logging"
)

// PathChecker reports whether a path is already recorded as a live asset.
type PathChecker interface {
	AssetExistsByPath(ctx context.Context, path string) (bool, error)
}

// Candidate is a file discovery found that is not yet in the library.
type Candidate struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// ExtensionSet is a case-insensitive allow-list of dotted extensions.
type ExtensionSet map[string]struct{}

// NewExtensionSet normalizes exts into a set.
func NewExtensionSet(exts []string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		if n := assettypes.NormalizeExtension(ext); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Allows reports whether path has an allowed extension.
func (s ExtensionSet) Allows(path string) bool {
	ext := assettypes.ExtensionOf(path)
	if ext == "" {
		return false
	}
	_, ok := s[ext]
	return ok
}

// Discover walks root recursively and returns the allowed files that are not
// yet recorded. Hidden entries are skipped. An unreadable root is an error;
// unreadable subdirectories are logged and skipped.
func Discover(ctx context.Context, root string, allowed ExtensionSet, known PathChecker) ([]Candidate, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	abs = filepath.Clean(abs)

	info, err := filesystem.StatWithRetry(abs, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("stat scan folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan folder %s is not a directory", abs)
	}

	d := &discovery{allowed: allowed, known: known, retry: filesystem.DefaultRetryConfig()}
	if err := d.walk(ctx, abs, true); err != nil {
		return nil, err
	}
	return d.found, nil
}

type discovery struct {
	allowed ExtensionSet
	known   PathChecker
	retry   filesystem.RetryConfig
	found   []Candidate
}

func (d *discovery) walk(ctx context.Context, dir string, root bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := filesystem.ReadDirWithRetry(dir, d.retry)
	if err != nil {
		if root {
			return fmt.Errorf("read scan folder: %w", err)
		}
		logging.Warn("Skipping unreadable directory %s: %v", dir, err)
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if entry.IsDir() {
			if err := d.walk(ctx, path, false); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() || !d.allowed.Allows(name) {
			continue
		}

		exists, err := d.known.AssetExistsByPath(ctx, path)
		if err != nil {
			return fmt.Errorf("check %s: %w", path, err)
		}
		if exists {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logging.Debug("Skipping %s: %v", path, err)
			continue
		}
		d.found = append(d.found, Candidate{Path: path, Size: info.Size(), ModTime: info.ModTime()})
	}
	return nil
}
