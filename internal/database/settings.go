package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"art-vault/internal/assettypes"
	"art-vault/internal/logging"
)

const (
	settingAllowedExtensions = "allowed_extensions"
	settingLastScan          = "last_scan_completed"
)

// GetSetting retrieves a setting value by key. Returns ErrNotFound if the key
// doesn't exist.
func (d *Database) GetSetting(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value sql.NullString
	err := d.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: setting %s", ErrNotFound, key)
	}
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// SetSetting upserts a setting.
func (d *Database) SetSetting(ctx context.Context, key, value string) error {
	return d.withTx(ctx, "set_setting", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		return err
	})
}

// IsBlockedExtension reports whether ext is on the deny-list.
func (d *Database) IsBlockedExtension(ext string) bool {
	return d.blocked[assettypes.NormalizeExtension(ext)]
}

// NormalizeExtensions lowercases, dots and de-duplicates a list of
// extensions, preserving order. Entries that normalize to nothing are
// reported as ErrInvalid.
func NormalizeExtensions(exts []string) ([]string, error) {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, raw := range exts {
		ext := assettypes.NormalizeExtension(raw)
		if ext == "" || strings.ContainsAny(ext[1:], `./\ `) {
			return nil, fmt.Errorf("%w: %q is not a file extension", ErrInvalid, raw)
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out, nil
}

// GetAllowedExtensions returns the scanner allow-list. On first use the
// built-in default list is persisted and returned.
func (d *Database) GetAllowedExtensions(ctx context.Context) ([]string, error) {
	raw, err := d.GetSetting(ctx, settingAllowedExtensions)
	if errors.Is(err, ErrNotFound) {
		defaults := make([]string, 0)
		for _, ext := range assettypes.DefaultAllowedExtensions() {
			if !d.IsBlockedExtension(ext) {
				defaults = append(defaults, ext)
			}
		}
		logging.Info("Initializing allowed extensions with %d defaults", len(defaults))
		return d.SetAllowedExtensions(ctx, defaults)
	}
	if err != nil {
		return nil, err
	}

	var exts []string
	if err := json.Unmarshal([]byte(raw), &exts); err != nil {
		return nil, fmt.Errorf("decode allowed extensions: %w", err)
	}
	return exts, nil
}

// SetAllowedExtensions validates and persists the scanner allow-list. Any
// blocked extension rejects the whole list with ErrBlockedExtension before
// anything is written.
func (d *Database) SetAllowedExtensions(ctx context.Context, exts []string) ([]string, error) {
	normalized, err := NormalizeExtensions(exts)
	if err != nil {
		return nil, err
	}
	for _, ext := range normalized {
		if d.IsBlockedExtension(ext) {
			return nil, fmt.Errorf("%w: %s", ErrBlockedExtension, ext)
		}
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	if err := d.SetSetting(ctx, settingAllowedExtensions, string(data)); err != nil {
		return nil, fmt.Errorf("save allowed extensions: %w", err)
	}
	return normalized, nil
}

// GetLastScan returns when the last scan iteration completed, or the zero
// time if none has.
func (d *Database) GetLastScan(ctx context.Context) (time.Time, error) {
	value, err := d.GetSetting(ctx, settingLastScan)
	if errors.Is(err, ErrNotFound) || (err == nil && value == "") {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// SetLastScan records when a scan iteration completed.
func (d *Database) SetLastScan(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		return d.SetSetting(ctx, settingLastScan, "")
	}
	return d.SetSetting(ctx, settingLastScan, t.UTC().Format(time.RFC3339))
}
