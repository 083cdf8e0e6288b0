package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const folderColumns = `f.id, f.path, f.is_active, f.is_deleted, f.deleted_at, f.created_at,
	(SELECT COUNT(*) FROM assets a WHERE a.folder_id = f.id AND a.is_deleted = 0)`

func scanFolder(row interface{ Scan(...interface{}) error }) (*ScanFolder, error) {
	var (
		f         ScanFolder
		active    int
		deleted   int
		deletedAt sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&f.ID, &f.Path, &active, &deleted, &deletedAt, &createdAt, &f.AssetCount); err != nil {
		return nil, err
	}
	f.IsActive = active != 0
	f.IsDeleted = deleted != 0
	f.DeletedAt = unixPtr(deletedAt)
	f.CreatedAt = time.Unix(createdAt, 0)
	return &f, nil
}

// CreateScanFolder registers a new root directory. The path is cleaned and
// must be absolute; callers validate that it exists on disk. Returns
// ErrConflict if a live folder already has the same path.
func (d *Database) CreateScanFolder(ctx context.Context, path string) (*ScanFolder, error) {
	path = strings.TrimSpace(path)
	if path == "" || !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: folder path must be absolute", ErrInvalid)
	}
	path = filepath.Clean(path)

	var id int64
	err := d.withTx(ctx, "create_scan_folder", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO scan_folders (path, created_at) VALUES (?, ?)",
			path, time.Now().Unix(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: folder %s is already registered", ErrConflict, path)
			}
			return fmt.Errorf("failed to create scan folder: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return d.GetScanFolder(ctx, id)
}

// GetScanFolder returns a folder by id, including soft-deleted folders.
func (d *Database) GetScanFolder(ctx context.Context, id int64) (*ScanFolder, error) {
	done := observeQuery("get_scan_folder")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f, err := scanFolder(d.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM scan_folders f WHERE f.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: scan folder %d", ErrNotFound, id)
	}
	done(err)
	return f, err
}

// ListScanFolders returns folders ordered by id. Soft-deleted folders are
// included only when includeDeleted is set.
func (d *Database) ListScanFolders(ctx context.Context, includeDeleted bool) ([]ScanFolder, error) {
	query := "SELECT " + folderColumns + " FROM scan_folders f"
	if !includeDeleted {
		query += " WHERE f.is_deleted = 0"
	}
	return d.listFolders(ctx, "list_scan_folders", query+" ORDER BY f.id")
}

// ListActiveScanFolders returns the folders the scanner should walk, in the
// order they were registered.
func (d *Database) ListActiveScanFolders(ctx context.Context) ([]ScanFolder, error) {
	return d.listFolders(ctx, "list_active_scan_folders",
		"SELECT "+folderColumns+" FROM scan_folders f WHERE f.is_active = 1 AND f.is_deleted = 0 ORDER BY f.id")
}

func (d *Database) listFolders(ctx context.Context, operation, query string) ([]ScanFolder, error) {
	done := observeQuery(operation)

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	folders := []ScanFolder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			done(err)
			return nil, err
		}
		folders = append(folders, *f)
	}
	err = rows.Err()
	done(err)
	return folders, err
}

// SetScanFolderActive pauses or resumes scanning of a live folder.
func (d *Database) SetScanFolderActive(ctx context.Context, id int64, active bool) (*ScanFolder, error) {
	err := d.withTx(ctx, "set_scan_folder_active", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE scan_folders SET is_active = ? WHERE id = ? AND is_deleted = 0",
			boolToInt(active), id,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: scan folder %d", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d.GetScanFolder(ctx, id)
}

// DeleteScanFolder removes a folder. A folder still referenced by any asset
// (live or soft-deleted) is only flagged as deleted so those assets keep their
// owner; an orphaned folder is removed physically. The returned bool reports
// whether the row was physically removed.
func (d *Database) DeleteScanFolder(ctx context.Context, id int64) (physical bool, err error) {
	err = d.withTx(ctx, "delete_scan_folder", func(tx *sql.Tx) error {
		var deleted int
		if err := tx.QueryRowContext(ctx,
			"SELECT is_deleted FROM scan_folders WHERE id = ?", id,
		).Scan(&deleted); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: scan folder %d", ErrNotFound, id)
			}
			return err
		}

		var refs int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM assets WHERE folder_id = ?", id,
		).Scan(&refs); err != nil {
			return err
		}

		if refs == 0 {
			physical = true
			_, err := tx.ExecContext(ctx, "DELETE FROM scan_folders WHERE id = ?", id)
			return err
		}

		if deleted != 0 {
			return nil
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE scan_folders SET is_deleted = 1, is_active = 0, deleted_at = ? WHERE id = ?",
			time.Now().Unix(), id,
		)
		return err
	})
	return physical, err
}
