package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"art-vault/internal/assettypes"
)

const assetColumns = `a.id, a.folder_id, a.parent_id, a.file_name, a.file_path, a.file_type, a.size,
	a.file_hash, a.thumbnail_path, a.rating, a.is_favorite, a.width, a.height, a.bit_depth,
	a.has_alpha, a.dominant_color, a.description, a.added_at, a.last_scanned_at, a.modified_at,
	a.is_deleted, a.deleted_at,
	(SELECT COUNT(*) FROM assets c WHERE c.parent_id = a.id AND c.is_deleted = 0)`

func scanAsset(row interface{ Scan(...interface{}) error }) (*Asset, error) {
	var (
		a                                 Asset
		folderID, parentID                sql.NullInt64
		fileType                          string
		fileHash, dominantColor           sql.NullString
		favorite, deleted                 int
		width, height, bitDepth, hasAlpha sql.NullInt64
		addedAt, scannedAt, modifiedAt    int64
		deletedAt                         sql.NullInt64
	)
	err := row.Scan(
		&a.ID, &folderID, &parentID, &a.FileName, &a.FilePath, &fileType, &a.Size,
		&fileHash, &a.ThumbnailPath, &a.Rating, &favorite, &width, &height, &bitDepth,
		&hasAlpha, &dominantColor, &a.Description, &addedAt, &scannedAt, &modifiedAt,
		&deleted, &deletedAt, &a.ChildCount,
	)
	if err != nil {
		return nil, err
	}

	a.FolderID = int64Ptr(folderID)
	a.ParentID = int64Ptr(parentID)
	a.FileType = assettypes.FileType(fileType)
	a.FileHash = stringPtr(fileHash)
	a.IsFavorite = favorite != 0
	a.ImageWidth = intPtr(width)
	a.ImageHeight = intPtr(height)
	a.BitDepth = intPtr(bitDepth)
	a.HasAlpha = boolPtr(hasAlpha)
	a.DominantColor = stringPtr(dominantColor)
	a.AddedAt = time.Unix(addedAt, 0)
	a.LastScannedAt = time.Unix(scannedAt, 0)
	a.ModifiedAt = time.Unix(modifiedAt, 0)
	a.IsDeleted = deleted != 0
	a.DeletedAt = unixPtr(deletedAt)
	a.Tags = []string{}
	return &a, nil
}

// InsertAsset records a newly discovered file with default user fields
// (rating 0, not favorite, not deleted). Each call is its own transaction so a
// failure never affects previously inserted assets. Returns ErrAssetExists if
// a live asset already owns the path.
func (d *Database) InsertAsset(ctx context.Context, in *NewAsset) (*Asset, error) {
	if in.FilePath == "" || in.ThumbnailPath == "" {
		return nil, fmt.Errorf("%w: file path and thumbnail path are required", ErrInvalid)
	}
	if !in.FileType.Valid() {
		return nil, fmt.Errorf("%w: unknown file type %q", ErrInvalid, in.FileType)
	}

	now := time.Now().Unix()
	var hasAlpha interface{}
	if in.HasAlpha != nil {
		hasAlpha = boolToInt(*in.HasAlpha)
	}

	var id int64
	err := d.withTx(ctx, "insert_asset", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO assets (
				folder_id, file_name, file_path, file_type, size, file_hash, thumbnail_path,
				width, height, bit_depth, has_alpha, dominant_color,
				added_at, last_scanned_at, modified_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.FolderID, in.FileName, in.FilePath, string(in.FileType), in.Size, in.FileHash, in.ThumbnailPath,
			in.ImageWidth, in.ImageHeight, in.BitDepth, hasAlpha, in.DominantColor,
			now, now, in.ModifiedAt.Unix(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrAssetExists, in.FilePath)
			}
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: scan folder %d", ErrNotFound, in.FolderID)
			}
			return fmt.Errorf("failed to insert asset: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return d.GetAsset(ctx, id)
}

// AssetExistsByPath reports whether a live (non soft-deleted) asset has
// exactly this path.
func (d *Database) AssetExistsByPath(ctx context.Context, path string) (bool, error) {
	done := observeQuery("asset_exists_by_path")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var exists bool
	err := d.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM assets WHERE file_path = ? AND is_deleted = 0)", path,
	).Scan(&exists)
	done(err)
	return exists, err
}

// GetAsset returns an asset with its tags, including soft-deleted assets.
func (d *Database) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	done := observeQuery("get_asset")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a, err := getAsset(ctx, d.db, id)
	if err == nil {
		err = attachTags(ctx, d.db, []*Asset{a})
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func getAsset(ctx context.Context, q queryer, id int64) (*Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets a WHERE a.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: asset %d", ErrNotFound, id)
	}
	return a, err
}

// UpdateAsset applies user edits. Rating must be within 0..5.
func (d *Database) UpdateAsset(ctx context.Context, id int64, patch AssetPatch) (*Asset, error) {
	var sets []string
	var args []interface{}

	if patch.Rating != nil {
		if *patch.Rating < 0 || *patch.Rating > 5 {
			return nil, fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalid)
		}
		sets = append(sets, "rating = ?")
		args = append(args, *patch.Rating)
	}
	if patch.IsFavorite != nil {
		sets = append(sets, "is_favorite = ?")
		args = append(args, boolToInt(*patch.IsFavorite))
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*patch.Description))
	}

	if len(sets) > 0 {
		err := d.withTx(ctx, "update_asset", func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx,
				"UPDATE assets SET "+strings.Join(sets, ", ")+" WHERE id = ?",
				append(args, id)...,
			)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: asset %d", ErrNotFound, id)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return d.GetAsset(ctx, id)
}

// SoftDeleteAsset hides an asset from normal listings.
func (d *Database) SoftDeleteAsset(ctx context.Context, id int64) error {
	return d.SoftDeleteAssets(ctx, []int64{id})
}

// SoftDeleteAssets soft-deletes every listed asset in one transaction. If any
// id does not exist nothing is changed and ErrNotFound is returned. Assets
// that are already deleted are left as they are.
func (d *Database) SoftDeleteAssets(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no asset ids given", ErrInvalid)
	}
	now := time.Now().Unix()
	return d.withTx(ctx, "soft_delete_assets", func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := requireAsset(ctx, tx, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				"UPDATE assets SET is_deleted = 1, deleted_at = ? WHERE id = ? AND is_deleted = 0",
				now, id,
			); err != nil {
				return fmt.Errorf("soft delete asset %d: %w", id, err)
			}
		}
		return nil
	})
}

// RestoreAsset brings a soft-deleted asset back.
func (d *Database) RestoreAsset(ctx context.Context, id int64) error {
	return d.RestoreAssets(ctx, []int64{id})
}

// RestoreAssets restores every listed asset in one transaction. If the scanner
// has re-indexed a path while its old row sat in the trash, restoring that row
// would duplicate the live path and fails with ErrConflict, rolling back the
// whole batch.
func (d *Database) RestoreAssets(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no asset ids given", ErrInvalid)
	}
	return d.withTx(ctx, "restore_assets", func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := requireAsset(ctx, tx, id); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"UPDATE assets SET is_deleted = 0, deleted_at = NULL WHERE id = ? AND is_deleted = 1", id)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: asset %d path is already indexed by another asset", ErrConflict, id)
				}
				return fmt.Errorf("restore asset %d: %w", id, err)
			}
		}
		return nil
	})
}

// PurgeAsset permanently removes an asset row and its tag and collection
// memberships. Children are detached. The removed asset is returned so the
// caller can clean up its thumbnail.
func (d *Database) PurgeAsset(ctx context.Context, id int64) (*Asset, error) {
	var purged *Asset
	err := d.withTx(ctx, "purge_asset", func(tx *sql.Tx) error {
		a, err := getAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id); err != nil {
			return fmt.Errorf("purge asset %d: %w", id, err)
		}
		purged = a
		return nil
	})
	return purged, err
}

// SetParent groups child under parent as a version. Nesting is limited to a
// single level: the parent must not itself have a parent, and the child must
// have neither a parent nor children of its own.
func (d *Database) SetParent(ctx context.Context, childID, parentID int64) (*Asset, error) {
	if childID == parentID {
		return nil, fmt.Errorf("%w: an asset cannot be its own parent", ErrInvalid)
	}

	err := d.withTx(ctx, "set_parent", func(tx *sql.Tx) error {
		child, err := getAsset(ctx, tx, childID)
		if err != nil {
			return err
		}
		parent, err := getAsset(ctx, tx, parentID)
		if err != nil {
			return err
		}

		switch {
		case child.IsDeleted || parent.IsDeleted:
			return fmt.Errorf("%w: deleted assets cannot be linked", ErrInvalid)
		case parent.ParentID != nil:
			return fmt.Errorf("%w: asset %d already has a parent", ErrInvalid, parentID)
		case child.ParentID != nil:
			return fmt.Errorf("%w: asset %d already has a parent", ErrInvalid, childID)
		}

		var children int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM assets WHERE parent_id = ?", childID,
		).Scan(&children); err != nil {
			return err
		}
		if children > 0 {
			return fmt.Errorf("%w: asset %d is already a parent", ErrInvalid, childID)
		}

		_, err = tx.ExecContext(ctx, "UPDATE assets SET parent_id = ? WHERE id = ?", parentID, childID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d.GetAsset(ctx, childID)
}

// ClearParent detaches an asset from its parent.
func (d *Database) ClearParent(ctx context.Context, childID int64) (*Asset, error) {
	err := d.withTx(ctx, "clear_parent", func(tx *sql.Tx) error {
		if err := requireAsset(ctx, tx, childID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "UPDATE assets SET parent_id = NULL WHERE id = ?", childID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d.GetAsset(ctx, childID)
}

// ListChildren returns the live children of an asset ordered by name.
func (d *Database) ListChildren(ctx context.Context, parentID int64) ([]Asset, error) {
	done := observeQuery("list_children")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := getAsset(ctx, d.db, parentID); err != nil {
		done(err)
		return nil, err
	}

	assets, err := queryAssets(ctx, d.db,
		"SELECT "+assetColumns+" FROM assets a WHERE a.parent_id = ? AND a.is_deleted = 0 ORDER BY a.file_name COLLATE NOCASE, a.id",
		parentID,
	)
	done(err)
	return assets, err
}

func requireAsset(ctx context.Context, q queryer, id int64) error {
	var exists bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM assets WHERE id = ?)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: asset %d", ErrNotFound, id)
	}
	return nil
}

// queryAssets runs a query selecting assetColumns and attaches tags.
func queryAssets(ctx context.Context, q queryer, query string, args ...interface{}) ([]Asset, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var ptrs []*Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ptrs = append(ptrs, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := attachTags(ctx, q, ptrs); err != nil {
		return nil, err
	}

	assets := make([]Asset, 0, len(ptrs))
	for _, a := range ptrs {
		assets = append(assets, *a)
	}
	return assets, nil
}
