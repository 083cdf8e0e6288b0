package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const materialSetColumns = `s.id, s.name, s.description, s.cover_asset_id, s.custom_color, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM material_set_assets m JOIN assets a ON a.id = m.asset_id
	 WHERE m.set_id = s.id AND a.is_deleted = 0)`

func scanMaterialSet(row interface{ Scan(...interface{}) error }) (*MaterialSet, error) {
	var (
		s                    MaterialSet
		cover                sql.NullInt64
		color                sql.NullString
		createdAt, updatedAt int64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &cover, &color, &createdAt, &updatedAt, &s.AssetCount); err != nil {
		return nil, err
	}
	s.CoverAssetID = int64Ptr(cover)
	s.CustomColor = stringPtr(color)
	s.CreatedAt = time.Unix(createdAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}

// validate normalizes in place: trims the name and upper-cases the colour.
func (in *MaterialSetInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalid)
	}
	if in.CustomColor != nil {
		c := strings.TrimSpace(*in.CustomColor)
		if c == "" {
			in.CustomColor = nil
		} else {
			if !hexColorPattern.MatchString(c) {
				return fmt.Errorf("%w: custom color must be #RRGGBB", ErrInvalid)
			}
			c = strings.ToUpper(c)
			in.CustomColor = &c
		}
	}
	return nil
}

// ListMaterialSets returns all collections ordered by name.
func (d *Database) ListMaterialSets(ctx context.Context) ([]MaterialSet, error) {
	done := observeQuery("list_material_sets")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT "+materialSetColumns+" FROM material_sets s ORDER BY s.name COLLATE NOCASE")
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	sets := []MaterialSet{}
	for rows.Next() {
		s, err := scanMaterialSet(rows)
		if err != nil {
			done(err)
			return nil, err
		}
		sets = append(sets, *s)
	}
	err = rows.Err()
	done(err)
	return sets, err
}

// GetMaterialSet returns one collection.
func (d *Database) GetMaterialSet(ctx context.Context, id int64) (*MaterialSet, error) {
	done := observeQuery("get_material_set")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	s, err := scanMaterialSet(d.db.QueryRowContext(ctx,
		"SELECT "+materialSetColumns+" FROM material_sets s WHERE s.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: collection %d", ErrNotFound, id)
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateMaterialSet creates a collection. Names are unique case-insensitively.
func (d *Database) CreateMaterialSet(ctx context.Context, in MaterialSetInput) (*MaterialSet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var id int64
	err := d.withTx(ctx, "create_material_set", func(tx *sql.Tx) error {
		if in.CoverAssetID != nil {
			if err := requireAsset(ctx, tx, *in.CoverAssetID); err != nil {
				return fmt.Errorf("%w: cover asset %d does not exist", ErrInvalid, *in.CoverAssetID)
			}
		}
		now := time.Now().Unix()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO material_sets (name, description, cover_asset_id, custom_color, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			in.Name, in.Description, in.CoverAssetID, in.CustomColor, now, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: collection %q already exists", ErrConflict, in.Name)
			}
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return d.GetMaterialSet(ctx, id)
}

// UpdateMaterialSet replaces the editable fields of a collection.
func (d *Database) UpdateMaterialSet(ctx context.Context, id int64, in MaterialSetInput) (*MaterialSet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	err := d.withTx(ctx, "update_material_set", func(tx *sql.Tx) error {
		if in.CoverAssetID != nil {
			if err := requireAsset(ctx, tx, *in.CoverAssetID); err != nil {
				return fmt.Errorf("%w: cover asset %d does not exist", ErrInvalid, *in.CoverAssetID)
			}
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE material_sets
			SET name = ?, description = ?, cover_asset_id = ?, custom_color = ?, updated_at = ?
			WHERE id = ?`,
			in.Name, in.Description, in.CoverAssetID, in.CustomColor, time.Now().Unix(), id,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: collection %q already exists", ErrConflict, in.Name)
			}
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: collection %d", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d.GetMaterialSet(ctx, id)
}

// DeleteMaterialSet removes a collection; its assets are untouched.
func (d *Database) DeleteMaterialSet(ctx context.Context, id int64) error {
	return d.withTx(ctx, "delete_material_set", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM material_sets WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: collection %d", ErrNotFound, id)
		}
		return nil
	})
}

// AddAssetsToSet adds assets to a collection in one transaction. Any missing
// asset aborts the whole batch.
func (d *Database) AddAssetsToSet(ctx context.Context, setID int64, assetIDs []int64) error {
	return d.changeSetMembership(ctx, "add_assets_to_set", setID, assetIDs,
		"INSERT OR IGNORE INTO material_set_assets (set_id, asset_id, added_at) VALUES (?, ?, strftime('%s', 'now'))")
}

// RemoveAssetsFromSet removes assets from a collection in one transaction.
func (d *Database) RemoveAssetsFromSet(ctx context.Context, setID int64, assetIDs []int64) error {
	return d.changeSetMembership(ctx, "remove_assets_from_set", setID, assetIDs,
		"DELETE FROM material_set_assets WHERE set_id = ? AND asset_id = ?")
}

func (d *Database) changeSetMembership(ctx context.Context, operation string, setID int64, assetIDs []int64, stmt string) error {
	if len(assetIDs) == 0 {
		return fmt.Errorf("%w: no asset ids given", ErrInvalid)
	}
	return d.withTx(ctx, operation, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM material_sets WHERE id = ?)", setID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: collection %d", ErrNotFound, setID)
		}

		for _, assetID := range assetIDs {
			if err := requireAsset(ctx, tx, assetID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, stmt, setID, assetID); err != nil {
				return fmt.Errorf("update membership of asset %d: %w", assetID, err)
			}
		}

		_, err := tx.ExecContext(ctx, "UPDATE material_sets SET updated_at = ? WHERE id = ?", time.Now().Unix(), setID)
		return err
	})
}
