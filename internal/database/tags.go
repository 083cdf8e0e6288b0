package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// normalizeTagNames trims, drops empties and de-duplicates case-insensitively,
// keeping the first spelling seen.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// getOrCreateTag returns the id of the tag with this name, creating it when missing.
func getOrCreateTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO tags (name, created_at) VALUES (?, ?)", name, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to create tag: %w", err)
	}
	return res.LastInsertId()
}

// ListTags returns all tags ordered by name with the number of live assets
// carrying each.
func (d *Database) ListTags(ctx context.Context) ([]Tag, error) {
	done := observeQuery("list_tags")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at,
			(SELECT COUNT(*) FROM asset_tags at JOIN assets a ON a.id = at.asset_id
			 WHERE at.tag_id = t.id AND a.is_deleted = 0)
		FROM tags t
		ORDER BY t.name COLLATE NOCASE
	`)
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.Name, &createdAt, &t.AssetCount); err != nil {
			done(err)
			return nil, err
		}
		t.CreatedAt = time.Unix(createdAt, 0)
		tags = append(tags, t)
	}
	err = rows.Err()
	done(err)
	return tags, err
}

// SetAssetTags replaces the tag set of one asset.
func (d *Database) SetAssetTags(ctx context.Context, assetID int64, names []string) ([]string, error) {
	names = normalizeTagNames(names)

	err := d.withTx(ctx, "set_asset_tags", func(tx *sql.Tx) error {
		if err := requireAsset(ctx, tx, assetID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM asset_tags WHERE asset_id = ?", assetID); err != nil {
			return err
		}
		for _, name := range names {
			tagID, err := getOrCreateTag(ctx, tx, name)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO asset_tags (asset_id, tag_id) VALUES (?, ?)", assetID, tagID,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a, err := d.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return a.Tags, nil
}

// BulkUpdateTags adds and removes tags across many assets as a single
// all-or-nothing transaction. A missing asset id aborts the whole batch with
// ErrNotFound.
func (d *Database) BulkUpdateTags(ctx context.Context, assetIDs []int64, add, remove []string) error {
	if len(assetIDs) == 0 {
		return fmt.Errorf("%w: no asset ids given", ErrInvalid)
	}
	add = normalizeTagNames(add)
	remove = normalizeTagNames(remove)
	if len(add) == 0 && len(remove) == 0 {
		return fmt.Errorf("%w: nothing to add or remove", ErrInvalid)
	}

	return d.withTx(ctx, "bulk_update_tags", func(tx *sql.Tx) error {
		addIDs := make([]int64, 0, len(add))
		for _, name := range add {
			id, err := getOrCreateTag(ctx, tx, name)
			if err != nil {
				return err
			}
			addIDs = append(addIDs, id)
		}

		for _, assetID := range assetIDs {
			if err := requireAsset(ctx, tx, assetID); err != nil {
				return err
			}
			for _, tagID := range addIDs {
				if _, err := tx.ExecContext(ctx,
					"INSERT OR IGNORE INTO asset_tags (asset_id, tag_id) VALUES (?, ?)", assetID, tagID,
				); err != nil {
					return fmt.Errorf("tag asset %d: %w", assetID, err)
				}
			}
			for _, name := range remove {
				if _, err := tx.ExecContext(ctx,
					"DELETE FROM asset_tags WHERE asset_id = ? AND tag_id = (SELECT id FROM tags WHERE name = ?)",
					assetID, name,
				); err != nil {
					return fmt.Errorf("untag asset %d: %w", assetID, err)
				}
			}
		}
		return nil
	})
}

// RenameTag changes a tag's name. Returns ErrConflict when another tag
// already uses the name (case-insensitively).
func (d *Database) RenameTag(ctx context.Context, id int64, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name cannot be empty", ErrInvalid)
	}

	err := d.withTx(ctx, "rename_tag", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE tags SET name = ? WHERE id = ?", name, id)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: tag %q already exists", ErrConflict, name)
			}
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: tag %d", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tags, err := d.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if tags[i].ID == id {
			return &tags[i], nil
		}
	}
	return nil, fmt.Errorf("%w: tag %d", ErrNotFound, id)
}

// DeleteTag removes a tag from every asset.
func (d *Database) DeleteTag(ctx context.Context, id int64) error {
	return d.withTx(ctx, "delete_tag", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: tag %d", ErrNotFound, id)
		}
		return nil
	})
}

// attachTags loads tag names for a batch of assets with one query.
func attachTags(ctx context.Context, q queryer, assets []*Asset) error {
	if len(assets) == 0 {
		return nil
	}

	byID := make(map[int64]*Asset, len(assets))
	placeholders := make([]string, 0, len(assets))
	args := make([]interface{}, 0, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
		placeholders = append(placeholders, "?")
		args = append(args, a.ID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT at.asset_id, t.name
		FROM asset_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.asset_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY t.name COLLATE NOCASE`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var assetID int64
		var name string
		if err := rows.Scan(&assetID, &name); err != nil {
			return err
		}
		if a := byID[assetID]; a != nil {
			a.Tags = append(a.Tags, name)
		}
	}
	return rows.Err()
}
