package database

import (
	"context"
	"fmt"
	"strings"

	"art-vault/internal/assettypes"
	"art-vault/internal/metrics"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

var sortColumns = map[assettypes.SortField]string{
	assettypes.SortByName:     "a.file_name COLLATE NOCASE",
	assettypes.SortByAdded:    "a.added_at",
	assettypes.SortByModified: "a.modified_at",
	assettypes.SortBySize:     "a.size",
	assettypes.SortByRating:   "a.rating",
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// normalizePaging applies defaults and bounds to page and pageSize.
func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// buildFilter turns a filter into a WHERE clause (without the keyword) and
// its arguments.
func buildFilter(f AssetFilter) (string, []interface{}, error) {
	var (
		where []string
		args  []interface{}
	)

	if f.Deleted {
		where = append(where, "a.is_deleted = 1")
	} else {
		where = append(where, "a.is_deleted = 0")
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		where = append(where, `(a.file_name LIKE ? ESCAPE '\' OR a.description LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if len(f.FileTypes) > 0 {
		for _, t := range f.FileTypes {
			if !t.Valid() {
				return "", nil, fmt.Errorf("%w: unknown file type %q", ErrInvalid, t)
			}
			args = append(args, string(t))
		}
		where = append(where, "a.file_type IN ("+placeholders(len(f.FileTypes))+")")
	}

	if tags := normalizeTagNames(f.Tags); len(tags) > 0 {
		where = append(where, `a.id IN (
			SELECT at.asset_id FROM asset_tags at JOIN tags t ON t.id = at.tag_id
			WHERE t.name IN (`+placeholders(len(tags))+`)
			GROUP BY at.asset_id HAVING COUNT(DISTINCT t.id) = ?)`)
		for _, t := range tags {
			args = append(args, t)
		}
		args = append(args, len(tags))
	}

	if len(f.Colors) > 0 {
		for _, c := range f.Colors {
			args = append(args, strings.ToUpper(strings.TrimSpace(c)))
		}
		where = append(where, "a.dominant_color IN ("+placeholders(len(f.Colors))+")")
	}

	if f.FolderID != nil {
		where = append(where, "a.folder_id = ?")
		args = append(args, *f.FolderID)
	}

	if f.SetID != nil {
		where = append(where, "a.id IN (SELECT asset_id FROM material_set_assets WHERE set_id = ?)")
		args = append(args, *f.SetID)
	}

	if f.Favorite != nil {
		where = append(where, "a.is_favorite = ?")
		args = append(args, boolToInt(*f.Favorite))
	}

	if f.MinRating != nil {
		if *f.MinRating < 0 || *f.MinRating > 5 {
			return "", nil, fmt.Errorf("%w: minRating must be between 0 and 5", ErrInvalid)
		}
		where = append(where, "a.rating >= ?")
		args = append(args, *f.MinRating)
	}

	if f.RootsOnly {
		where = append(where, "a.parent_id IS NULL")
	}

	return strings.Join(where, " AND "), args, nil
}

// orderClause returns the ORDER BY expression for a filter. Defaults to
// newest first; id breaks ties so paging is stable.
func orderClause(f AssetFilter) (string, error) {
	field := f.SortBy
	if field == "" {
		field = assettypes.SortByAdded
	}
	col, ok := sortColumns[field]
	if !ok {
		return "", fmt.Errorf("%w: unknown sort field %q", ErrInvalid, f.SortBy)
	}

	dir := "DESC"
	switch f.SortOrder {
	case "":
		if field == assettypes.SortByName {
			dir = "ASC"
		}
	case assettypes.SortAsc:
		dir = "ASC"
	case assettypes.SortDesc:
	default:
		return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalid, f.SortOrder)
	}
	return col + " " + dir + ", a.id " + dir, nil
}

// ListAssets returns one page of assets matching the filter.
func (d *Database) ListAssets(ctx context.Context, f AssetFilter) (*AssetPage, error) {
	where, args, err := buildFilter(f)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(f)
	if err != nil {
		return nil, err
	}
	page, pageSize := normalizePaging(f.Page, f.PageSize)

	done := observeQuery("list_assets")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var total int
	if err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM assets a WHERE "+where, args...,
	).Scan(&total); err != nil {
		done(err)
		return nil, err
	}

	items, err := queryAssets(ctx, d.db,
		"SELECT "+assetColumns+" FROM assets a WHERE "+where+" ORDER BY "+order+" LIMIT ? OFFSET ?",
		append(args, pageSize, (page-1)*pageSize)...,
	)
	done(err)
	if err != nil {
		return nil, err
	}

	return &AssetPage{
		Items:      items,
		TotalItems: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// GetFacets summarizes live assets by type, dominant colour and rating.
func (d *Database) GetFacets(ctx context.Context) (*Facets, error) {
	done := observeQuery("get_facets")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	facets := &Facets{
		Types:   map[string]int{},
		Colors:  map[string]int{},
		Ratings: map[int]int{},
	}

	if err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(is_favorite), 0) FROM assets WHERE is_deleted = 0
	`).Scan(&facets.Total, &facets.Favorites); err != nil {
		done(err)
		return nil, err
	}

	groups := []struct {
		query string
		add   func(key string, rating, n int)
	}{
		{
			"SELECT file_type, 0, COUNT(*) FROM assets WHERE is_deleted = 0 GROUP BY file_type",
			func(key string, _ int, n int) { facets.Types[key] = n },
		},
		{
			"SELECT dominant_color, 0, COUNT(*) FROM assets WHERE is_deleted = 0 AND dominant_color IS NOT NULL GROUP BY dominant_color",
			func(key string, _ int, n int) { facets.Colors[key] = n },
		},
		{
			"SELECT '', rating, COUNT(*) FROM assets WHERE is_deleted = 0 GROUP BY rating",
			func(_ string, rating int, n int) { facets.Ratings[rating] = n },
		},
	}

	for _, g := range groups {
		if err := func() error {
			rows, err := d.db.QueryContext(ctx, g.query)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				var (
					key       string
					rating, n int
				)
				if err := rows.Scan(&key, &rating, &n); err != nil {
					return err
				}
				g.add(key, rating, n)
			}
			return rows.Err()
		}(); err != nil {
			done(err)
			return nil, err
		}
	}

	done(nil)
	return facets, nil
}

// GetStats returns library totals for the metrics collector.
func (d *Database) GetStats(ctx context.Context) (metrics.Stats, error) {
	done := observeQuery("get_stats")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s metrics.Stats
	err := d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM assets WHERE is_deleted = 0 AND file_type = 'image'),
			(SELECT COUNT(*) FROM assets WHERE is_deleted = 0 AND file_type = 'model'),
			(SELECT COUNT(*) FROM assets WHERE is_deleted = 0 AND file_type = 'texture'),
			(SELECT COUNT(*) FROM assets WHERE is_deleted = 0 AND file_type = 'other'),
			(SELECT COUNT(*) FROM assets WHERE is_deleted = 1),
			(SELECT COUNT(*) FROM assets WHERE is_deleted = 0 AND is_favorite = 1),
			(SELECT COUNT(*) FROM tags),
			(SELECT COUNT(*) FROM scan_folders WHERE is_deleted = 0),
			(SELECT COUNT(*) FROM material_sets)
	`).Scan(&s.Images, &s.Models, &s.Textures, &s.Other, &s.Deleted, &s.Favorites, &s.Tags, &s.Folders, &s.Collections)
	done(err)
	return s, err
}
