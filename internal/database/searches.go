package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateSavedSearch persists a named filter. Paging fields are not stored.
func (d *Database) CreateSavedSearch(ctx context.Context, name string, filter AssetFilter) (*SavedSearch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: search name cannot be empty", ErrInvalid)
	}
	filter.Page, filter.PageSize = 0, 0

	data, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	var id int64
	err = d.withTx(ctx, "create_saved_search", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO saved_searches (name, query_json, created_at) VALUES (?, ?, ?)",
			name, string(data), time.Now().Unix(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: saved search %q already exists", ErrConflict, name)
			}
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return d.GetSavedSearch(ctx, id)
}

func scanSavedSearch(row interface{ Scan(...interface{}) error }) (*SavedSearch, error) {
	var (
		s         SavedSearch
		raw       string
		createdAt int64
	)
	if err := row.Scan(&s.ID, &s.Name, &raw, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &s.Filter); err != nil {
		return nil, fmt.Errorf("decode saved search %d: %w", s.ID, err)
	}
	s.CreatedAt = time.Unix(createdAt, 0)
	return &s, nil
}

// GetSavedSearch returns one saved search.
func (d *Database) GetSavedSearch(ctx context.Context, id int64) (*SavedSearch, error) {
	done := observeQuery("get_saved_search")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	s, err := scanSavedSearch(d.db.QueryRowContext(ctx,
		"SELECT id, name, query_json, created_at FROM saved_searches WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: saved search %d", ErrNotFound, id)
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSavedSearches returns all saved searches ordered by name.
func (d *Database) ListSavedSearches(ctx context.Context) ([]SavedSearch, error) {
	done := observeQuery("list_saved_searches")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT id, name, query_json, created_at FROM saved_searches ORDER BY name COLLATE NOCASE")
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	searches := []SavedSearch{}
	for rows.Next() {
		s, err := scanSavedSearch(rows)
		if err != nil {
			done(err)
			return nil, err
		}
		searches = append(searches, *s)
	}
	err = rows.Err()
	done(err)
	return searches, err
}

// DeleteSavedSearch removes a saved search.
func (d *Database) DeleteSavedSearch(ctx context.Context, id int64) error {
	return d.withTx(ctx, "delete_saved_search", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM saved_searches WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: saved search %d", ErrNotFound, id)
		}
		return nil
	})
}
