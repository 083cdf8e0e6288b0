package database

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"art-vault/internal/assettypes"
)

// TestRecordQuery tests the recordQuery helper function.
func TestRecordQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		operation string
		err       error
	}{
		{"successful query", "test_operation", nil},
		{"failed query", "test_operation", errors.New("test error")},
		{"not found counts as success", "test_operation", fmt.Errorf("%w: asset 1", ErrNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Recording must never panic.
			recordQuery(tt.operation, time.Now(), tt.err)
			observeQuery(tt.operation)(tt.err)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"stone", "stone"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`c:\tex`, `c:\\tex`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePaging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, defaultPageSize},
		{-3, -1, 1, defaultPageSize},
		{2, 25, 2, 25},
		{1, maxPageSize + 1, 1, maxPageSize},
	}
	for _, tt := range tests {
		p, s := normalizePaging(tt.page, tt.size)
		if p != tt.wantPage || s != tt.wantSize {
			t.Errorf("normalizePaging(%d, %d) = (%d, %d), want (%d, %d)",
				tt.page, tt.size, p, s, tt.wantPage, tt.wantSize)
		}
	}
}

func TestOrderClause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		filter  AssetFilter
		want    string
		wantErr bool
	}{
		{"default newest first", AssetFilter{}, "a.added_at DESC, a.id DESC", false},
		{"name defaults ascending", AssetFilter{SortBy: assettypes.SortByName}, "a.file_name COLLATE NOCASE ASC, a.id ASC", false},
		{"explicit order", AssetFilter{SortBy: assettypes.SortBySize, SortOrder: assettypes.SortAsc}, "a.size ASC, a.id ASC", false},
		{"unknown field", AssetFilter{SortBy: "hue"}, "", true},
		{"unknown order", AssetFilter{SortOrder: "up"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := orderClause(tt.filter)
			if (err != nil) != tt.wantErr {
				t.Fatalf("orderClause() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("orderClause() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeExtensions(t *testing.T) {
	t.Parallel()

	got, err := NormalizeExtensions([]string{"PNG", ".png", "..jpg", " tga "})
	if err != nil {
		t.Fatalf("NormalizeExtensions failed: %v", err)
	}
	want := []string{".png", ".jpg", ".tga"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	for _, bad := range []string{"", ".", "a/b", "tar.gz"} {
		if _, err := NormalizeExtensions([]string{bad}); !errors.Is(err, ErrInvalid) {
			t.Errorf("NormalizeExtensions(%q): expected ErrInvalid, got %v", bad, err)
		}
	}
}

func TestNormalizeTagNames(t *testing.T) {
	t.Parallel()

	got := normalizeTagNames([]string{" Stone", "stone", "", "Wood", "  "})
	want := []string{"Stone", "Wood"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestBuildFilterDefaults(t *testing.T) {
	t.Parallel()

	where, args, err := buildFilter(AssetFilter{})
	if err != nil {
		t.Fatalf("buildFilter failed: %v", err)
	}
	if where != "a.is_deleted = 0" || len(args) != 0 {
		t.Errorf("Unexpected default filter: %q %v", where, args)
	}
}

func TestMaterialSetInputValidate(t *testing.T) {
	t.Parallel()

	blank := "  "
	in := MaterialSetInput{Name: " Walls ", CustomColor: &blank}
	if err := in.validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if in.Name != "Walls" || in.CustomColor != nil {
		t.Errorf("Expected trimmed name and cleared color, got %+v", in)
	}
}
