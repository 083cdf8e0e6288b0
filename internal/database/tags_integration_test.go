package database

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"art-vault/internal/assettypes"
)

func TestSetAssetTagsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _ := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	f := createTestFolder(t, db)
	a := insertTestAsset(t, db, f.ID, "/lib/a.png", assettypes.FileTypeImage)

	tags, err := db.SetAssetTags(ctx, a.ID, []string{"stone", " Brick ", "STONE", ""})
	if err != nil {
		t.Fatalf("SetAssetTags failed: %v", err)
	}
	want := []string{"Brick", "stone"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("Expected %v, got %v", want, tags)
	}

	// Replacing drops tags that are no longer listed.
	tags, err = db.SetAssetTags(ctx, a.ID, []string{"wood"})
	if err != nil {
		t.Fatalf("SetAssetTags failed: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"wood"}) {
		t.Errorf("Expected [wood], got %v", tags)
	}

	if _, err := db.SetAssetTags(ctx, 9999, []string{"x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBulkUpdateTagsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _ := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	f := createTestFolder(t, db)
	a := insertTestAsset(t, db, f.ID, "/lib/a.png", assettypes.FileTypeImage)
	b := insertTestAsset(t, db, f.ID, "/lib/b.png", assettypes.FileTypeImage)

	if _, err := db.SetAssetTags(ctx, a.ID, []string{"old"}); err != nil {
		t.Fatalf("SetAssetTags failed: %v", err)
	}

	if err := db.BulkUpdateTags(ctx, []int64{a.ID, b.ID}, []string{"stone"}, []string{"OLD"}); err != nil {
		t.Fatalf("BulkUpdateTags failed: %v", err)
	}
	for _, id := range []int64{a.ID, b.ID} {
		got, err := db.GetAsset(ctx, id)
		if err != nil {
			t.Fatalf("GetAsset failed: %v", err)
		}
		if !reflect.DeepEqual(got.Tags, []string{"stone"}) {
			t.Errorf("Asset %d: expected [stone], got %v", id, got.Tags)
		}
	}

	t.Run("missing asset rolls back the batch", func(t *testing.T) {
		err := db.BulkUpdateTags(ctx, []int64{a.ID, 9999}, []string{"metal"}, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}

		got, err := db.GetAsset(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetAsset failed: %v", err)
		}
		if !reflect.DeepEqual(got.Tags, []string{"stone"}) {
			t.Errorf("Expected tags unchanged after failed batch, got %v", got.Tags)
		}

		tags, err := db.ListTags(ctx)
		if err != nil {
			t.Fatalf("ListTags failed: %v", err)
		}
		for _, tag := range tags {
			if tag.Name == "metal" {
				t.Error("Tag created inside a failed batch should be rolled back")
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if err := db.BulkUpdateTags(ctx, nil, []string{"x"}, nil); !errors.Is(err, ErrInvalid) {
			t.Errorf("Expected ErrInvalid for no ids, got %v", err)
		}
		if err := db.BulkUpdateTags(ctx, []int64{a.ID}, nil, []string{" "}); !errors.Is(err, ErrInvalid) {
			t.Errorf("Expected ErrInvalid for no tags, got %v", err)
		}
	})
}

func TestRenameAndDeleteTagIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _ := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	f := createTestFolder(t, db)
	a := insertTestAsset(t, db, f.ID, "/lib/a.png", assettypes.FileTypeImage)

	if _, err := db.SetAssetTags(ctx, a.ID, []string{"stone", "wood"}); err != nil {
		t.Fatalf("SetAssetTags failed: %v", err)
	}

	tags, err := db.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "stone" || tags[0].AssetCount != 1 {
		t.Fatalf("Unexpected tags: %+v", tags)
	}
	stone, wood := tags[0], tags[1]

	renamed, err := db.RenameTag(ctx, stone.ID, "rock")
	if err != nil {
		t.Fatalf("RenameTag failed: %v", err)
	}
	if renamed.Name != "rock" || renamed.AssetCount != 1 {
		t.Errorf("Unexpected renamed tag: %+v", renamed)
	}

	if _, err := db.RenameTag(ctx, stone.ID, "WOOD"); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict renaming onto an existing tag, got %v", err)
	}
	if _, err := db.RenameTag(ctx, 9999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := db.DeleteTag(ctx, wood.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}
	got, err := db.GetAsset(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if !reflect.DeepEqual(got.Tags, []string{"rock"}) {
		t.Errorf("Expected [rock], got %v", got.Tags)
	}
	if err := db.DeleteTag(ctx, wood.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}
