package sqlite

import (
	"context"
	"reflect"
	"testing"
	"time"

	"garage-billing-api/internal/autocomplete"
	"garage-billing-api/internal/repositories"
)

func TestAutocompleteRepository_UpsertAndLoad(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAutocompleteRepository(db, testLogger())
	ctx := context.Background()

	for _, name := range []string{"Toyota", "Honda", "Hyundai"} {
		if err := repo.Upsert(ctx, repositories.CategoryCarMakes, name); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", name, err)
		}
		// keep last_used strictly ordered
		time.Sleep(2 * time.Millisecond)
	}

	trie := autocomplete.NewTrie()
	if err := repo.LoadInto(ctx, repositories.CategoryCarMakes, trie); err != nil {
		t.Fatalf("LoadInto() failed: %v", err)
	}

	// loaded most recently used first: Hyundai before Honda under the h node
	got := trie.Suggest("h")
	want := []string{"Hyundai", "Honda"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(h) = %v, want recency order %v", got, want)
	}
}

func TestAutocompleteRepository_UpsertBumpsRecency(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAutocompleteRepository(db, testLogger())
	ctx := context.Background()

	if err := repo.Upsert(ctx, repositories.CategoryCarModels, "Corolla"); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := repo.Upsert(ctx, repositories.CategoryCarModels, "City"); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	// re-using Corolla must move it back to the front without adding a row
	if err := repo.Upsert(ctx, repositories.CategoryCarModels, "Corolla"); err != nil {
		t.Fatalf("Upsert() bump failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM car_models").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("row count = %d, want 2 after re-upsert", count)
	}

	trie := autocomplete.NewTrie()
	if err := repo.LoadInto(ctx, repositories.CategoryCarModels, trie); err != nil {
		t.Fatalf("LoadInto() failed: %v", err)
	}

	got := trie.Suggest("c")
	want := []string{"Corolla", "City"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(c) = %v, want %v", got, want)
	}
}

func TestAutocompleteRepository_UpsertBlankNoOp(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAutocompleteRepository(db, testLogger())
	ctx := context.Background()

	if err := repo.Upsert(ctx, repositories.CategoryParticulars, "   "); err != nil {
		t.Fatalf("Upsert() of blank name must be a no-op, got: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM particulars").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("row count = %d, want 0 after blank upsert", count)
	}
}

func TestAutocompleteRepository_UnknownCategory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAutocompleteRepository(db, testLogger())
	ctx := context.Background()

	err := repo.Upsert(ctx, repositories.Category("drop_tables"), "x")
	if err == nil {
		t.Fatal("Upsert() should reject an unknown category")
	}
	if !repositories.IsValidation(err) {
		t.Errorf("error = %v, want a validation error", err)
	}

	if err := repo.LoadInto(ctx, repositories.Category("drop_tables"), autocomplete.NewTrie()); err == nil {
		t.Fatal("LoadInto() should reject an unknown category")
	}
}
