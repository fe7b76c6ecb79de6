package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// each pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestStorageRepository(t *testing.T) {
	t.Run("Get missing key", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		value, ok, err := repo.Get("accessToken")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || value != "" {
			t.Errorf("expected absent key, got %q (ok=%v)", value, ok)
		}
	})

	t.Run("Set and Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		if err := repo.Set("theme", "dark"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		value, ok, err := repo.Get("theme")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if !ok || value != "dark" {
			t.Errorf("expected dark, got %q (ok=%v)", value, ok)
		}
	})

	t.Run("Set overwrites", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		if err := repo.Set("theme", "dark"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := repo.Set("theme", "light"); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		value, _, err := repo.Get("theme")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if value != "light" {
			t.Errorf("expected light, got %q", value)
		}
	})

	t.Run("SetMany and Keys", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		err := repo.SetMany(map[string]string{"refreshToken": "r", "accessToken": "a"})
		if err != nil {
			t.Fatalf("failed to set many: %v", err)
		}

		keys, err := repo.Keys()
		if err != nil {
			t.Fatalf("failed to list keys: %v", err)
		}
		if len(keys) != 2 || keys[0] != "accessToken" || keys[1] != "refreshToken" {
			t.Errorf("unexpected keys: %v", keys)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		if err := repo.SetMany(map[string]string{"accessToken": "a", "refreshToken": "r", "theme": "dark"}); err != nil {
			t.Fatalf("failed to set many: %v", err)
		}

		if err := repo.Remove("accessToken", "refreshToken", "missing"); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}

		keys, err := repo.Keys()
		if err != nil {
			t.Fatalf("failed to list keys: %v", err)
		}
		if len(keys) != 1 || keys[0] != "theme" {
			t.Errorf("expected only theme to remain, got %v", keys)
		}
	})

	t.Run("shared between repositories", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		writer := NewStorageRepository(db)
		reader := NewStorageRepository(db)

		if err := writer.Set("accessToken", "fresh"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		value, ok, err := reader.Get("accessToken")
		if err != nil || !ok || value != "fresh" {
			t.Errorf("expected second repository to see write, got %q ok=%v err=%v", value, ok, err)
		}
	})
}

func TestExportRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		rec := models.NewExportRecord("snap-1", "Short-Term Wrapped", "csv", "/tmp/short.csv")

		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		if rec.ID() == "" {
			t.Error("export ID should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		rec := models.NewExportRecord("snap-1", "Short-Term Wrapped", "markdown", "/tmp/short.md")
		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		retrieved, err := repo.Get(rec.ID())
		if err != nil {
			t.Fatalf("failed to get export: %v", err)
		}

		if retrieved.SnapshotID != "snap-1" || retrieved.Format != "markdown" || retrieved.Path != "/tmp/short.md" {
			t.Errorf("unexpected export: %+v", retrieved)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		records := []*models.ExportRecord{
			models.NewExportRecord("snap-1", "Short-Term Wrapped", "csv", "/tmp/a.csv"),
			models.NewExportRecord("snap-1", "Short-Term Wrapped", "json", "/tmp/a.json"),
			models.NewExportRecord("snap-2", "Long-Term Wrapped", "csv", "/tmp/b.csv"),
		}

		for _, rec := range records {
			if err := repo.Create(rec); err != nil {
				t.Fatalf("failed to create export: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list exports: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 exports, got %d", len(all))
		}

		bySnapshot, err := repo.List(map[string]any{"snapshot_id": "snap-1"})
		if err != nil {
			t.Fatalf("failed to list filtered exports: %v", err)
		}
		if len(bySnapshot) != 2 {
			t.Errorf("expected 2 exports for snap-1, got %d", len(bySnapshot))
		}

		csv, err := repo.List(map[string]any{"format": "csv"})
		if err != nil {
			t.Fatalf("failed to list filtered exports: %v", err)
		}
		if len(csv) != 2 {
			t.Errorf("expected 2 csv exports, got %d", len(csv))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		rec := models.NewExportRecord("snap-1", "Short-Term Wrapped", "csv", "/tmp/a.csv")
		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		if err := repo.Delete(rec.ID()); err != nil {
			t.Fatalf("failed to delete export: %v", err)
		}

		if _, err := repo.Get(rec.ID()); err == nil {
			t.Error("expected error when getting deleted export")
		}
	})
}
