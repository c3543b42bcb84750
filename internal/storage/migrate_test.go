package storage

import (
	"path/filepath"
	"testing"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	v, dirty, err := SchemaVersion(dbPath)
	if err != nil {
		t.Fatalf("SchemaVersion on fresh database: %v", err)
	}
	if v != 0 || dirty {
		t.Fatalf("fresh database reported version %d dirty=%v", v, dirty)
	}

	for i := 0; i < 2; i++ {
		if err := RunMigrations(dbPath); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	v, dirty, err = SchemaVersion(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 || dirty {
		t.Fatalf("expected version 1 clean, got %d dirty=%v", v, dirty)
	}
}
