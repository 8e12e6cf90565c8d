package shared

import (
	"database/sql"
	"testing"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)", name).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check table %s: %v", name, err)
	}
	return exists
}

func TestMigrations(t *testing.T) {
	t.Run("RunMigrations creates the schema", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"credentials", "submissions", "submissions_sequence", "schema_migrations"} {
			if !tableExists(t, db, table) {
				t.Errorf("expected table %s to exist", table)
			}
		}

		var seed int
		if err := db.QueryRow("SELECT value FROM submissions_sequence WHERE id = 1").Scan(&seed); err != nil {
			t.Fatalf("failed to read sequence seed: %v", err)
		}
		if seed != 0 {
			t.Errorf("expected sequence seeded at 0, got %d", seed)
		}
	})

	t.Run("RunMigrations is idempotent", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected second run to succeed: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to count applied migrations: %v", err)
		}
		if count != 1 {
			t.Errorf("expected one applied migration, got %d", count)
		}
	})

	t.Run("RollbackMigration drops the schema", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		for _, table := range []string{"credentials", "submissions", "submissions_sequence"} {
			if tableExists(t, db, table) {
				t.Errorf("expected table %s to be dropped", table)
			}
		}
	})

	t.Run("RollbackMigration with nothing applied", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when no migrations remain")
		}
	})
}

func TestStripComments(t *testing.T) {
	stmt := `-- leading comment
CREATE TABLE demo ( -- trailing comment
    id INTEGER PRIMARY KEY
)`

	got := stripComments(stmt)
	if got != "CREATE TABLE demo (\nid INTEGER PRIMARY KEY\n)" {
		t.Errorf("unexpected stripped statement: %q", got)
	}
}
