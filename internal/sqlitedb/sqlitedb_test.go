package sqlitedb_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fieldaudit/internal/sqlitedb"
)

const testSchema = `
CREATE TABLE schema_version (version INTEGER NOT NULL);
CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
`

func TestInitSchemaCreatesAndVerifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlitedb.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := sqlitedb.InitSchema(ctx, db, testSchema, 3); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	// Re-init with the same version succeeds.
	if err := sqlitedb.InitSchema(ctx, db, testSchema, 3); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	// A different version is refused.
	err = sqlitedb.InitSchema(ctx, db, testSchema, 4)
	if !errors.Is(err, sqlitedb.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestRetryOnBusyPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	attempts := 0
	err := sqlitedb.RetryOnBusy(context.Background(), func() error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("non-busy errors must not retry, got %d attempts", attempts)
	}
}

func TestMakePlaceholders(t *testing.T) {
	if got := sqlitedb.MakePlaceholders(3); got != "?, ?, ?" {
		t.Fatalf("unexpected placeholders: %q", got)
	}
	if got := sqlitedb.MakePlaceholders(0); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
