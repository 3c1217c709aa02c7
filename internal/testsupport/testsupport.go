// Package testsupport provides helpers for wiring tests with temporary
// configuration and databases.
package testsupport

import (
	"testing"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/config"
)

// NewConfig builds a validated config rooted in a per-test temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = base
	cfg.Paths.LogDir = base
	cfg.API.BaseURL = "https://api.invalid/"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// MustOpenCatalog opens a catalog bound to the test config and closes it at
// cleanup.
func MustOpenCatalog(t *testing.T, cfg *config.Config) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() {
		if err := cat.Close(); err != nil {
			t.Errorf("close catalog: %v", err)
		}
	})
	return cat
}

// MustOpenAuditDB opens an audit database bound to the test config and
// closes it at cleanup.
func MustOpenAuditDB(t *testing.T, cfg *config.Config) *auditdb.DB {
	t.Helper()

	db, err := auditdb.Open(cfg)
	if err != nil {
		t.Fatalf("open audit db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close audit db: %v", err)
		}
	})
	return db
}
