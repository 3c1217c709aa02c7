package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fieldaudit/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.API.BaseURL == "" || cfg.Logging.Level != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadExpandsAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[paths]
data_dir = "~/audit-data"

[api]
base_url = "https://example.test/api"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if strings.HasPrefix(cfg.Paths.DataDir, "~") {
		t.Fatalf("data_dir not expanded: %q", cfg.Paths.DataDir)
	}
	if !strings.HasSuffix(cfg.API.BaseURL, "/") {
		t.Fatalf("base_url missing trailing slash: %q", cfg.API.BaseURL)
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	path := writeConfig(t, `
[api]
base_url = "ftp://example.test/api"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for non-http base URL")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "loud"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestDerivedPathsLiveUnderDataDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "[paths]\ndata_dir = \""+dir+"\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, derived := range []string{
		cfg.CatalogDatabasePath(),
		cfg.AuditDatabasePath(),
		cfg.SessionPath(),
		cfg.SyncLockPath(),
	} {
		if filepath.Dir(derived) != dir {
			t.Fatalf("derived path %q not under %q", derived, dir)
		}
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Fatalf("unexpected timeout: %d", cfg.API.TimeoutSeconds)
	}
}
