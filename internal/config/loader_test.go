package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 9090
  mode: release
database:
  host: db.internal
  user: svc
  db_name: hts
classification:
  confidence_threshold: 45
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Mode != "release" {
		t.Errorf("server section not loaded: %+v", cfg.Server)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q", cfg.Database.Host)
	}
	if cfg.Classification.ConfidenceThreshold != 45 {
		t.Errorf("confidence_threshold = %.1f", cfg.Classification.ConfidenceThreshold)
	}
	// Unset fields were defaulted.
	if cfg.Classification.MaxEnrichment != DefaultMaxEnrichment {
		t.Error("defaults not applied to unset fields")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidConfigFailsValidation(t *testing.T) {
	path := writeTempConfig(t, `
server:
  mode: nonsense
`)
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for bad server.mode")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TARIFFSCOPE_SERVER_PORT", "8181")
	t.Setenv("TARIFFSCOPE_DATABASE_HOST", "env-db")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("env override not applied: port = %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "env-db" {
		t.Errorf("env override not applied: host = %q", cfg.Database.Host)
	}
}

func TestMustLoadPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLoad must panic on missing file")
		}
	}()
	MustLoad("/nonexistent/config.yaml")
}
