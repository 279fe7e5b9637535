package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "batch.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "storageDir: data\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageDir != filepath.Join(dir, "data") {
		t.Errorf("StorageDir = %q, want %q", cfg.StorageDir, filepath.Join(dir, "data"))
	}
	if cfg.Concurrency <= 0 {
		t.Errorf("Concurrency = %d, want > 0", cfg.Concurrency)
	}
	if cfg.Logs.Directory != filepath.Join(cfg.StorageDir, "logs") {
		t.Errorf("Logs.Directory = %q, want %q", cfg.Logs.Directory, filepath.Join(cfg.StorageDir, "logs"))
	}
	if cfg.Logs.MaxSizeMB != 25 || cfg.Logs.MaxAgeDays != 7 || cfg.Logs.MaxBackups != 5 {
		t.Errorf("log rotation defaults = %+v, want (25,7,5)", cfg.Logs)
	}
}

func TestLoadRejectsMissingStorageDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "concurrency: 4\n")
	if _, err := Load(path); err == nil {
		t.Errorf("expected an error when storageDir is absent")
	}
}

func TestLoadPreservesExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "storageDir: /var/lib/bblctl\nconcurrency: 3\nrawMode: true\nlogs:\n  maxSizeMB: 10\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageDir != "/var/lib/bblctl" {
		t.Errorf("StorageDir = %q, want /var/lib/bblctl", cfg.StorageDir)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Concurrency)
	}
	if !cfg.RawMode {
		t.Errorf("RawMode = false, want true")
	}
	if cfg.Logs.MaxSizeMB != 10 {
		t.Errorf("Logs.MaxSizeMB = %d, want 10", cfg.Logs.MaxSizeMB)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("expected an error for a missing config file")
	}
}
