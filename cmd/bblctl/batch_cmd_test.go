package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"example.com/bblparse/internal/samples"
)

func writeBatchConfig(t *testing.T, dir, storageDir string) string {
	t.Helper()
	path := filepath.Join(dir, "batch.yaml")
	body := "storageDir: " + storageDir + "\nconcurrency: 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestBatchCmdDecodesEveryFileInDir(t *testing.T) {
	root := t.TempDir()
	inDir := filepath.Join(root, "in")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatalf("MkdirAll in: %v", err)
	}
	storageDir := filepath.Join(root, "data")
	configPath := writeBatchConfig(t, root, storageDir)

	data, err := samples.BuildBlackboxLog()
	if err != nil {
		t.Fatalf("BuildBlackboxLog: %v", err)
	}
	for _, name := range []string{"alpha.bbl", "beta.bbl", "gamma.bbl"} {
		if err := os.WriteFile(filepath.Join(inDir, name), data, 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
	// a subdirectory alongside the logs must be skipped, not opened as a file.
	if err := os.MkdirAll(filepath.Join(inDir, "nested"), 0o755); err != nil {
		t.Fatalf("MkdirAll nested: %v", err)
	}

	batchCmd([]string{
		"--config", configPath,
		"--in", inDir,
	})

	logPath := filepath.Join(storageDir, "logs", "bblctl.log")
	logBytes, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile log: %v", err)
	}
	logText := string(logBytes)

	for _, name := range []string{"alpha.bbl", "beta.bbl", "gamma.bbl"} {
		path := filepath.Join(inDir, name)
		if !strings.Contains(logText, path+"[0]:") {
			t.Errorf("log output missing a per-file line for %s:\n%s", name, logText)
		}
	}
	if !strings.Contains(logText, "batch decode of "+inDir+" complete: 3 file(s)") {
		t.Errorf("log output missing the batch summary line:\n%s", logText)
	}
	if strings.Contains(logText, "corrupt=1") {
		t.Errorf("sample logs should decode cleanly, found a corrupt-frame count:\n%s", logText)
	}
}
