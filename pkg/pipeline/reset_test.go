package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResetWorkingDirRemovesContents(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "kv_store_text_chunks.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "vdb", "entities"), 0o755); err != nil {
		t.Fatalf("seed subdir: %v", err)
	}

	result := resetWorkingDir(dir)
	if result.Severity != OutcomeOK {
		t.Fatalf("result = %+v, want ok", result)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d entries left after reset", len(entries))
	}
}

func TestResetWorkingDirCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rag_storage")

	result := resetWorkingDir(dir)
	if result.Severity != OutcomeOK {
		t.Fatalf("result = %+v, want ok", result)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", dir)
	}
}

func TestResetWorkingDirPathIsAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag_storage")
	if err := os.WriteFile(path, []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	result := resetWorkingDir(path)
	if result.Severity != OutcomeWarning {
		t.Fatalf("result = %+v, want warning", result)
	}
}
