package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestReplaceFileCreatesParentsAndSkipsIdentical(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "a", "b", "dst.bin")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed, err := ReplaceFile(src, dst)
	if err != nil {
		t.Fatalf("ReplaceFile returned error: %v", err)
	}
	if !changed {
		t.Fatal("expected first copy to report a change")
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(dst, old, old); err != nil {
		t.Fatal(err)
	}

	changed, err = ReplaceFile(src, dst)
	if err != nil {
		t.Fatalf("ReplaceFile returned error: %v", err)
	}
	if changed {
		t.Fatal("identical content should not be rewritten")
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Fatalf("identical destination was touched: %v", info.ModTime())
	}

	if err := os.WriteFile(src, []byte("new data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if changed, err = ReplaceFile(src, dst); err != nil || !changed {
		t.Fatalf("expected replacement, changed=%v err=%v", changed, err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "new data" {
		t.Fatalf("unexpected content %q", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(dst))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestReplaceFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReplaceFile(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(filepath.Join(dir, "dst")); !os.IsNotExist(err) {
		t.Fatalf("destination should not exist, stat err=%v", err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.xml")
	if err := WriteFileAtomic(path, []byte("<x/>"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic returned error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<x/>" {
		t.Fatalf("unexpected content %q", got)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("unexpected mode %o", info.Mode().Perm())
	}
}
