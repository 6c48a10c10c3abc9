package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	if a == b {
		t.Fatal("two UUIDs should differ")
	}
	if !IsUUID(a) {
		t.Errorf("%q is not a valid UUID", a)
	}
	if IsUUID("not-a-uuid") {
		t.Error("garbage accepted as UUID")
	}
}

func TestTempPath(t *testing.T) {
	p := TempPath("/tmp/x", "ref", ".wav")
	if filepath.Dir(p) != "/tmp/x" {
		t.Errorf("dir = %s", filepath.Dir(p))
	}
	base := filepath.Base(p)
	if !strings.HasPrefix(base, "ref-") || !strings.HasSuffix(base, ".wav") {
		t.Errorf("unexpected name %s", base)
	}
}

func TestMoveAndRemoveFiles(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := MakeDir(nested); err != nil {
		t.Fatalf("MakeDir: %v", err)
	}

	src := filepath.Join(nested, "src.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "dst.txt")
	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}

	if err := RemoveFiles(dst, "", filepath.Join(dir, "never-existed")); err != nil {
		t.Errorf("RemoveFiles: %v", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
}
