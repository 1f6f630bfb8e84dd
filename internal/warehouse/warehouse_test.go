package warehouse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndExists(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if w.Exists("guide.pdf") {
		t.Error("Exists before Save")
	}
	if err := w.Save("guide.pdf", []byte("content")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !w.Exists("guide.pdf") {
		t.Error("Exists after Save")
	}
	data, err := os.ReadFile(filepath.Join(w.Root(), "guide.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content" {
		t.Errorf("stored content %q", data)
	}
}

func TestSave_noTempLeftovers(t *testing.T) {
	w, _ := New(t.TempDir())
	if err := w.Save("a.docx", []byte("x")); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(w.Root())
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestSave_rejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	w, _ := New(filepath.Join(dir, "wh"))
	if err := w.Save("../escape.pdf", []byte("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// The name is flattened to its base inside the root.
	if _, err := os.Stat(filepath.Join(dir, "escape.pdf")); !os.IsNotExist(err) {
		t.Error("file escaped the warehouse root")
	}
	if !w.Exists("escape.pdf") {
		t.Error("flattened file should exist in root")
	}
}

func TestCount(t *testing.T) {
	w, _ := New(t.TempDir())
	n, err := w.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Count=%d", n)
	}
	_ = w.Save("a.pdf", []byte("1"))
	_ = w.Save("b.docx", []byte("2"))
	n, _ = w.Count()
	if n != 2 {
		t.Errorf("Count=%d", n)
	}
}
