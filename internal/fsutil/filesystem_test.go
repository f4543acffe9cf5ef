package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem(t *testing.T) {
	osfs := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "plots", "run")

	if err := osfs.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if !osfs.Exists(dir) {
		t.Fatal("expected directory to exist")
	}

	name := filepath.Join(dir, "a.png")
	if err := osfs.WriteFile(name, []byte("png"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	w, err := osfs.Create(filepath.Join(dir, "b.html"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("<html>")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := osfs.ReadFile(name)
	if err != nil || string(data) != "png" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
	if osfs.Exists(filepath.Join(dir, "missing")) {
		t.Error("expected missing file to not exist")
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("/out/test.txt", []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := mfs.ReadFile("/out/./test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected %q, got %q", "hello", data)
	}

	// Returned data is a copy
	data[0] = 'j'
	again, _ := mfs.ReadFile("/out/test.txt")
	if string(again) != "hello" {
		t.Errorf("stored data modified through returned slice: %q", again)
	}

	_, err = mfs.ReadFile("/out/missing.txt")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("created content")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	before, _ := mfs.ReadFile("/created.txt")
	if len(before) != 0 {
		t.Errorf("content visible before Close: %q", before)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := mfs.ReadFile("/created.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "created content" {
		t.Errorf("expected 'created content', got %q", data)
	}
}

func TestMemoryFileSystem_DirsAndFiles(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/plots/2026/run", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, d := range []string{"/plots", "/plots/2026", "/plots/2026/run"} {
		if !mfs.Exists(d) {
			t.Errorf("expected %s to exist", d)
		}
	}

	_ = mfs.WriteFile("/plots/2026/run/b.png", nil, 0644)
	_ = mfs.WriteFile("/plots/2026/run/a.png", nil, 0644)
	_ = mfs.WriteFile("/other/c.png", nil, 0644)

	got := mfs.Files("/plots")
	want := []string{"/plots/2026/run/a.png", "/plots/2026/run/b.png"}
	if len(got) != len(want) {
		t.Fatalf("Files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Files[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
