package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("Expected directory at %s", dir)
	}

	// Existing directory is fine.
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir on existing directory failed: %v", err)
	}
}

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "jpg"},
		{"photo.JPEG", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"/path/to/image.PNG", "png"},
	}

	for _, tt := range tests {
		if got := GetFileExtension(tt.filename); got != tt.want {
			t.Errorf("GetFileExtension(%q) = %q, expected %q", tt.filename, got, tt.want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"photo.jpg", true},
		{"photo.webp", true},
		{"photo.GIF", true},
		{"document.pdf", false},
		{"script.go", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := IsImageFile(tt.filename); got != tt.want {
			t.Errorf("IsImageFile(%q) = %v, expected %v", tt.filename, got, tt.want)
		}
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		dir    string
		prefix string
		suffix string
		format string
		want   string
	}{
		{"basic", "photo.jpg", "out", "", "_cropped", "jpg", filepath.Join("out", "photo_cropped.jpg")},
		{"format change", "photo.png", "out", "", "", "webp", filepath.Join("out", "photo.webp")},
		{"prefix", "/tmp/in/photo.jpg", "out", "thumb_", "", "jpg", filepath.Join("out", "thumb_photo.jpg")},
		{"inherit format", "photo.png", "out", "", "_x", "", filepath.Join("out", "photo_x.png")},
		{"no extension", "photo", "out", "", "", "", filepath.Join("out", "photo.jpg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateOutputFilename(tt.input, tt.dir, tt.prefix, tt.suffix, tt.format)
			if got != tt.want {
				t.Errorf("GenerateOutputFilename = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a.jpg", "b.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "c.webp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := ListImageFiles(dir)
	if err != nil {
		t.Fatalf("ListImageFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("Expected 3 image files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if !IsImageFile(f) {
			t.Errorf("ListImageFiles returned non-image %s", f)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) {
		t.Error("Expected FileExists true for a regular file")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("Expected FileExists false for a missing file")
	}
	if FileExists(dir) {
		t.Error("Expected FileExists false for a directory")
	}
}
