package fileutil_test

// TestWriteTempFile_CreateTempError changes TMPDIR and cannot run in parallel.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-raster2pdf/internal/fileutil"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  fileutil.Kind
	}{
		{"shot.png", fileutil.KindImage},
		{"SHOT.JPG", fileutil.KindImage},
		{"scan.tiff", fileutil.KindImage},
		{"page.html", fileutil.KindHTML},
		{"page.htm", fileutil.KindHTML},
		{"notes.md", fileutil.KindMarkdown},
		{"notes.markdown", fileutil.KindMarkdown},
		{"https://example.com/a.png", fileutil.KindURL},
		{"http://example.com", fileutil.KindURL},
		{"archive.zip", fileutil.KindUnknown},
		{"noext", fileutil.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.Classify(tt.input); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSupportedExtensions_AllClassified(t *testing.T) {
	t.Parallel()

	for _, ext := range fileutil.SupportedExtensions() {
		if fileutil.Classify("x"+ext) == fileutil.KindUnknown {
			t.Errorf("extension %q listed but not classified", ext)
		}
	}
}

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{"valid", "html", nil},
		{"empty", "", fileutil.ErrExtensionEmpty},
		{"slash", "../x", fileutil.ErrExtensionPathTraversal},
		{"backslash", `a\b`, fileutil.ErrExtensionPathTraversal},
		{"null byte", "ht\x00ml", fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := fileutil.ValidateExtension(tt.extension); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<p>x</p>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() unexpected error: %v", err)
	}

	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path %q should end with .html", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "raster2pdf-") {
		t.Errorf("path %q should use the raster2pdf- prefix", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(data) != "<p>x</p>" {
		t.Errorf("content = %q", data)
	}

	cleanup()
	if fileutil.FileExists(path) {
		t.Error("cleanup should remove the file")
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	if _, _, err := fileutil.WriteTempFile("x", ""); !errors.Is(err, fileutil.ErrExtensionEmpty) {
		t.Errorf("WriteTempFile() error = %v, want ErrExtensionEmpty", err)
	}
}

func TestWriteTempFile_CreateTempError(t *testing.T) {
	t.Setenv("TMPDIR", filepath.Join(t.TempDir(), "missing"))

	if _, _, err := fileutil.WriteTempFile("x", "html"); err == nil {
		t.Error("WriteTempFile() should fail when TMPDIR does not exist")
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists(file) = false, want true")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(dir) = true, want false")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists(missing) = true, want false")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"report", false},
		{"./report.yaml", true},
		{"conf/report.yaml", true},
		{`C:\conf\report.yaml`, true},
	}
	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.in); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
