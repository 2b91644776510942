// Package fileutil holds file and path helpers shared by the library and CLI.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extension errors.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// Kind classifies a conversion input.
type Kind int

// Input kinds.
const (
	KindUnknown Kind = iota
	KindImage
	KindHTML
	KindMarkdown
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindHTML:
		return "html"
	case KindMarkdown:
		return "markdown"
	case KindURL:
		return "url"
	}
	return "unknown"
}

var kindByExt = map[string]Kind{
	".png":      KindImage,
	".jpg":      KindImage,
	".jpeg":     KindImage,
	".gif":      KindImage,
	".bmp":      KindImage,
	".tif":      KindImage,
	".tiff":     KindImage,
	".html":     KindHTML,
	".htm":      KindHTML,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
}

// SupportedExtensions lists the file extensions Classify recognizes, sorted.
func SupportedExtensions() []string {
	return []string{".bmp", ".gif", ".htm", ".html", ".jpeg", ".jpg", ".markdown", ".md", ".png", ".tif", ".tiff"}
}

// Classify returns the kind of input s: a URL, or a file judged by its
// extension (case-insensitive).
func Classify(s string) Kind {
	if IsURL(s) {
		return KindURL
	}
	return kindByExt[strings.ToLower(filepath.Ext(s))]
}

// WriteTempFile writes content to a new temp file with the given extension.
// The caller must run cleanup to remove it.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	f, err := os.CreateTemp("", "raster2pdf-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}
	return path, cleanup, nil
}

// ValidateExtension rejects empty extensions and ones that could escape the
// temp directory.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath reports whether s contains a path separator, as opposed to a
// bare config name like "report".
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
