package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	raster2pdf "github.com/alnah/go-raster2pdf"
	"github.com/alnah/go-raster2pdf/internal/fileutil"
)

// Sentinel errors for input discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrUnsupportedInput   = errors.New("unsupported input")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToConvert is a single input and the PDF it produces.
type FileToConvert struct {
	InputPath  string // file path or URL
	OutputPath string
	Kind       fileutil.Kind
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// discoverFiles expands inputs into conversions. Directories are walked
// recursively for supported files; URLs and files are taken as given.
func discoverFiles(inputs []string, outputDir string) ([]FileToConvert, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	var files []FileToConvert
	for _, in := range inputs {
		if fileutil.IsURL(in) {
			files = append(files, FileToConvert{
				InputPath:  in,
				OutputPath: resolveOutputPath(urlFileName(in), outputDir, ""),
				Kind:       fileutil.KindURL,
			})
			continue
		}

		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			kind := fileutil.Classify(in)
			if kind == fileutil.KindUnknown {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, in)
			}
			files = append(files, FileToConvert{
				InputPath:  in,
				OutputPath: resolveOutputPath(in, outputDir, ""),
				Kind:       kind,
			})
			continue
		}

		found, err := walkDir(in, outputDir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func walkDir(root, outputDir string) ([]FileToConvert, error) {
	var files []FileToConvert
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		kind := fileutil.Classify(path)
		if kind == fileutil.KindUnknown {
			return nil
		}
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, outputDir, root),
			Kind:       kind,
		})
		return nil
	})
	return files, err
}

// resolveOutputPath determines the PDF path for an input. Without an output
// directory the PDF sits next to the input; an output ending in .pdf is used
// as is; inputs found under baseInputDir keep their relative layout.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}

	if strings.HasSuffix(outputDir, ".pdf") {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base+".pdf")
		}
	}

	return filepath.Join(outputDir, base+".pdf")
}

// urlFileName turns a URL into a file name: host and path joined by dashes.
func urlFileName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "page"
	}
	name := strings.Trim(unsafeNameChars.ReplaceAllString(u.Host+u.Path, "-"), "-.")
	if name == "" {
		return "page"
	}
	return name + ".html"
}

// validateWorkers checks that the worker count is within pool bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > raster2pdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, raster2pdf.MaxPoolSize)
	}
	return nil
}
