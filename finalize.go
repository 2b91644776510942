package raster2pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// finalize applies the output method to a built document. The document is
// identical whatever the method; only its destination differs.
func (c *Converter) finalize(doc *Document, opts *Options) (*Document, error) {
	switch opts.Method {
	case MethodBuild:
		return doc, nil

	case MethodSave:
		name := opts.Filename
		if name == "" {
			name = strconv.FormatInt(c.now().UnixMilli(), 10) + ".pdf"
		} else if filepath.Ext(name) == "" {
			name += ".pdf"
		}
		if err := writeFile(doc, name); err != nil {
			return nil, err
		}
		doc.path = name
		c.logger.Debug("document saved", "path", name, "pages", doc.PageCount())
		return doc, nil

	case MethodOpen:
		f, err := os.CreateTemp("", "raster2pdf-*.pdf")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
		name := f.Name()
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
		if err := writeFile(doc, name); err != nil {
			_ = os.Remove(name)
			return nil, err
		}
		doc.path = name
		if err := c.open(name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOpenPDF, err)
		}
		c.logger.Debug("document opened", "path", name, "pages", doc.PageCount())
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, opts.Method)
}

// writeFile serializes doc to path, creating parent directories.
func writeFile(doc *Document, path string) error {
	data, err := doc.Bytes()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
	}
	// #nosec G306 -- PDF output files are intended to be readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return nil
}
