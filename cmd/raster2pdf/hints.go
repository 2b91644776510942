package main

import (
	"context"
	"errors"

	raster2pdf "github.com/alnah/go-raster2pdf"
	"github.com/alnah/go-raster2pdf/internal/config"
	"github.com/alnah/go-raster2pdf/internal/fileutil"
	"github.com/alnah/go-raster2pdf/internal/hints"
)

// hintedError carries a hint computed where more context was available.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() }
func (e *hintedError) Unwrap() error { return e.err }

// hintFor returns an actionable suggestion for err, or "".
func hintFor(err error, selector string) string {
	var (
		hinted   *hintedError
		notFound *config.NotFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &hinted):
		return hinted.hint
	case errors.Is(err, raster2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, raster2pdf.ErrElementNotFound):
		if selector == "" {
			selector = raster2pdf.DefaultSelector
		}
		return hints.ForElementNotFound(selector)
	case errors.As(err, &notFound):
		return hints.ForConfigNotFound(notFound.Tried)
	case errors.Is(err, raster2pdf.ErrWritePDF):
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrUnsupportedInput):
		return hints.ForUnsupportedInput(fileutil.SupportedExtensions())
	}
	return ""
}
