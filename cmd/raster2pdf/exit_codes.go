package main

import (
	"context"
	"errors"
	"os"

	raster2pdf "github.com/alnah/go-raster2pdf"
	"github.com/alnah/go-raster2pdf/internal/config"
)

// Exit codes for the raster2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or options
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser or capture failure
)

// exitCodeFor maps an error to an exit code. It relies on errors.Is, so
// callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, raster2pdf.ErrConfiguration) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrFieldRange) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidFlags) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedInput) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, raster2pdf.ErrWritePDF) {
		return ExitIO
	}

	// Browser/capture errors (exit 4)
	if errors.Is(err, raster2pdf.ErrCapture) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitBrowser
	}

	return ExitGeneral
}
