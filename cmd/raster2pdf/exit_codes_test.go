package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	raster2pdf "github.com/alnah/go-raster2pdf"
	"github.com/alnah/go-raster2pdf/internal/config"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitGeneral},
		{"invalid page format", raster2pdf.ErrInvalidPageFormat, ExitUsage},
		{"margins exhaust page", fmt.Errorf("wrapped: %w", raster2pdf.ErrMarginsExhaustPage), ExitUsage},
		{"config not found", &config.NotFoundError{Name: "x"}, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field range", config.ErrFieldRange, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"invalid flags", ErrInvalidFlags, ExitUsage},
		{"worker count", ErrInvalidWorkerCount, ExitUsage},
		{"unsupported input", ErrUnsupportedInput, ExitUsage},
		{"not exist", os.ErrNotExist, ExitIO},
		{"permission", fmt.Errorf("open: %w", os.ErrPermission), ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write pdf", raster2pdf.ErrWritePDF, ExitIO},
		{"capture", raster2pdf.ErrElementNotFound, ExitBrowser},
		{"browser connect", raster2pdf.ErrBrowserConnect, ExitBrowser},
		{"deadline", context.DeadlineExceeded, ExitBrowser},
		{"reported", &reportedError{err: raster2pdf.ErrPageLoad}, ExitBrowser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
