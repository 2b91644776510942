package raster2pdf

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the package wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	ErrConfiguration = errors.New("invalid configuration")
	ErrCapture       = errors.New("raster capture failed")
	ErrEncoding      = errors.New("page encoding failed")
	ErrDocument      = errors.New("document writer failed")
)

// Configuration errors.
var (
	ErrInvalidPageFormat  = fmt.Errorf("%w: invalid page format", ErrConfiguration)
	ErrInvalidOrientation = fmt.Errorf("%w: invalid orientation", ErrConfiguration)
	ErrInvalidMargin      = fmt.Errorf("%w: invalid margin", ErrConfiguration)
	ErrMarginsExhaustPage = fmt.Errorf("%w: margins leave no printable area", ErrConfiguration)
	ErrInvalidResolution  = fmt.Errorf("%w: invalid resolution", ErrConfiguration)
	ErrInvalidDensity     = fmt.Errorf("%w: invalid density multiplier", ErrConfiguration)
	ErrInvalidMimeType    = fmt.Errorf("%w: unsupported image mime type", ErrConfiguration)
	ErrInvalidQuality     = fmt.Errorf("%w: invalid quality ratio", ErrConfiguration)
	ErrInvalidMethod      = fmt.Errorf("%w: invalid output method", ErrConfiguration)
	ErrPageOutOfRange     = fmt.Errorf("%w: page index out of range", ErrConfiguration)
)

// Capture errors.
var (
	ErrNoCaptureSource = fmt.Errorf("%w: no capture source", ErrCapture)
	ErrNoCapturer      = fmt.Errorf("%w: no capturer configured", ErrCapture)
	ErrEmptyRaster     = fmt.Errorf("%w: raster has zero area", ErrCapture)
	ErrRasterTooLarge  = fmt.Errorf("%w: raster exceeds pixel limit", ErrCapture)
	ErrElementNotFound = fmt.Errorf("%w: element not found", ErrCapture)
	ErrBrowserConnect  = fmt.Errorf("%w: failed to connect to browser", ErrCapture)
	ErrPageLoad        = fmt.Errorf("%w: failed to load page", ErrCapture)
)

// Output errors.
var (
	ErrWritePDF = fmt.Errorf("%w: failed to write PDF", ErrDocument)
	ErrOpenPDF  = fmt.Errorf("%w: failed to open PDF viewer", ErrDocument)
)

// withCategory returns err unchanged when it already belongs to a category,
// otherwise wraps it in category.
func withCategory(err, category error) error {
	for _, c := range []error{ErrConfiguration, ErrCapture, ErrEncoding, ErrDocument} {
		if errors.Is(err, c) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", category, err)
}
