package raster2pdf

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// PageSlice is the band of the source raster assigned to one page. It spans
// the full raster width.
type PageSlice struct {
	PageIndex     int // 1-based
	SourceYOffset int
	PixelHeight   int
	Image         image.Image
}

// SliceBounds returns the row offset and row count of page pageIndex
// (1-based) for a raster of rasterHeight rows and a per-page budget. Slices
// are contiguous and the last one holds the remainder.
func SliceBounds(rasterHeight, budget, pageIndex int) (offset, height int, err error) {
	if rasterHeight <= 0 {
		return 0, 0, ErrEmptyRaster
	}
	if budget <= 0 {
		return 0, 0, fmt.Errorf("%w: page budget %d", ErrConfiguration, budget)
	}
	if pageIndex < 1 {
		return 0, 0, fmt.Errorf("%w: %d", ErrPageOutOfRange, pageIndex)
	}

	offset = budget * (pageIndex - 1)
	remaining := rasterHeight - offset
	if remaining <= 0 {
		return 0, 0, fmt.Errorf("%w: %d (raster has %d rows, budget %d)", ErrPageOutOfRange, pageIndex, rasterHeight, budget)
	}
	return offset, min(remaining, budget), nil
}

// Slice extracts page pageIndex from r. When the whole raster fits on one
// page the source image is returned as is.
func Slice(r *Raster, f Fit, pageIndex int) (PageSlice, error) {
	if r == nil {
		return PageSlice{}, ErrEmptyRaster
	}
	offset, height, err := SliceBounds(r.Height(), f.PageBudget, pageIndex)
	if err != nil {
		return PageSlice{}, err
	}

	s := PageSlice{PageIndex: pageIndex, SourceYOffset: offset, PixelHeight: height}
	if offset == 0 && height == r.Height() {
		s.Image = r.Image()
		return s, nil
	}

	b := r.Image().Bounds()
	rect := image.Rect(b.Min.X, b.Min.Y+offset, b.Max.X, b.Min.Y+offset+height)
	s.Image = imaging.Crop(r.Image(), rect)
	return s, nil
}
