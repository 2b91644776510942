package raster2pdf

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
)

// Raster is an immutable pixel buffer captured at a known density
// multiplier: DensityMultiplier raster pixels per CSS pixel of the content.
type Raster struct {
	img     image.Image
	density float64
}

// NewRaster wraps img. The image must not be modified afterwards.
func NewRaster(img image.Image, densityMultiplier float64) (*Raster, error) {
	if !validDensity(densityMultiplier) {
		return nil, fmt.Errorf("%w: %v (must be in (0, %g])", ErrInvalidDensity, densityMultiplier, MaxResolution)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyRaster
	}
	return &Raster{img: img, density: densityMultiplier}, nil
}

// MaxRasterPixels bounds the area of decoded and captured rasters. Image
// headers are checked against it before any pixel is decoded.
const MaxRasterPixels = 250_000_000

// LoadRaster decodes an image file (PNG, JPEG, GIF, BMP or TIFF), applying
// its EXIF orientation.
func LoadRaster(path string, densityMultiplier float64) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCapture, path, err)
	}
	defer f.Close()

	r, err := decodeRaster(f, densityMultiplier, MaxRasterPixels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// DecodeRaster decodes an image stream, applying its EXIF orientation.
func DecodeRaster(r io.Reader, densityMultiplier float64) (*Raster, error) {
	return decodeRaster(r, densityMultiplier, MaxRasterPixels)
}

func decodeRaster(r io.Reader, densityMultiplier float64, maxPixels int) (*Raster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading image: %v", ErrCapture, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrCapture, err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrCapture, err)
	}
	return NewRaster(img, densityMultiplier)
}

// checkPixels rejects a w x h raster larger than maxPixels.
func checkPixels(w, h, maxPixels int) error {
	if w > 0 && h > maxPixels/w {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrRasterTooLarge, w, h, maxPixels)
	}
	return nil
}

// Image returns the underlying image.
func (r *Raster) Image() image.Image { return r.img }

// Width in raster pixels.
func (r *Raster) Width() int { return r.img.Bounds().Dx() }

// Height in raster pixels.
func (r *Raster) Height() int { return r.img.Bounds().Dy() }

// DensityMultiplier is the number of raster pixels per CSS pixel.
func (r *Raster) DensityMultiplier() float64 { return r.density }

// NativeWidth is the width in CSS pixels.
func (r *Raster) NativeWidth() float64 { return float64(r.Width()) / r.density }

// NativeHeight is the height in CSS pixels.
func (r *Raster) NativeHeight() float64 { return float64(r.Height()) / r.density }
