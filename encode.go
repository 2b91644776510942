package raster2pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// EncodedImage is a page slice ready for placement.
type EncodedImage struct {
	Data     []byte
	MimeType string
	Width    int // pixels
	Height   int // pixels
}

// imageEncoder abstracts slice encoding so tests can inject failures.
type imageEncoder interface {
	Encode(img image.Image, enc ImageEncoding) (EncodedImage, error)
}

// imagingEncoder encodes with disintegration/imaging.
type imagingEncoder struct{}

var _ imageEncoder = imagingEncoder{}

// Encode writes img as JPEG (quality = round(ratio*100)) or PNG.
func (imagingEncoder) Encode(img image.Image, enc ImageEncoding) (EncodedImage, error) {
	if img == nil || img.Bounds().Empty() {
		return EncodedImage{}, fmt.Errorf("%w: empty slice", ErrEncoding)
	}

	var (
		format imaging.Format
		opts   []imaging.EncodeOption
	)
	switch enc.MimeType {
	case MimeJPEG:
		format = imaging.JPEG
		opts = append(opts, imaging.JPEGQuality(jpegQuality(enc.QualityRatio)))
	case MimePNG:
		format = imaging.PNG
		opts = append(opts, imaging.PNGCompressionLevel(png.DefaultCompression))
	default:
		return EncodedImage{}, fmt.Errorf("%w: %q", ErrInvalidMimeType, enc.MimeType)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return EncodedImage{}, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	b := img.Bounds()
	return EncodedImage{
		Data:     buf.Bytes(),
		MimeType: enc.MimeType,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// jpegQuality maps a (0,1] ratio onto the 1-100 JPEG scale.
func jpegQuality(ratio float64) int {
	q := int(math.Round(ratio * 100))
	return max(1, min(100, q))
}
