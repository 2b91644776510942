package raster2pdf

import "fmt"

// composePage encodes one slice and places it on its page. Pages after the
// first are appended before placement, so slices must arrive in page order.
func composePage(doc DocumentWriter, enc imageEncoder, s PageSlice, f Fit, g Geometry, encoding ImageEncoding) (Placement, error) {
	if s.Image == nil || s.Image.Bounds().Empty() || s.PixelHeight <= 0 {
		return Placement{}, fmt.Errorf("%w: page %d has an empty slice", ErrEncoding, s.PageIndex)
	}

	img, err := enc.Encode(s.Image, encoding)
	if err != nil {
		return Placement{}, fmt.Errorf("page %d: %w", s.PageIndex, withCategory(err, ErrEncoding))
	}

	b := s.Image.Bounds()
	p := Placement{
		PageIndex: s.PageIndex,
		X:         g.Margin.Left,
		Y:         g.Margin.Top,
		Width:     float64(b.Dx()) / f.scale(),
		Height:    float64(b.Dy()) / f.scale(),
	}

	if s.PageIndex > 1 {
		if err := doc.AddPage(); err != nil {
			return Placement{}, withCategory(err, ErrDocument)
		}
	}
	if err := doc.PlaceImage(img, p); err != nil {
		return Placement{}, withCategory(err, ErrDocument)
	}
	return p, nil
}
