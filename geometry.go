package raster2pdf

import "fmt"

// Geometry is the resolved page layout of a conversion. Lengths suffixed MM
// are millimetres, PX are CSS pixels at PxPerMM.
type Geometry struct {
	Format      PageFormat // oriented format
	Orientation Orientation
	Margin      Edges

	PageWidthMM, PageHeightMM           float64
	PageWidthPX, PageHeightPX           float64
	PrintableWidthMM, PrintableHeightMM float64
	PrintableWidthPX, PrintableHeightPX float64
}

// ResolveGeometry computes page and printable dimensions for a format,
// orientation and margin. Horizontal margin is left+right, vertical margin
// top+bottom. Fails when a margin is negative or the margins consume a whole
// page axis.
func ResolveGeometry(format PageFormat, orientation Orientation, margin Margin) (Geometry, error) {
	if err := format.Validate(); err != nil {
		return Geometry{}, err
	}
	if _, err := ParseOrientation(string(orientation)); err != nil {
		return Geometry{}, err
	}
	if err := margin.Validate(); err != nil {
		return Geometry{}, err
	}

	page := format.Oriented(orientation)
	edges := margin.Edges()

	g := Geometry{
		Format:       page,
		Orientation:  orientation,
		Margin:       edges,
		PageWidthMM:  page.Width,
		PageHeightMM: page.Height,
		PageWidthPX:  ToPixels(page.Width),
		PageHeightPX: ToPixels(page.Height),
	}
	g.PrintableWidthMM = page.Width - (edges.Left + edges.Right)
	g.PrintableHeightMM = page.Height - (edges.Top + edges.Bottom)
	g.PrintableWidthPX = g.PageWidthPX - ToPixels(edges.Left+edges.Right)
	g.PrintableHeightPX = g.PageHeightPX - ToPixels(edges.Top+edges.Bottom)

	if g.PrintableWidthMM <= 0 || g.PrintableHeightMM <= 0 {
		return Geometry{}, fmt.Errorf("%w: margin %s on %.1fx%.1f mm leaves %.1fx%.1f mm",
			ErrMarginsExhaustPage, margin, page.Width, page.Height, g.PrintableWidthMM, g.PrintableHeightMM)
	}
	return g, nil
}
