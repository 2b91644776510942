package raster2pdf

import (
	"fmt"
	"math"
)

// budgetEpsilon absorbs float error so that budgets that are integral on
// paper do not floor to the integer below.
const budgetEpsilon = 1e-9

// maxPageBudget caps the row budget so that huge densities or page formats
// never overflow the int conversion. It exceeds any decodable raster height.
const maxPageBudget = math.MaxInt32

// Fit describes how a raster is distributed over pages.
type Fit struct {
	// HorizontalFitFactor is >= 1. Content wider than the printable width
	// is shrunk by this factor; narrower content is never stretched.
	HorizontalFitFactor float64

	// PageBudget is the number of raster rows assigned to a full page.
	PageBudget int

	// PageCount is the number of output pages, at least 1.
	PageCount int

	// DensityMultiplier is copied from the raster.
	DensityMultiplier float64
}

// CalculateFit computes the fit factor, per-page row budget and page count
// for a raster on the printable area of g.
//
// The budget is the printable height converted back to raster rows,
// inflated by the density multiplier and the fit factor, then floored so
// that a full page never exceeds the printable height once placed.
func CalculateFit(r *Raster, g Geometry) (Fit, error) {
	if r == nil {
		return Fit{}, ErrEmptyRaster
	}
	if g.PrintableWidthPX <= 0 || g.PrintableHeightPX <= 0 {
		return Fit{}, fmt.Errorf("%w: printable area %.2fx%.2f px", ErrMarginsExhaustPage, g.PrintableWidthPX, g.PrintableHeightPX)
	}

	factor := 1.0
	if native := r.NativeWidth(); native > g.PrintableWidthPX {
		factor = native / g.PrintableWidthPX
	}

	exact := g.PrintableHeightPX * r.DensityMultiplier() * factor
	budget := maxPageBudget
	if exact < maxPageBudget {
		budget = max(1, int(math.Floor(exact+budgetEpsilon)))
	}

	pages := 1
	if h := r.Height(); h > budget {
		pages = (h + budget - 1) / budget
	}

	return Fit{
		HorizontalFitFactor: factor,
		PageBudget:          budget,
		PageCount:           pages,
		DensityMultiplier:   r.DensityMultiplier(),
	}, nil
}

// scale is the number of raster pixels per millimetre on the page.
func (f Fit) scale() float64 {
	return f.DensityMultiplier * PxPerMM * f.HorizontalFitFactor
}
