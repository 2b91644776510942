package raster2pdf

// PxPerMM is the number of CSS pixels in one millimetre (96 dpi / 25.4 mm).
// Every pixel/millimetre conversion in the package goes through it.
const PxPerMM = 96 / 25.4

// ToPixels converts a length in millimetres to CSS pixels.
func ToPixels(mm float64) float64 {
	return mm * PxPerMM
}

// ToMM converts a length in CSS pixels to millimetres.
func ToMM(px float64) float64 {
	return px / PxPerMM
}
