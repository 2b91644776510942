// Package raster2pdf lays a tall raster (a screenshot of a web page, a
// rendered report, a long scanned image) out on fixed-size PDF pages.
//
// # Quick Start
//
// Convert an image already on disk:
//
//	conv := raster2pdf.NewConverter()
//	defer conv.Close()
//
//	r, err := raster2pdf.LoadRaster("report.png", raster2pdf.ResolutionNormal)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := conv.Convert(ctx, raster2pdf.Input{
//	    Raster:  r,
//	    Options: &raster2pdf.Options{Filename: "report.pdf"},
//	})
//
// Or capture a page in headless Chrome first:
//
//	doc, err := conv.Convert(ctx, raster2pdf.Input{
//	    Target:  &raster2pdf.CaptureTarget{URL: "https://example.com", Selector: "main"},
//	    Options: &raster2pdf.Options{Method: raster2pdf.MethodBuild},
//	})
//
// # Layout
//
// A conversion resolves page geometry from format, orientation and margin,
// then fits the raster to the printable width. Content wider than the
// printable area is shrunk; narrower content keeps its native size. The
// printable height, converted to raster rows, is the per-page budget:
//
//	budget = floor(printableHeightPX * densityMultiplier * fitFactor)
//	pages  = ceil(rasterHeight / budget)
//
// Page i receives rows [(i-1)*budget, min(i*budget, height)), placed at the
// top-left margin corner. Lengths are converted at 96 CSS pixels per inch
// (PxPerMM).
//
// # Output
//
// Options.Method selects what happens to the finished document:
// MethodSave writes Options.Filename, MethodOpen writes a temp file and
// opens the system viewer, MethodBuild only returns it.
//
// # Errors
//
// Every error wraps one of ErrConfiguration, ErrCapture, ErrEncoding or
// ErrDocument. Configuration errors are reported before any capture starts.
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to manage multiple browsers:
//
//	pool := raster2pdf.NewConverterPool(raster2pdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv := pool.Acquire()
//	defer pool.Release(conv)
package raster2pdf
