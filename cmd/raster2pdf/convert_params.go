package main

import (
	"fmt"
	"os"

	raster2pdf "github.com/alnah/go-raster2pdf"
	"github.com/alnah/go-raster2pdf/internal/config"
	"github.com/alnah/go-raster2pdf/internal/hints"
)

// captureParams groups browser settings shared by every input of a batch.
type captureParams struct {
	selector    string
	windowWidth int
	css         string
}

// mergePageFlags merges page flags into config. CLI values override config
// values.
func mergePageFlags(f pageFlags, cfg *config.Config) {
	if f.format != "" {
		cfg.Page.Format = f.format
	}
	if f.orientation != "" {
		cfg.Page.Orientation = f.orientation
	}
	if f.margin != "" {
		cfg.Page.Margin = f.margin
	}
}

// mergeCanvasFlags merges encoding flags into config.
func mergeCanvasFlags(f canvasFlags, cfg *config.Config) {
	if f.mimeType != "" {
		cfg.Canvas.MimeType = f.mimeType
	}
	if f.quality != 0 {
		cfg.Canvas.QualityRatio = f.quality
	}
}

// mergeCaptureFlags merges browser flags into config.
func mergeCaptureFlags(f captureFlags, cfg *config.Config) {
	if f.selector != "" {
		cfg.Capture.Selector = f.selector
	}
	if f.windowWidth != 0 {
		cfg.Capture.WindowWidth = f.windowWidth
	}
	if f.timeout != "" {
		cfg.Capture.Timeout = f.timeout
	}
}

// mergeConvertFlags merges every convert flag into config.
func mergeConvertFlags(f *convertFlags, cfg *config.Config) {
	mergePageFlags(f.page, cfg)
	mergeCanvasFlags(f.canvas, cfg)
	mergeCaptureFlags(f.capture, cfg)
	if f.resolution != "" {
		cfg.Resolution = f.resolution
	}
	if f.method != "" {
		cfg.Output.Method = f.method
	}
	if f.output != "" {
		cfg.Output.DefaultDir = f.output
	}
}

// buildOptions parses the string values of cfg into conversion options.
// Empty values keep library defaults.
func buildOptions(cfg *config.Config) (*raster2pdf.Options, error) {
	opts := raster2pdf.DefaultOptions()

	if cfg.Page.Format != "" {
		f, err := raster2pdf.ParsePageFormat(cfg.Page.Format)
		if err != nil {
			return nil, err
		}
		opts.Page.Format = f
	}
	if cfg.Page.Orientation != "" {
		o, err := raster2pdf.ParseOrientation(cfg.Page.Orientation)
		if err != nil {
			return nil, err
		}
		opts.Page.Orientation = o
	}
	if cfg.Page.Margin != "" {
		m, err := raster2pdf.ParseMargin(cfg.Page.Margin)
		if err != nil {
			return nil, err
		}
		opts.Page.Margin = m
	}
	if cfg.Resolution != "" {
		r, err := raster2pdf.ParseResolution(cfg.Resolution)
		if err != nil {
			return nil, err
		}
		opts.Resolution = r
	}
	if cfg.Canvas.MimeType != "" {
		opts.Canvas.MimeType = cfg.Canvas.MimeType
	}
	if cfg.Canvas.QualityRatio != 0 {
		opts.Canvas.QualityRatio = cfg.Canvas.QualityRatio
	}
	if cfg.Output.Method != "" {
		m, err := raster2pdf.ParseMethod(cfg.Output.Method)
		if err != nil {
			return nil, err
		}
		opts.Method = m
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	// Fail before any capture when margins exhaust the page.
	if _, err := raster2pdf.ResolveGeometry(opts.Page.Format, opts.Page.Orientation, opts.Page.Margin); err != nil {
		page := opts.Page.Format.Oriented(opts.Page.Orientation)
		return nil, &hintedError{err: err, hint: hints.ForMargins(page.Width, page.Height)}
	}
	return opts, nil
}

// buildCaptureParams resolves browser settings; the stylesheet path comes
// from the --css flag only.
func buildCaptureParams(cfg *config.Config, cssPath string) (captureParams, error) {
	p := captureParams{
		selector:    cfg.Capture.Selector,
		windowWidth: cfg.Capture.WindowWidth,
		css:         cfg.Capture.CSS,
	}
	if cssPath != "" {
		data, err := os.ReadFile(cssPath) // #nosec G304 -- user-provided path
		if err != nil {
			return captureParams{}, fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		p.css = string(data)
	}
	return p, nil
}
