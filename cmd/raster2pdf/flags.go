package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrInvalidFlags wraps pflag parse failures.
var ErrInvalidFlags = errors.New("invalid flags")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	format      string
	orientation string
	margin      string
}

// canvasFlags holds page image encoding flags.
type canvasFlags struct {
	mimeType string
	quality  float64
}

// captureFlags holds headless browser flags.
type captureFlags struct {
	selector    string
	windowWidth int
	css         string // path to a stylesheet
	timeout     string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	method     string
	resolution string
	density    float64 // raster pixels per CSS pixel of image inputs
	page       pageFlags
	canvas     canvasFlags
	capture    captureFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common      commonFlags
	addr        string
	maxUploadMB int
	workers     int
	resolution  string
	page        pageFlags
	canvas      canvasFlags
	capture     captureFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.format, "format", "p", "", "page format: a3, a4, a5, letter, legal, tabloid or WxH mm")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.StringVarP(&f.margin, "margin", "m", "", "margin: none, small, medium, large, mm or top,right,bottom,left")
}

// addCanvasFlags adds encoding flags to a FlagSet.
func addCanvasFlags(fs *flag.FlagSet, f *canvasFlags) {
	fs.StringVar(&f.mimeType, "mime-type", "", "page image type: image/jpeg, image/png")
	fs.Float64Var(&f.quality, "quality", 0, "JPEG quality ratio (0-1]")
}

// addCaptureFlags adds browser capture flags to a FlagSet.
func addCaptureFlags(fs *flag.FlagSet, f *captureFlags) {
	fs.StringVarP(&f.selector, "selector", "s", "", "element to capture (default body)")
	fs.IntVar(&f.windowWidth, "window-width", 0, "browser viewport width in CSS px (default 1440)")
	fs.StringVar(&f.css, "css", "", "stylesheet added to HTML and Markdown inputs")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "capture timeout, e.g. 30s, 2m")
}

// parseConvertFlags parses convert arguments and returns flags and
// positional arguments.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.method, "method", "", "output method: save, open, build")
	fs.StringVarP(&f.resolution, "resolution", "r", "", "capture resolution: low, normal, medium, high, extreme or a multiplier")
	fs.Float64Var(&f.density, "density", 0, "pixels per CSS pixel of image inputs (default: resolution)")
	addPageFlags(fs, &f.page)
	addCanvasFlags(fs, &f.canvas)
	addCaptureFlags(fs, &f.capture)

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve arguments.
func parseServeFlags(args []string) (*serveFlags, error) {
	f := &serveFlags{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :8080)")
	fs.IntVar(&f.maxUploadMB, "max-upload", 0, "maximum upload size in MB (default 32)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel conversions (0 = auto)")
	fs.StringVarP(&f.resolution, "resolution", "r", "", "default capture resolution")
	addPageFlags(fs, &f.page)
	addCanvasFlags(fs, &f.canvas)
	addCaptureFlags(fs, &f.capture)

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %v", ErrInvalidFlags, fs.Args())
	}
	return f, nil
}
