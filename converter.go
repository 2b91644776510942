package raster2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-raster2pdf/internal/process"
)

// defaultTimeout bounds a capture when the context has no deadline.
const defaultTimeout = 30 * time.Second

// Option configures a Converter.
type Option func(*Converter)

type converterConfig struct {
	timeout time.Duration
}

// WithTimeout sets the capture timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("raster2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the structured logger. Conversions log at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCapturer replaces the headless Chrome capturer.
func WithCapturer(cp Capturer) Option {
	return func(c *Converter) {
		c.capturer = cp
	}
}

// WithDocumentFactory replaces the fpdf document writer.
func WithDocumentFactory(f DocumentFactory) Option {
	return func(c *Converter) {
		c.newDocument = f
	}
}

// WithOpener replaces the system viewer used by MethodOpen.
func WithOpener(open func(path string) error) Option {
	return func(c *Converter) {
		c.open = open
	}
}

// WithClock replaces time.Now, used to name saved files.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// Input is one conversion request. When Raster is nil, Target is captured at
// Options.Resolution first.
type Input struct {
	Raster  *Raster
	Target  *CaptureTarget
	Options *Options // nil = DefaultOptions()
}

// Converter turns rasters into paginated PDF documents.
// Create with NewConverter, call Close when done to release the browser.
// A Converter may be used from several goroutines; captures are serialized
// on its browser.
type Converter struct {
	cfg         converterConfig
	logger      *slog.Logger
	capturer    Capturer
	newDocument DocumentFactory
	encoder     imageEncoder
	open        func(path string) error
	now         func() time.Time
}

// NewConverter creates a Converter with default collaborators: headless
// Chrome capture (launched lazily), fpdf documents and the system viewer.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg:    converterConfig{timeout: defaultTimeout},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.capturer == nil {
		c.capturer = newRodCapturer(c.cfg.timeout)
	}
	if c.newDocument == nil {
		c.newDocument = NewFPDFDocument
	}
	if c.encoder == nil {
		c.encoder = imagingEncoder{}
	}
	if c.open == nil {
		c.open = process.OpenFile
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Convert validates the options, captures the target when no raster is
// given, builds the document and applies Options.Method.
// Configuration errors are reported before any capture. The context bounds
// the capture only; composition always runs to completion or failure.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, in Input) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	opts := in.Options.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if _, err := ResolveGeometry(opts.Page.Format, opts.Page.Orientation, opts.Page.Margin); err != nil {
		return nil, err
	}

	r := in.Raster
	if r == nil {
		if r, err = c.capture(ctx, in.Target, opts.Resolution); err != nil {
			return nil, err
		}
	}

	doc, err = c.Build(r, opts)
	if err != nil {
		return nil, err
	}
	return c.finalize(doc, opts)
}

func (c *Converter) capture(ctx context.Context, target *CaptureTarget, density float64) (*Raster, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if c.capturer == nil {
		return nil, ErrNoCapturer
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	start := c.now()
	r, err := c.capturer.Capture(ctx, *target, density)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, withCategory(err, ErrCapture)
	}
	if r == nil {
		return nil, ErrEmptyRaster
	}
	c.logger.Debug("raster captured",
		"width", r.Width(), "height", r.Height(),
		"density", density, "elapsed", time.Since(start))
	return r, nil
}

// Build lays r out on pages and returns the document without finalizing it.
// Geometry and fit are resolved once; pages are composed strictly in order.
// Any failure discards the partial document.
func (c *Converter) Build(r *Raster, opts *Options) (*Document, error) {
	o := opts.withDefaults()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrEmptyRaster
	}

	g, err := ResolveGeometry(o.Page.Format, o.Page.Orientation, o.Page.Margin)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("geometry resolved",
		"format", g.Format.label(), "orientation", g.Orientation,
		"page_mm", fmt.Sprintf("%.2fx%.2f", g.PageWidthMM, g.PageHeightMM),
		"printable_px", fmt.Sprintf("%.2fx%.2f", g.PrintableWidthPX, g.PrintableHeightPX))

	f, err := CalculateFit(r, g)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fit calculated",
		"raster", fmt.Sprintf("%dx%d", r.Width(), r.Height()),
		"native", fmt.Sprintf("%.0fx%.0f", r.NativeWidth(), r.NativeHeight()),
		"density", f.DensityMultiplier, "fit_factor", f.HorizontalFitFactor,
		"page_budget", f.PageBudget, "pages", f.PageCount)

	w, err := c.newDocument(o.Page.Format, o.Page.Orientation)
	if err != nil {
		return nil, withCategory(err, ErrDocument)
	}

	placements := make([]Placement, 0, f.PageCount)
	for i := 1; i <= f.PageCount; i++ {
		s, err := Slice(r, f, i)
		if err != nil {
			return nil, err
		}
		p, err := composePage(w, c.encoder, s, f, g, o.Canvas)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("page composed",
			"page", i, "offset", s.SourceYOffset, "rows", s.PixelHeight,
			"width_mm", p.Width, "height_mm", p.Height)
		placements = append(placements, p)
	}

	return &Document{
		placements: placements,
		writer:     w,
		geometry:   g,
		fit:        f,
	}, nil
}

// Close releases the capturer (headless Chrome).
func (c *Converter) Close() error {
	if c.capturer != nil {
		return c.capturer.Close()
	}
	return nil
}
