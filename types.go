package raster2pdf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PageFormat is a physical page size in millimetres, given in portrait
// orientation (Width <= Height for the named formats).
type PageFormat struct {
	Name   string
	Width  float64
	Height float64
}

// Named page formats.
var (
	FormatA3      = PageFormat{Name: "a3", Width: 297, Height: 420}
	FormatA4      = PageFormat{Name: "a4", Width: 210, Height: 297}
	FormatA5      = PageFormat{Name: "a5", Width: 148, Height: 210}
	FormatLetter  = PageFormat{Name: "letter", Width: 215.9, Height: 279.4}
	FormatLegal   = PageFormat{Name: "legal", Width: 215.9, Height: 355.6}
	FormatTabloid = PageFormat{Name: "tabloid", Width: 279.4, Height: 431.8}
)

var namedFormats = map[string]PageFormat{
	FormatA3.Name:      FormatA3,
	FormatA4.Name:      FormatA4,
	FormatA5.Name:      FormatA5,
	FormatLetter.Name:  FormatLetter,
	FormatLegal.Name:   FormatLegal,
	FormatTabloid.Name: FormatTabloid,
}

// PageFormatNames lists the named formats accepted by ParsePageFormat.
func PageFormatNames() []string {
	return []string{"a3", "a4", "a5", "letter", "legal", "tabloid"}
}

// ParsePageFormat resolves a format name (case-insensitive) or an explicit
// "<width>x<height>" size in millimetres.
func ParsePageFormat(s string) (PageFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if f, ok := namedFormats[name]; ok {
		return f, nil
	}

	w, h, ok := strings.Cut(name, "x")
	if !ok {
		return PageFormat{}, fmt.Errorf("%w: %q (use %s or WxH in mm)", ErrInvalidPageFormat, s, strings.Join(PageFormatNames(), ", "))
	}
	width, errW := strconv.ParseFloat(strings.TrimSpace(w), 64)
	height, errH := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if errW != nil || errH != nil {
		return PageFormat{}, fmt.Errorf("%w: %q", ErrInvalidPageFormat, s)
	}

	f := PageFormat{Name: name, Width: width, Height: height}
	if err := f.Validate(); err != nil {
		return PageFormat{}, err
	}
	return f, nil
}

// Validate checks that both dimensions are positive and finite.
func (f PageFormat) Validate() error {
	if !isPositive(f.Width) || !isPositive(f.Height) {
		return fmt.Errorf("%w: %s is %.2fx%.2f mm", ErrInvalidPageFormat, f.label(), f.Width, f.Height)
	}
	return nil
}

// Oriented returns the format with its dimensions arranged for o:
// landscape puts the longer side horizontally, portrait vertically.
func (f PageFormat) Oriented(o Orientation) PageFormat {
	short, long := math.Min(f.Width, f.Height), math.Max(f.Width, f.Height)
	if o == Landscape {
		f.Width, f.Height = long, short
	} else {
		f.Width, f.Height = short, long
	}
	return f
}

func (f PageFormat) label() string {
	if f.Name == "" {
		return "custom format"
	}
	return f.Name
}

// Orientation of the output pages.
type Orientation string

// Orientation values.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ParseOrientation accepts "portrait"/"p" and "landscape"/"l", case-insensitive.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait", "p":
		return Portrait, nil
	case "landscape", "l":
		return Landscape, nil
	}
	return "", fmt.Errorf("%w: %q (must be portrait or landscape)", ErrInvalidOrientation, s)
}

// Margin is either one length applied to every edge or four independent
// lengths, all in millimetres. The zero value is a uniform zero margin.
type Margin struct {
	perEdge                  bool
	top, right, bottom, left float64
}

// Edges is a margin resolved into explicit per-edge lengths in millimetres.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Margin presets in millimetres.
var (
	MarginNone   = UniformMargin(0)
	MarginSmall  = UniformMargin(5)
	MarginMedium = UniformMargin(10)
	MarginLarge  = UniformMargin(25)
)

var marginPresets = map[string]Margin{
	"none":   MarginNone,
	"small":  MarginSmall,
	"medium": MarginMedium,
	"large":  MarginLarge,
}

// UniformMargin returns a margin of mm on all four edges.
func UniformMargin(mm float64) Margin {
	return Margin{top: mm, right: mm, bottom: mm, left: mm}
}

// PerEdgeMargin returns a margin with independent edge lengths.
func PerEdgeMargin(top, right, bottom, left float64) Margin {
	return Margin{perEdge: true, top: top, right: right, bottom: bottom, left: left}
}

// ParseMargin accepts a preset name (none, small, medium, large), a single
// length in mm, or four comma-separated lengths "top,right,bottom,left".
func ParseMargin(s string) (Margin, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if m, ok := marginPresets[v]; ok {
		return m, nil
	}

	parts := strings.Split(v, ",")
	switch len(parts) {
	case 1:
		mm, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Margin{}, fmt.Errorf("%w: %q (use none, small, medium, large, mm or top,right,bottom,left)", ErrInvalidMargin, s)
		}
		m := UniformMargin(mm)
		return m, m.Validate()
	case 4:
		var e [4]float64
		for i, p := range parts {
			mm, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Margin{}, fmt.Errorf("%w: %q", ErrInvalidMargin, s)
			}
			e[i] = mm
		}
		m := PerEdgeMargin(e[0], e[1], e[2], e[3])
		return m, m.Validate()
	}
	return Margin{}, fmt.Errorf("%w: %q (expected 1 or 4 values)", ErrInvalidMargin, s)
}

// IsUniform reports whether the margin was built as a single length.
func (m Margin) IsUniform() bool {
	return !m.perEdge
}

// Edges resolves the margin into four explicit lengths.
func (m Margin) Edges() Edges {
	return Edges{Top: m.top, Right: m.right, Bottom: m.bottom, Left: m.left}
}

// Validate rejects negative or non-finite edges.
func (m Margin) Validate() error {
	e := m.Edges()
	for _, v := range []float64{e.Top, e.Right, e.Bottom, e.Left} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s (edges must be >= 0 mm)", ErrInvalidMargin, m)
		}
	}
	return nil
}

// String formats the margin the way ParseMargin reads it.
func (m Margin) String() string {
	if m.IsUniform() {
		return strconv.FormatFloat(m.top, 'g', -1, 64)
	}
	return fmt.Sprintf("%g,%g,%g,%g", m.top, m.right, m.bottom, m.left)
}

// Resolution presets: density multipliers applied when capturing.
const (
	ResolutionLow     = 1.0
	ResolutionNormal  = 2.0
	ResolutionMedium  = 3.0
	ResolutionHigh    = 7.0
	ResolutionExtreme = 12.0
)

// DefaultResolution is used when Options.Resolution is zero.
const DefaultResolution = ResolutionMedium

// MaxResolution is the largest accepted density multiplier.
const MaxResolution = ResolutionExtreme

var resolutionPresets = map[string]float64{
	"low":     ResolutionLow,
	"normal":  ResolutionNormal,
	"medium":  ResolutionMedium,
	"high":    ResolutionHigh,
	"extreme": ResolutionExtreme,
}

// ParseResolution accepts a preset name or a positive number.
func ParseResolution(s string) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if r, ok := resolutionPresets[v]; ok {
		return r, nil
	}
	r, err := strconv.ParseFloat(v, 64)
	if err != nil || !validDensity(r) {
		return 0, fmt.Errorf("%w: %q (use low, normal, medium, high, extreme or a number in (0, %g])", ErrInvalidResolution, s, MaxResolution)
	}
	return r, nil
}

// Image mime types accepted for page encoding.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// ImageEncoding selects how page slices are encoded before placement.
type ImageEncoding struct {
	MimeType     string  // "image/jpeg" (default) or "image/png"
	QualityRatio float64 // (0,1], JPEG only; 0 means 1
}

// Validate checks the mime type and quality ratio.
func (e ImageEncoding) Validate() error {
	switch e.MimeType {
	case MimeJPEG, MimePNG:
	default:
		return fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidMimeType, e.MimeType, MimeJPEG, MimePNG)
	}
	if !(e.QualityRatio > 0 && e.QualityRatio <= 1) {
		return fmt.Errorf("%w: %.2f (must be in (0, 1])", ErrInvalidQuality, e.QualityRatio)
	}
	return nil
}

// Method is the terminal action applied to a finished document.
type Method string

// Output methods.
const (
	MethodSave  Method = "save"  // write to Options.Filename
	MethodOpen  Method = "open"  // write to a temp file and open a viewer
	MethodBuild Method = "build" // return the document only
)

// ParseMethod validates an output method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodSave, MethodOpen, MethodBuild:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (must be save, open or build)", ErrInvalidMethod, s)
}

// PageSettings groups the page geometry inputs.
type PageSettings struct {
	Format      PageFormat
	Orientation Orientation
	Margin      Margin
}

// Options configures one conversion. Zero fields take defaults.
type Options struct {
	Filename   string  // used by MethodSave; default "<unix-millis>.pdf"
	Method     Method  // default MethodSave
	Resolution float64 // capture density multiplier; default 3
	Page       PageSettings
	Canvas     ImageEncoding
}

// DefaultOptions returns A4 portrait, no margin, medium resolution, JPEG at
// full quality, saved to a timestamped file.
func DefaultOptions() *Options {
	return &Options{
		Method:     MethodSave,
		Resolution: DefaultResolution,
		Page: PageSettings{
			Format:      FormatA4,
			Orientation: Portrait,
			Margin:      MarginNone,
		},
		Canvas: ImageEncoding{
			MimeType:     MimeJPEG,
			QualityRatio: 1,
		},
	}
}

// withDefaults returns a copy of o with zero fields filled from
// DefaultOptions. A nil o yields the defaults.
func (o *Options) withDefaults() *Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}

	r := *o
	if r.Method == "" {
		r.Method = d.Method
	}
	if r.Resolution == 0 {
		r.Resolution = d.Resolution
	}
	if r.Page.Format == (PageFormat{}) {
		r.Page.Format = d.Page.Format
	}
	if r.Page.Orientation == "" {
		r.Page.Orientation = d.Page.Orientation
	}
	if r.Canvas.MimeType == "" {
		r.Canvas.MimeType = d.Canvas.MimeType
	}
	if r.Canvas.QualityRatio == 0 {
		r.Canvas.QualityRatio = d.Canvas.QualityRatio
	}
	return &r
}

// Validate checks every field. Returns nil for a nil receiver (defaults).
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if !validDensity(o.Resolution) {
		return fmt.Errorf("%w: %v (must be in (0, %g])", ErrInvalidResolution, o.Resolution, MaxResolution)
	}
	if _, err := ParseMethod(string(o.Method)); err != nil {
		return err
	}
	if err := o.Page.Format.Validate(); err != nil {
		return err
	}
	if _, err := ParseOrientation(string(o.Page.Orientation)); err != nil {
		return err
	}
	if err := o.Page.Margin.Validate(); err != nil {
		return err
	}
	return o.Canvas.Validate()
}

func validDensity(v float64) bool {
	return isPositive(v) && v <= MaxResolution
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
