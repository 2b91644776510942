package raster2pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Placement records where a page image was drawn, in millimetres from the
// top-left corner of its page.
type Placement struct {
	PageIndex int // 1-based
	X, Y      float64
	Width     float64
	Height    float64
}

// DocumentWriter is the document-building collaborator. A new writer holds
// exactly one empty page; AddPage appends another and makes it current.
// PlaceImage draws on the current page, which must be p.PageIndex.
type DocumentWriter interface {
	AddPage() error
	PlaceImage(img EncodedImage, p Placement) error
	PageCount() int
	WriteTo(w io.Writer) (int64, error)
}

// DocumentFactory creates an empty document for a resolved page format.
type DocumentFactory func(format PageFormat, orientation Orientation) (DocumentWriter, error)

// Document is a finished conversion: its page placements and the writer
// holding the encoded pages.
type Document struct {
	placements []Placement
	writer     DocumentWriter
	geometry   Geometry
	fit        Fit
	path       string
}

// Pages returns a copy of the per-page placements in page order.
func (d *Document) Pages() []Placement {
	return append([]Placement(nil), d.placements...)
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.placements) }

// Geometry returns the page layout the document was built with.
func (d *Document) Geometry() Geometry { return d.geometry }

// Fit returns the fit computed for the source raster.
func (d *Document) Fit() Fit { return d.fit }

// Path is the file the document was written to by MethodSave or
// MethodOpen, empty for MethodBuild.
func (d *Document) Path() string { return d.path }

// WriteTo serializes the PDF.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := d.writer.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return n, nil
}

// Bytes returns the serialized PDF.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fpdfWriter implements DocumentWriter with go-pdf/fpdf in millimetre units.
type fpdfWriter struct {
	pdf    *fpdf.Fpdf
	images int
	output []byte
}

var _ DocumentWriter = (*fpdfWriter)(nil)

// NewFPDFDocument is the default DocumentFactory.
func NewFPDFDocument(format PageFormat, orientation Orientation) (DocumentWriter, error) {
	page := format.Oriented(orientation)
	if err := page.Validate(); err != nil {
		return nil, err
	}

	// Dimensions are already oriented, so fpdf always sees portrait.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("go-raster2pdf", true)
	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: creating document: %v", ErrDocument, err)
	}
	return &fpdfWriter{pdf: pdf}, nil
}

func (w *fpdfWriter) AddPage() error {
	w.pdf.AddPage()
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("%w: adding page %d: %v", ErrDocument, w.pdf.PageNo()+1, err)
	}
	return nil
}

func (w *fpdfWriter) PlaceImage(img EncodedImage, p Placement) error {
	if cur := w.pdf.PageNo(); cur != p.PageIndex {
		return fmt.Errorf("%w: placing image for page %d on page %d", ErrDocument, p.PageIndex, cur)
	}

	var imageType string
	switch img.MimeType {
	case MimeJPEG:
		imageType = "JPG"
	case MimePNG:
		imageType = "PNG"
	default:
		return fmt.Errorf("%w: unsupported image type %q", ErrDocument, img.MimeType)
	}

	w.images++
	name := fmt.Sprintf("page-%d-%d", p.PageIndex, w.images)
	opt := fpdf.ImageOptions{ImageType: imageType}
	w.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(img.Data))
	w.pdf.ImageOptions(name, p.X, p.Y, p.Width, p.Height, false, opt, 0, "")
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("%w: placing image on page %d: %v", ErrDocument, p.PageIndex, err)
	}
	return nil
}

func (w *fpdfWriter) PageCount() int {
	return w.pdf.PageCount()
}

// WriteTo closes the document on first use and replays the same bytes on
// later calls.
func (w *fpdfWriter) WriteTo(out io.Writer) (int64, error) {
	if w.output == nil {
		var buf bytes.Buffer
		if err := w.pdf.Output(&buf); err != nil {
			return 0, err
		}
		w.output = buf.Bytes()
	}
	return bytes.NewReader(w.output).WriteTo(out)
}
