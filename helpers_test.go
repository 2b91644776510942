package raster2pdf

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"io"
	"sync"
	"testing"
)

// testImage returns a w x h image whose rows encode their y coordinate, so
// slices can be checked against the source.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		c := color.NRGBA{R: uint8(y), G: uint8(y >> 8), B: 200, A: 255}
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newTestRaster(t *testing.T, w, h int, density float64) *Raster {
	t.Helper()
	r, err := NewRaster(testImage(w, h), density)
	if err != nil {
		t.Fatalf("NewRaster(%dx%d, %v) error = %v", w, h, density, err)
	}
	return r
}

// recordingDocument is a DocumentWriter that records every call.
type recordingDocument struct {
	format      PageFormat
	orientation Orientation
	pages       int
	calls       []string
	placements  []Placement
	images      []EncodedImage

	failAddAt   int // page number whose AddPage fails; 0 = never
	failPlaceAt int // page number whose PlaceImage fails; 0 = never
}

var _ DocumentWriter = (*recordingDocument)(nil)

func (d *recordingDocument) AddPage() error {
	if d.failAddAt == d.pages+1 {
		return errors.New("add page refused")
	}
	d.pages++
	d.calls = append(d.calls, "add")
	return nil
}

func (d *recordingDocument) PlaceImage(img EncodedImage, p Placement) error {
	if p.PageIndex != d.pages {
		return errors.New("placement on wrong page")
	}
	if d.failPlaceAt == p.PageIndex {
		return errors.New("place refused")
	}
	d.calls = append(d.calls, "place")
	d.placements = append(d.placements, p)
	d.images = append(d.images, img)
	return nil
}

func (d *recordingDocument) PageCount() int { return d.pages }

func (d *recordingDocument) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, "%PDF-recorded")
	return int64(n), err
}

// recordingFactory hands out recordingDocuments and remembers them.
type recordingFactory struct {
	mu   sync.Mutex
	docs []*recordingDocument
	err  error

	failAddAt   int
	failPlaceAt int
}

func (f *recordingFactory) New(format PageFormat, orientation Orientation) (DocumentWriter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d := &recordingDocument{
		format:      format,
		orientation: orientation,
		pages:       1,
		failAddAt:   f.failAddAt,
		failPlaceAt: f.failPlaceAt,
	}
	f.docs = append(f.docs, d)
	return d, nil
}

func (f *recordingFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

// failingEncoder fails on its failAt-th call.
type failingEncoder struct {
	calls  int
	failAt int
}

func (e *failingEncoder) Encode(img image.Image, enc ImageEncoding) (EncodedImage, error) {
	e.calls++
	if e.calls == e.failAt {
		return EncodedImage{}, errors.New("encoder exploded")
	}
	return imagingEncoder{}.Encode(img, enc)
}

// stubCapturer returns a fixed raster or error and records its targets.
type stubCapturer struct {
	mu        sync.Mutex
	raster    *Raster
	err       error
	targets   []CaptureTarget
	densities []float64
	closed    bool
	block     bool // wait for ctx.Done
}

var _ Capturer = (*stubCapturer)(nil)

func (s *stubCapturer) Capture(ctx context.Context, target CaptureTarget, density float64) (*Raster, error) {
	s.mu.Lock()
	s.targets = append(s.targets, target)
	s.densities = append(s.densities, density)
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.raster, s.err
}

func (s *stubCapturer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// sliceHeights returns each placement's slice height in raster rows.
func sliceHeights(doc *Document) []int {
	out := make([]int, 0, doc.PageCount())
	scale := doc.Fit().scale()
	for _, p := range doc.Pages() {
		out = append(out, int(p.Height*scale+0.5))
	}
	return out
}

func approxEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// pngHeader returns the signature and IHDR chunk of an 8-bit RGBA PNG
// claiming w x h pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8], ihdr[9] = 8, 6

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}
