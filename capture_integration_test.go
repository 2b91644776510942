//go:build integration

package raster2pdf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tallHTML(blocks int) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body style="margin:0"><div id="main" style="width:800px">`)
	for i := range blocks {
		fmt.Fprintf(&b, `<div style="height:500px;background:#%02x%02x99">block %d</div>`, i*20%256, i*40%256, i)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func TestRodCapturer_Capture_Integration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("element box at density", func(t *testing.T) {
		t.Parallel()

		c := newRodCapturer(testTimeout)
		t.Cleanup(func() { _ = c.Close() })

		r, err := c.Capture(ctx, CaptureTarget{HTML: tallHTML(3), Selector: "#main"}, 2)
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if r.Width() != 1600 || r.Height() != 3000 {
			t.Errorf("raster = %dx%d, want 1600x3000", r.Width(), r.Height())
		}
		if r.NativeWidth() != 800 {
			t.Errorf("NativeWidth() = %v, want 800", r.NativeWidth())
		}
	})

	t.Run("missing element", func(t *testing.T) {
		t.Parallel()

		c := newRodCapturer(testTimeout)
		t.Cleanup(func() { _ = c.Close() })

		_, err := c.Capture(ctx, CaptureTarget{HTML: "<p>hi</p>", Selector: "#nope"}, 1)
		if !errors.Is(err, ErrElementNotFound) {
			t.Errorf("Capture() error = %v, want ErrElementNotFound", err)
		}
	})

	t.Run("markdown source", func(t *testing.T) {
		t.Parallel()

		c := newRodCapturer(testTimeout)
		t.Cleanup(func() { _ = c.Close() })

		r, err := c.Capture(ctx, CaptureTarget{Markdown: "# Title\n\nSome *text*.\n\n```go\nfunc main() {}\n```\n"}, 1)
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if r.Width() > DefaultWindowWidth || r.Height() == 0 {
			t.Errorf("raster = %dx%d, want at most %d wide", r.Width(), r.Height(), DefaultWindowWidth)
		}
	})
}

func TestConverter_Convert_Integration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("url to paginated pdf", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(tallHTML(6)))
		}))
		t.Cleanup(srv.Close)

		opts := DefaultOptions()
		opts.Method = MethodBuild
		opts.Resolution = 1
		doc, err := acquireConverter(t).Convert(ctx, Input{
			Target:  &CaptureTarget{URL: srv.URL, Selector: "#main"},
			Options: opts,
		})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		// 3000 CSS px over 1122-row A4 pages.
		if doc.PageCount() != 3 {
			t.Errorf("PageCount() = %d, want 3", doc.PageCount())
		}
		data, err := doc.Bytes()
		if err != nil {
			t.Fatalf("Bytes() error = %v", err)
		}
		assertValidPDF(t, data)
	})

	t.Run("html saved with margins", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "report")
		opts := DefaultOptions()
		opts.Filename = out
		opts.Page.Margin = MarginMedium

		doc, err := acquireConverter(t).Convert(ctx, Input{
			Target:  &CaptureTarget{HTML: tallHTML(10), Selector: "#main"},
			Options: opts,
		})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if doc.Path() != out+".pdf" {
			t.Errorf("Path() = %q, want %q", doc.Path(), out+".pdf")
		}
		data, err := os.ReadFile(doc.Path())
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		assertValidPDF(t, data)

		// 5000 CSS px at density 3 = 15000 rows, 3140 rows per page.
		if doc.PageCount() != 5 {
			t.Errorf("PageCount() = %d, want 5", doc.PageCount())
		}
		for _, p := range doc.Pages() {
			if p.X != 10 || p.Y != 10 {
				t.Errorf("page %d placed at (%v, %v), want (10, 10)", p.PageIndex, p.X, p.Y)
			}
		}
	})
}
