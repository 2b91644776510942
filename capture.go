package raster2pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-raster2pdf/internal/fileutil"
	"github.com/alnah/go-raster2pdf/internal/pipeline"
	"github.com/alnah/go-raster2pdf/internal/process"
)

// Capture defaults.
const (
	DefaultSelector    = "body"
	DefaultWindowWidth = 1440 // CSS pixels
	MaxWindowWidth     = 10000
)

// Capturer renders content into a Raster at a density multiplier.
type Capturer interface {
	Capture(ctx context.Context, target CaptureTarget, densityMultiplier float64) (*Raster, error)
	Close() error
}

// CaptureTarget names the content to rasterize. Exactly one of URL, HTML or
// Markdown must be set.
type CaptureTarget struct {
	URL      string // http(s):// or file://
	HTML     string
	Markdown string

	// BaseDir resolves relative asset paths of HTML and Markdown sources.
	BaseDir string
	// CSS is added after the capture stylesheet for HTML and Markdown sources.
	CSS string

	// Selector picks the element to capture; default "body".
	Selector string
	// WindowWidth is the viewport width in CSS pixels; default 1440.
	WindowWidth int
}

// Validate checks that exactly one source is set and the window width is
// usable. A nil target is invalid.
func (t *CaptureTarget) Validate() error {
	if t == nil {
		return ErrNoCaptureSource
	}

	n := 0
	for _, s := range []string{t.URL, t.HTML, t.Markdown} {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: got %d sources, want exactly one of URL, HTML or Markdown", ErrNoCaptureSource, n)
	}

	if t.URL != "" {
		u, err := url.Parse(t.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") {
			return fmt.Errorf("%w: unsupported URL %q", ErrNoCaptureSource, t.URL)
		}
	}
	if t.WindowWidth < 0 || t.WindowWidth > MaxWindowWidth {
		return fmt.Errorf("%w: window width %d (must be 0-%d)", ErrConfiguration, t.WindowWidth, MaxWindowWidth)
	}
	return nil
}

func (t CaptureTarget) selector() string {
	if t.Selector == "" {
		return DefaultSelector
	}
	return t.Selector
}

func (t CaptureTarget) windowWidth() int {
	if t.WindowWidth == 0 {
		return DefaultWindowWidth
	}
	return t.WindowWidth
}

// rodCapturer screenshots pages in headless Chrome via go-rod. The browser
// is launched on first use and reused until Close.
type rodCapturer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	preparer *pipeline.Preparer
}

var _ Capturer = (*rodCapturer)(nil)

func newRodCapturer(timeout time.Duration) *rodCapturer {
	return &rodCapturer{timeout: timeout, preparer: pipeline.NewPreparer()}
}

// ensureBrowser lazily launches and connects to Chrome.
func (c *rodCapturer) ensureBrowser() error {
	if c.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (containers).
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	c.browser, c.launcher = b, l
	return nil
}

// Capture loads the target, locates its element and screenshots the
// element's full box at densityMultiplier raster pixels per CSS pixel.
func (c *rodCapturer) Capture(ctx context.Context, target CaptureTarget, densityMultiplier float64) (*Raster, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if !validDensity(densityMultiplier) {
		return nil, fmt.Errorf("%w: %v (must be in (0, %g])", ErrInvalidDensity, densityMultiplier, MaxResolution)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pageURL, cleanup, err := c.resolveURL(ctx, target)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureBrowser(); err != nil {
		return nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: creating page: %v", ErrPageLoad, err)
	}
	defer page.Close()
	page = page.Context(ctx).Timeout(timeout)

	width := target.windowWidth()
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            width * 3 / 4,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	sel := target.selector()
	found, el, err := page.Has(sel)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %q: %v", ErrCapture, sel, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, sel)
	}

	shape, err := el.Shape()
	if err != nil {
		return nil, fmt.Errorf("%w: measuring %q: %v", ErrCapture, sel, err)
	}
	box := shape.Box()
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("%w: %q has no visible box", ErrEmptyRaster, sel)
	}
	if err := checkPixels(int(math.Ceil(box.Width*densityMultiplier)), int(math.Ceil(box.Height*densityMultiplier)), MaxRasterPixels); err != nil {
		return nil, fmt.Errorf("%q: %w", sel, err)
	}

	shot, err := proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Scale:  densityMultiplier,
		},
		CaptureBeyondViewport: true,
		FromSurface:           true,
	}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", ErrCapture, err)
	}

	img, err := imaging.Decode(bytes.NewReader(shot.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding screenshot: %v", ErrCapture, err)
	}
	return NewRaster(img, densityMultiplier)
}

// resolveURL returns the URL to load. HTML and Markdown sources are prepared
// and written to a temp file that cleanup removes.
func (c *rodCapturer) resolveURL(ctx context.Context, target CaptureTarget) (string, func(), error) {
	if target.URL != "" {
		return target.URL, func() {}, nil
	}

	page, err := c.preparer.Prepare(ctx, pipeline.Source{
		Markdown: target.Markdown,
		HTML:     target.HTML,
		BaseDir:  target.BaseDir,
		CSS:      target.CSS,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: preparing page: %v", ErrCapture, err)
	}

	path, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	return "file://" + filepath.ToSlash(path), cleanup, nil
}

// Close shuts the browser down and kills any leftover Chrome children.
func (c *rodCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	if c.launcher != nil {
		if pid := c.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		c.launcher.Kill()
	}
	c.browser, c.launcher = nil, nil
	return err
}
