package raster2pdf

import (
	"context"
	"errors"
	"testing"
)

func TestCaptureTarget_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  *CaptureTarget
		wantErr error
	}{
		{"html", &CaptureTarget{HTML: "<h1>hi</h1>"}, nil},
		{"markdown", &CaptureTarget{Markdown: "# hi"}, nil},
		{"https url", &CaptureTarget{URL: "https://example.com/report"}, nil},
		{"http url", &CaptureTarget{URL: "http://localhost:8080"}, nil},
		{"file url", &CaptureTarget{URL: "file:///tmp/page.html"}, nil},
		{"max window width", &CaptureTarget{HTML: "x", WindowWidth: MaxWindowWidth}, nil},
		{"nil", nil, ErrNoCaptureSource},
		{"empty", &CaptureTarget{}, ErrNoCaptureSource},
		{"whitespace only", &CaptureTarget{HTML: "  \n"}, ErrNoCaptureSource},
		{"two sources", &CaptureTarget{URL: "https://example.com", Markdown: "# hi"}, ErrNoCaptureSource},
		{"ftp url", &CaptureTarget{URL: "ftp://example.com/x"}, ErrNoCaptureSource},
		{"relative url", &CaptureTarget{URL: "report.html"}, ErrNoCaptureSource},
		{"negative window", &CaptureTarget{HTML: "x", WindowWidth: -1}, ErrConfiguration},
		{"huge window", &CaptureTarget{HTML: "x", WindowWidth: MaxWindowWidth + 1}, ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.target.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCaptureTarget_Defaults(t *testing.T) {
	t.Parallel()

	var zero CaptureTarget
	if zero.selector() != DefaultSelector {
		t.Errorf("selector() = %q, want %q", zero.selector(), DefaultSelector)
	}
	if zero.windowWidth() != DefaultWindowWidth {
		t.Errorf("windowWidth() = %d, want %d", zero.windowWidth(), DefaultWindowWidth)
	}

	set := CaptureTarget{Selector: "#main", WindowWidth: 800}
	if set.selector() != "#main" || set.windowWidth() != 800 {
		t.Errorf("explicit values = (%q, %d)", set.selector(), set.windowWidth())
	}
}

func TestRodCapturer_RejectsBeforeLaunch(t *testing.T) {
	t.Parallel()

	c := newRodCapturer(defaultTimeout)
	defer func() { _ = c.Close() }()

	tests := []struct {
		name    string
		ctx     func() context.Context
		target  CaptureTarget
		density float64
		wantErr error
	}{
		{"no source", context.Background, CaptureTarget{}, 1, ErrNoCaptureSource},
		{"zero density", context.Background, CaptureTarget{HTML: "x"}, 0, ErrInvalidDensity},
		{"canceled", func() context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx
		}, CaptureTarget{HTML: "x"}, 1, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Capture(tt.ctx(), tt.target, tt.density); !errors.Is(err, tt.wantErr) {
				t.Errorf("Capture() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if c.browser != nil {
		t.Error("browser launched for a rejected capture")
	}
}

func TestRodCapturer_CloseWithoutBrowser(t *testing.T) {
	t.Parallel()

	if err := newRodCapturer(defaultTimeout).Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
