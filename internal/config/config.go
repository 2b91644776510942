// Package config loads YAML conversion profiles for the raster2pdf CLI and
// server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-raster2pdf/internal/fileutil"
	"github.com/alnah/go-raster2pdf/internal/yamlutil"
)

// Config errors.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrFieldRange      = errors.New("field out of range")
)

// Field limits.
const (
	MaxFormatLength      = 40   // "tabloid" or "215.9x279.4"
	MaxOrientationLength = 10   // "landscape"
	MaxMarginLength      = 60   // "10,12.5,10,12.5"
	MaxResolutionLength  = 10   // "extreme" or "7.5"
	MaxMimeTypeLength    = 20   // "image/jpeg"
	MaxMethodLength      = 10   // "build"
	MaxPathLength        = 4096 // PATH_MAX
	MaxSelectorLength    = 500
	MaxCSSLength         = 64 << 10
	MaxAddrLength        = 255
	MaxWindowWidth       = 10000
	MaxUploadMB          = 512
)

// Config is a conversion profile. String values are parsed by the root
// package; this package only bounds them.
type Config struct {
	Page       PageConfig    `yaml:"page"`
	Resolution string        `yaml:"resolution"` // preset or multiplier, e.g. "medium" or "3"
	Canvas     CanvasConfig  `yaml:"canvas"`
	Output     OutputConfig  `yaml:"output"`
	Capture    CaptureConfig `yaml:"capture"`
	Server     ServerConfig  `yaml:"server"`
}

// PageConfig selects page format, orientation and margin.
type PageConfig struct {
	Format      string `yaml:"format"`      // a3, a4, a5, letter, legal, tabloid or WxH mm
	Orientation string `yaml:"orientation"` // portrait, landscape
	Margin      string `yaml:"margin"`      // none, small, medium, large, mm or top,right,bottom,left
}

// CanvasConfig selects page image encoding.
type CanvasConfig struct {
	MimeType     string  `yaml:"mimeType"`     // image/jpeg or image/png
	QualityRatio float64 `yaml:"qualityRatio"` // (0,1], JPEG only
}

// OutputConfig selects where documents go.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the input
	Method     string `yaml:"method"`     // save, open, build
}

// CaptureConfig drives the headless browser for HTML, Markdown and URL
// inputs.
type CaptureConfig struct {
	Selector    string `yaml:"selector"`    // default "body"
	WindowWidth int    `yaml:"windowWidth"` // CSS px, default 1440
	Timeout     string `yaml:"timeout"`     // Go duration, e.g. "45s"
	CSS         string `yaml:"css"`         // extra stylesheet for HTML and Markdown
}

// ServerConfig configures `raster2pdf serve`.
type ServerConfig struct {
	Addr        string `yaml:"addr"`        // default ":8080"
	MaxUploadMB int    `yaml:"maxUploadMB"` // default 32
}

// DefaultConfig returns an empty profile: every value falls back to the
// library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// TimeoutDuration parses Capture.Timeout. Zero means unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Capture.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Capture.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: capture.timeout %q: %v", ErrFieldRange, c.Capture.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: capture.timeout must be positive, got %s", ErrFieldRange, d)
	}
	return d, nil
}

// Validate bounds every field. Called by LoadConfig; also available to
// callers that build a Config by hand.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"page.format", c.Page.Format, MaxFormatLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"page.margin", c.Page.Margin, MaxMarginLength},
		{"resolution", c.Resolution, MaxResolutionLength},
		{"canvas.mimeType", c.Canvas.MimeType, MaxMimeTypeLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"output.method", c.Output.Method, MaxMethodLength},
		{"capture.selector", c.Capture.Selector, MaxSelectorLength},
		{"capture.css", c.Capture.CSS, MaxCSSLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if q := c.Canvas.QualityRatio; q < 0 || q > 1 {
		return fmt.Errorf("%w: canvas.qualityRatio must be between 0 and 1, got %.2f", ErrFieldRange, q)
	}
	if w := c.Capture.WindowWidth; w < 0 || w > MaxWindowWidth {
		return fmt.Errorf("%w: capture.windowWidth must be between 0 and %d, got %d", ErrFieldRange, MaxWindowWidth, w)
	}
	if m := c.Server.MaxUploadMB; m < 0 || m > MaxUploadMB {
		return fmt.Errorf("%w: server.maxUploadMB must be between 0 and %d, got %d", ErrFieldRange, MaxUploadMB, m)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// NotFoundError lists the paths searched for a named config.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }

// LoadConfig loads a config by path, or by name from the working directory
// then the user config directory. A missing file is an error; there is no
// silent fallback to defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	path := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if path, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Name: nameOrPath, Tried: []string{path}}
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal renders cfg as YAML, e.g. for `raster2pdf config`.
func Marshal(cfg *Config) ([]byte, error) {
	return yamlutil.Marshal(cfg)
}

// resolveConfigPath tries <name>.yaml and <name>.yml in the working
// directory, then in <UserConfigDir>/go-raster2pdf/.
func resolveConfigPath(name string) (string, error) {
	exts := []string{".yaml", ".yml"}
	dirs := []string{""}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, "go-raster2pdf"))
	}

	tried := make([]string, 0, len(exts)*len(dirs))
	for _, dir := range dirs {
		for _, ext := range exts {
			p := filepath.Join(dir, name+ext)
			if fileutil.FileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}
	return "", &NotFoundError{Name: name, Tried: tried}
}
