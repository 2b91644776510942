package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-raster2pdf/internal/config"
)

// envPrefix marks the variables read by the CLI.
const envPrefix = "RASTER2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // RASTER2PDF_CONFIG: config file name or path
	Timeout    time.Duration // RASTER2PDF_TIMEOUT: capture timeout
	Workers    int           // RASTER2PDF_WORKERS: parallel workers
	LogLevel   string        // RASTER2PDF_LOG_LEVEL: debug, info, warn, error

	Format      string // RASTER2PDF_FORMAT: page format
	Orientation string // RASTER2PDF_ORIENTATION: portrait, landscape
	Margin      string // RASTER2PDF_MARGIN: margin preset or mm
	Resolution  string // RASTER2PDF_RESOLUTION: capture resolution
	Method      string // RASTER2PDF_METHOD: save, open, build
	OutputDir   string // RASTER2PDF_OUTPUT_DIR: default output directory
	Selector    string // RASTER2PDF_SELECTOR: capture selector
	Addr        string // RASTER2PDF_ADDR: serve listen address
}

// knownEnvVars lists valid RASTER2PDF_* variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"RASTER2PDF_CONFIG":      true,
	"RASTER2PDF_TIMEOUT":     true,
	"RASTER2PDF_WORKERS":     true,
	"RASTER2PDF_LOG_LEVEL":   true,
	"RASTER2PDF_FORMAT":      true,
	"RASTER2PDF_ORIENTATION": true,
	"RASTER2PDF_MARGIN":      true,
	"RASTER2PDF_RESOLUTION":  true,
	"RASTER2PDF_METHOD":      true,
	"RASTER2PDF_OUTPUT_DIR":  true,
	"RASTER2PDF_SELECTOR":    true,
	"RASTER2PDF_ADDR":        true,
	"RASTER2PDF_CONTAINER":   true, // read by doctor
}

// loadEnvConfig reads every recognized RASTER2PDF_* variable. Malformed
// timeout and worker values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("RASTER2PDF_CONFIG"),
		LogLevel:    os.Getenv("RASTER2PDF_LOG_LEVEL"),
		Format:      os.Getenv("RASTER2PDF_FORMAT"),
		Orientation: os.Getenv("RASTER2PDF_ORIENTATION"),
		Margin:      os.Getenv("RASTER2PDF_MARGIN"),
		Resolution:  os.Getenv("RASTER2PDF_RESOLUTION"),
		Method:      os.Getenv("RASTER2PDF_METHOD"),
		OutputDir:   os.Getenv("RASTER2PDF_OUTPUT_DIR"),
		Selector:    os.Getenv("RASTER2PDF_SELECTOR"),
		Addr:        os.Getenv("RASTER2PDF_ADDR"),
	}

	if timeout := os.Getenv("RASTER2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("RASTER2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	return cfg
}

// warnUnknownEnvVars reports unrecognized RASTER2PDF_* variables, e.g.
// RASTER2PDF_MARGINS instead of RASTER2PDF_MARGIN.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config values with set environment variables.
// Flags are merged afterwards, giving: flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Page.Format, env.Format)
	set(&cfg.Page.Orientation, env.Orientation)
	set(&cfg.Page.Margin, env.Margin)
	set(&cfg.Resolution, env.Resolution)
	set(&cfg.Output.Method, env.Method)
	set(&cfg.Output.DefaultDir, env.OutputDir)
	set(&cfg.Capture.Selector, env.Selector)
	set(&cfg.Server.Addr, env.Addr)
	if env.Timeout > 0 {
		cfg.Capture.Timeout = env.Timeout.String()
	}
}

// loadConfig resolves the config file (flag, then RASTER2PDF_CONFIG) and
// layers environment overrides on top.
func loadConfig(flagPath string, env *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	path := flagPath
	if path == "" {
		path = env.ConfigPath
	}
	if path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	applyEnvConfig(env, cfg)
	return cfg, nil
}

// resolveWorkers picks the worker count: flag, then env, then 0 (auto).
func resolveWorkers(flagValue int, env *envConfig) int {
	if flagValue > 0 {
		return flagValue
	}
	return env.Workers
}
