package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	raster2pdf "github.com/alnah/go-raster2pdf"
)

// closablePool is a Pool that owns browsers.
type closablePool interface {
	Pool
	Close() error
}

// poolFactory creates the converter pool; tests inject mocks.
type poolFactory func(size int, opts ...raster2pdf.Option) closablePool

// newConverterPool is the production poolFactory.
func newConverterPool(size int, opts ...raster2pdf.Option) closablePool {
	return &poolAdapter{pool: raster2pdf.NewConverterPool(size, opts...)}
}

// converterOptions returns the options every pooled Converter shares.
func converterOptions(logger *slog.Logger, timeout time.Duration, env *Environment) []raster2pdf.Option {
	opts := []raster2pdf.Option{
		raster2pdf.WithLogger(logger),
		raster2pdf.WithClock(env.Now),
	}
	if timeout > 0 {
		opts = append(opts, raster2pdf.WithTimeout(timeout))
	}
	return opts
}

// runConvert orchestrates a batch conversion.
func runConvert(ctx context.Context, args []string, env *Environment, newPool poolFactory) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if flags.density < 0 || flags.density > raster2pdf.MaxResolution {
		return fmt.Errorf("%w: --density %v", raster2pdf.ErrInvalidDensity, flags.density)
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeConvertFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	env.Config = cfg

	// Options are resolved before discovery so that configuration errors
	// surface before any file is read or page captured.
	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}
	capture, err := buildCaptureParams(cfg, flags.capture.css)
	if err != nil {
		return err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	files, err := discoverFiles(positional, cfg.Output.DefaultDir)
	if err != nil {
		return fmt.Errorf("discovering inputs: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no supported files in %v", ErrNoInput, positional)
	}

	logger := newLogger(env.Stderr, slog.LevelWarn, flags.common.verbose, flags.common.quiet, envCfg.LogLevel)
	size := min(raster2pdf.ResolvePoolSize(resolveWorkers(flags.workers, envCfg)), len(files))
	logger.Debug("starting conversion", "inputs", len(files), "workers", size,
		"format", opts.Page.Format.Name, "orientation", opts.Page.Orientation,
		"margin", opts.Page.Margin.String(), "resolution", opts.Resolution, "method", opts.Method)

	pool := newPool(size, converterOptions(logger, timeout, env)...)
	defer pool.Close()

	results := convertBatch(ctx, pool, files, &conversionParams{
		options: opts,
		capture: capture,
		density: flags.density,
	})

	failedCount := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return &reportedError{err: fmt.Errorf("%d conversion(s) failed: %w", failedCount, firstError(results))}
	}
	return nil
}

// reportedError marks a failure whose details were already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }
