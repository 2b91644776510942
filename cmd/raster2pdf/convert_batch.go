package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	raster2pdf "github.com/alnah/go-raster2pdf"
	"github.com/alnah/go-raster2pdf/internal/fileutil"
)

// Sentinel errors for batch operations.
var (
	ErrReadInput   = errors.New("failed to read input file")
	ErrServiceInit = errors.New("failed to initialize converter")
)

// CLIConverter is the slice of raster2pdf.Converter the CLI uses.
type CLIConverter interface {
	Convert(ctx context.Context, in raster2pdf.Input) (*raster2pdf.Document, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*raster2pdf.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() CLIConverter
	Release(CLIConverter)
	Size() int
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Pages      int
	Err        error
	Hint       string // actionable suggestion for Err
	Duration   time.Duration
}

// conversionParams groups parameters shared across a batch.
type conversionParams struct {
	options *raster2pdf.Options
	capture captureParams
	density float64 // for image inputs; 0 = options.Resolution
}

// convertBatch processes files concurrently using the pool. Results keep
// the input order.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv := pool.Acquire()
			if conv == nil {
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ErrServiceInit,
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts one input: image files are loaded directly, other
// kinds are captured in the browser.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Hint = hintFor(err, params.capture.selector)
		result.Duration = time.Since(start)
		return result
	}

	in, err := buildInput(f, params)
	if err != nil {
		return fail(err)
	}

	doc, err := conv.Convert(ctx, in)
	if err != nil {
		return fail(err)
	}

	result.Pages = doc.PageCount()
	result.OutputPath = doc.Path() // empty for MethodBuild
	result.Duration = time.Since(start)
	return result
}

// buildInput turns a discovered file into a conversion request.
func buildInput(f FileToConvert, params *conversionParams) (raster2pdf.Input, error) {
	opts := *params.options
	opts.Filename = f.OutputPath
	in := raster2pdf.Input{Options: &opts}

	target := &raster2pdf.CaptureTarget{
		Selector:    params.capture.selector,
		WindowWidth: params.capture.windowWidth,
		CSS:         params.capture.css,
	}

	switch f.Kind {
	case fileutil.KindImage:
		density := params.density
		if density == 0 {
			density = opts.Resolution
		}
		r, err := raster2pdf.LoadRaster(f.InputPath, density)
		if err != nil {
			return raster2pdf.Input{}, err
		}
		in.Raster = r
		return in, nil

	case fileutil.KindURL:
		target.URL = f.InputPath

	case fileutil.KindHTML, fileutil.KindMarkdown:
		content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
		if err != nil {
			return raster2pdf.Input{}, fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		target.BaseDir = filepath.Dir(f.InputPath)
		if f.Kind == fileutil.KindHTML {
			target.HTML = string(content)
		} else {
			target.Markdown = string(content)
		}

	default:
		return raster2pdf.Input{}, fmt.Errorf("%w: %s", ErrUnsupportedInput, f.InputPath)
	}

	in.Target = target
	return in, nil
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results and returns the number
// of failures.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, r.Hint)
			continue
		}

		if quiet {
			continue
		}

		switch {
		case r.OutputPath == "":
			fmt.Fprintf(env.Stdout, "Built %s (%d pages)\n", r.InputPath, r.Pages)
		case verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%d pages, %v)\n", r.InputPath, r.OutputPath, r.Pages, r.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// firstError returns the first failed result's error.
func firstError(results []ConversionResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
