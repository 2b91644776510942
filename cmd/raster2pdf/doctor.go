package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	raster2pdf "github.com/alnah/go-raster2pdf"
)

// ErrNotReady is returned by doctor when a check fails.
var ErrNotReady = errors.New("environment not ready")

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds every diagnostic.
type doctorResult struct {
	Status   string       `json:"status"`
	Chrome   chromeInfo   `json:"chrome"`
	Env      envInfo      `json:"environment"`
	Renderer rendererInfo `json:"renderer"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// chromeInfo describes the browser used for HTML, Markdown and URL inputs.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	BrowserBin    string `json:"rod_browser_bin,omitempty"`
}

// rendererInfo reports the offline layout self-test.
type rendererInfo struct {
	TempWritable bool `json:"temp_writable"`
	PDFBuilt     bool `json:"pdf_built"`
	Pages        int  `json:"pages,omitempty"`
}

// doctorChecks holds the checks so tests can replace the browser lookup.
type doctorChecks struct {
	lookPath func() (string, bool)
	version  func(path string) (string, error)
}

func defaultDoctorChecks() doctorChecks {
	return doctorChecks{
		lookPath: launcher.LookPath,
		version: func(path string) (string, error) {
			out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from rod or ROD_BROWSER_BIN
			return strings.TrimSpace(string(out)), err
		},
	}
}

// runDoctor prints diagnostics. Image inputs only need the renderer, so a
// missing browser is a warning, not an error.
func runDoctor(args []string, env *Environment, checks doctorChecks) error {
	set := flag.NewFlagSet("doctor", flag.ContinueOnError)
	set.SetOutput(io.Discard)
	jsonOutput := set.Bool("json", false, "print diagnostics as JSON")
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}

	result := diagnose(checks)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return &reportedError{err: fmt.Errorf("%w: %s", ErrNotReady, strings.Join(result.Errors, "; "))}
	}
	return nil
}

func diagnose(checks doctorChecks) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result, checks)
	checkEnvironment(result)
	checkRenderer(result)

	switch {
	case len(result.Errors) > 0:
		result.Status = statusErrors
	case len(result.Warnings) > 0:
		result.Status = statusWarnings
	}
	return result
}

func checkChrome(result *doctorResult, checks doctorChecks) {
	path := result.Env.BrowserBin
	if path == "" {
		var found bool
		if path, found = checks.lookPath(); !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found: only image inputs will convert. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", path))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = path
	if v, err := checks.version(path); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not read Chrome version: %v", err))
	}
}

func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
	if (result.Env.Container || result.Env.CI) && os.Getenv("CI") != "true" {
		result.Warnings = append(result.Warnings,
			"container or CI detected: set CI=true so Chrome launches without sandbox")
	}
}

// isContainer reports whether the process runs in a container and which
// signal said so.
func isContainer() (bool, string) {
	if os.Getenv("RASTER2PDF_CONTAINER") == "1" {
		return true, "RASTER2PDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkRenderer lays a blank two-page raster out in memory and writes the
// PDF to the temp directory.
func checkRenderer(result *doctorResult) {
	r, err := raster2pdf.NewRaster(image.NewGray(image.Rect(0, 0, 100, 2000)), 1)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("creating test raster: %v", err))
		return
	}
	doc, err := raster2pdf.NewConverter().Build(r, &raster2pdf.Options{Method: raster2pdf.MethodBuild})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("building test document: %v", err))
		return
	}
	result.Renderer.PDFBuilt = true
	result.Renderer.Pages = doc.PageCount()

	path := filepath.Join(os.TempDir(), "raster2pdf-doctor.pdf")
	f, err := os.Create(path) // #nosec G304 -- fixed name in the temp directory
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("temp directory not writable: %s", os.TempDir()))
		return
	}
	defer os.Remove(path)
	defer f.Close()
	if _, err := doc.WriteTo(f); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("writing test document: %v", err))
		return
	}
	result.Renderer.TempWritable = true
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "raster2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Renderer")
	if r.Renderer.PDFBuilt {
		fmt.Fprintf(w, "  [OK] Test document: %d pages\n", r.Renderer.Pages)
	} else {
		fmt.Fprintln(w, "  [ERROR] Test document failed")
	}
	if r.Renderer.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
