package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	raster2pdf "github.com/alnah/go-raster2pdf"
)

// Server defaults.
const (
	defaultAddr           = ":8080"
	defaultMaxUploadMB    = 32
	defaultAttachmentName = "document.pdf"
	shutdownTimeout       = 10 * time.Second
)

// server answers conversion requests with converters from a pool.
type server struct {
	pool    Pool
	base    *raster2pdf.Options
	capture captureParams
	logger  *slog.Logger
}

// buildResponse describes a document built without rendering it.
type buildResponse struct {
	PageCount  int                    `json:"pageCount"`
	PageBudget int                    `json:"pageBudget"`
	FitFactor  float64                `json:"fitFactor"`
	Density    float64                `json:"densityMultiplier"`
	PageWidth  float64                `json:"pageWidthMM"`
	PageHeight float64                `json:"pageHeightMM"`
	Pages      []raster2pdf.Placement `json:"pages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// newServer wires routes and middleware.
func newServer(pool Pool, base *raster2pdf.Options, capture captureParams, maxUploadMB int, logger *slog.Logger) *echo.Echo {
	s := &server{pool: pool, base: base, capture: capture, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(strconv.Itoa(maxUploadMB) + "M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	e.GET("/healthz", s.health)
	e.POST("/convert", s.convert)
	return e
}

func (s *server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

// convert accepts a multipart "image" upload, or a "url" field to capture,
// plus optional layout fields. The method field selects the response:
// build returns JSON geometry, open an inline PDF, save an attachment.
func (s *server) convert(c echo.Context) error {
	opts, err := s.requestOptions(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	method := opts.Method
	opts.Method = raster2pdf.MethodBuild

	in := raster2pdf.Input{Options: opts}
	if fh, err := c.FormFile("image"); err == nil {
		density := opts.Resolution
		if v := c.FormValue("density"); v != "" {
			if density, err = strconv.ParseFloat(v, 64); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid density %q", v))
			}
		}
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		defer f.Close()

		if in.Raster, err = raster2pdf.DecodeRaster(f, density); err != nil {
			return s.conversionError(err)
		}
	} else if u := c.FormValue("url"); u != "" {
		if !isRemoteURL(u) {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported url %q: only http and https are accepted", u))
		}
		in.Target = &raster2pdf.CaptureTarget{
			URL:         u,
			Selector:    s.capture.selector,
			WindowWidth: s.capture.windowWidth,
		}
		if sel := c.FormValue("selector"); sel != "" {
			in.Target.Selector = sel
		}
	} else {
		return echo.NewHTTPError(http.StatusBadRequest, "missing image file or url field")
	}

	conv := s.pool.Acquire()
	if conv == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrServiceInit.Error())
	}
	defer s.pool.Release(conv)

	doc, err := conv.Convert(c.Request().Context(), in)
	if err != nil {
		return s.conversionError(err)
	}

	if method == raster2pdf.MethodBuild {
		g, f := doc.Geometry(), doc.Fit()
		return c.JSON(http.StatusOK, buildResponse{
			PageCount:  doc.PageCount(),
			PageBudget: f.PageBudget,
			FitFactor:  f.HorizontalFitFactor,
			Density:    f.DensityMultiplier,
			PageWidth:  g.PageWidthMM,
			PageHeight: g.PageHeightMM,
			Pages:      doc.Pages(),
		})
	}

	data, err := doc.Bytes()
	if err != nil {
		return s.conversionError(err)
	}

	disposition := "attachment"
	if method == raster2pdf.MethodOpen {
		disposition = "inline"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("%s; filename=%q", disposition, attachmentName(c.FormValue("filename"))))
	c.Response().Header().Set("X-Page-Count", strconv.Itoa(doc.PageCount()))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// requestOptions layers form fields over the server defaults.
func (s *server) requestOptions(c echo.Context) (*raster2pdf.Options, error) {
	opts := *s.base

	if v := c.FormValue("format"); v != "" {
		f, err := raster2pdf.ParsePageFormat(v)
		if err != nil {
			return nil, err
		}
		opts.Page.Format = f
	}
	if v := c.FormValue("orientation"); v != "" {
		o, err := raster2pdf.ParseOrientation(v)
		if err != nil {
			return nil, err
		}
		opts.Page.Orientation = o
	}
	if v := c.FormValue("margin"); v != "" {
		m, err := raster2pdf.ParseMargin(v)
		if err != nil {
			return nil, err
		}
		opts.Page.Margin = m
	}
	if v := c.FormValue("resolution"); v != "" {
		r, err := raster2pdf.ParseResolution(v)
		if err != nil {
			return nil, err
		}
		opts.Resolution = r
	}
	if v := c.FormValue("mimeType"); v != "" {
		opts.Canvas.MimeType = v
	}
	if v := c.FormValue("quality"); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", raster2pdf.ErrInvalidQuality, v)
		}
		opts.Canvas.QualityRatio = q
	}
	if v := c.FormValue("method"); v != "" {
		m, err := raster2pdf.ParseMethod(v)
		if err != nil {
			return nil, err
		}
		opts.Method = m
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// conversionError maps a library error onto an HTTP status.
func (s *server) conversionError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, raster2pdf.ErrConfiguration):
		code = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	case errors.Is(err, raster2pdf.ErrRasterTooLarge):
		code = http.StatusRequestEntityTooLarge
	case errors.Is(err, raster2pdf.ErrBrowserConnect), errors.Is(err, raster2pdf.ErrPageLoad):
		code = http.StatusBadGateway
	case errors.Is(err, raster2pdf.ErrCapture):
		code = http.StatusUnprocessableEntity
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("conversion failed", "error", err)
	}
	return echo.NewHTTPError(code, err.Error())
}

// handleError renders every error as {"error": "..."}.
func (s *server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if err := c.JSON(code, errorResponse{Error: msg}); err != nil {
		s.logger.Error("writing error response", "error", err)
	}
}

// isRemoteURL reports whether raw is an absolute http(s) URL. Other schemes,
// file:// in particular, would expose the server's filesystem.
func isRemoteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// attachmentName sanitizes a client-provided file name.
func attachmentName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return defaultAttachmentName
	}
	if filepath.Ext(name) == "" {
		name += ".pdf"
	}
	return name
}

// runServe starts the HTTP server and blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment, newPool poolFactory) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergePageFlags(flags.page, cfg)
	mergeCanvasFlags(flags.canvas, cfg)
	mergeCaptureFlags(flags.capture, cfg)
	if flags.resolution != "" {
		cfg.Resolution = flags.resolution
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.maxUploadMB != 0 {
		cfg.Server.MaxUploadMB = flags.maxUploadMB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	env.Config = cfg

	base, err := buildOptions(cfg)
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

	// Requests are logged at info.
	logger := newLogger(env.Stderr, slog.LevelInfo, flags.common.verbose, flags.common.quiet, envCfg.LogLevel)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = defaultAddr
	}
	maxUpload := cfg.Server.MaxUploadMB
	if maxUpload == 0 {
		maxUpload = defaultMaxUploadMB
	}

	pool := newPool(raster2pdf.ResolvePoolSize(resolveWorkers(flags.workers, envCfg)), converterOptions(logger, timeout, env)...)
	defer pool.Close()

	e := newServer(pool, base, capture, maxUpload, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()
	logger.Info("listening", "addr", addr, "workers", pool.Size(), "max_upload_mb", maxUpload)
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving on %s (POST /convert, GET /healthz)\n", addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
