// Package pipeline turns Markdown and HTML sources into a self-contained
// HTML page ready for a browser screenshot.
//
// Stages, in order:
//   - Markdown preprocessing (line endings, ==highlight== markers)
//   - Markdown to HTML via Goldmark with GFM and chroma highlighting
//   - rewriting of relative asset references to file:// URLs
//   - injection of the capture stylesheet and optional user CSS
//
// Rasterizing the page is the root package's job (go-rod).
package pipeline
