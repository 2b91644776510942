package pipeline

import (
	"context"
	"fmt"
)

// Source is one page to prepare. Exactly one of Markdown or HTML is used;
// Markdown wins when both are set.
type Source struct {
	Markdown string
	HTML     string
	BaseDir  string // resolves relative asset paths; empty leaves them alone
	CSS      string // appended after CaptureCSS
}

// Preparer builds capture-ready HTML from a Source.
type Preparer struct {
	Markdown MarkdownRenderer
}

// NewPreparer returns a Preparer backed by Goldmark.
func NewPreparer() *Preparer {
	return &Preparer{Markdown: NewGoldmarkRenderer()}
}

// Prepare renders Markdown if needed, rewrites relative assets against
// BaseDir and injects the capture stylesheet.
func (p *Preparer) Prepare(ctx context.Context, src Source) (string, error) {
	page := src.HTML
	if src.Markdown != "" {
		var err error
		page, err = p.Markdown.Render(ctx, src.Markdown)
		if err != nil {
			return "", err
		}
	}

	page, err := RewriteAssetPaths(page, src.BaseDir)
	if err != nil {
		return "", fmt.Errorf("rewriting asset paths: %w", err)
	}

	css := CaptureCSS
	if src.CSS != "" {
		css += "\n" + src.CSS
	}
	return InjectStyle(page, css), nil
}
