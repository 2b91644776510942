package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGoldmarkRenderer_Render
// ---------------------------------------------------------------------------

func TestGoldmarkRenderer_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		markdown     string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "heading gets an id",
			markdown:     "# Hello World",
			wantContains: []string{`<h1 id="hello-world">Hello World</h1>`},
		},
		{
			name:         "wraps output in a full document",
			markdown:     "text",
			wantContains: []string{"<!DOCTYPE html>", "<body>", "</html>"},
		},
		{
			name:         "GFM table",
			markdown:     "| a | b |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:         "highlight markers become mark tags",
			markdown:     "some ==important== text",
			wantContains: []string{"<mark>important</mark>"},
			wantExcludes: []string{"==important==", markStart, markEnd},
		},
		{
			name:         "fenced code is highlighted inline",
			markdown:     "```go\nfunc main() {}\n```",
			wantContains: []string{"<pre", "style="},
		},
		{
			name:         "raw HTML is not passed through",
			markdown:     "<script>alert(1)</script>",
			wantExcludes: []string{"<script>alert(1)</script>"},
		},
	}

	r := NewGoldmarkRenderer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Render(context.Background(), tt.markdown)
			if err != nil {
				t.Fatalf("Render() unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() missing %q in:\n%s", want, got)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("Render() should not contain %q", bad)
				}
			}
		})
	}
}

func TestGoldmarkRenderer_Render_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkRenderer().Render(ctx, "# Title")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestPreprocessMarkdown
// ---------------------------------------------------------------------------

func TestPreprocessMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"CRLF normalized", "a\r\nb", "a\nb"},
		{"lone CR normalized", "a\rb", "a\nb"},
		{"blank runs compressed", "a\n\n\n\nb", "a\n\nb"},
		{"highlight marked", "==x==", markStart + "x" + markEnd},
		{"unmatched equals kept", "a == b", "a == b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := preprocessMarkdown(tt.input); got != tt.want {
				t.Errorf("preprocessMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
