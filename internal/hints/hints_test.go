package hints

// ForBrowserConnect tests are not parallel: they set environment variables
// and swap the package-level IsInContainer.

import (
	"strings"
	"testing"
)

func stubContainer(t *testing.T, inContainer bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return inContainer }
}

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		env         map[string]string
		wantContain []string
		wantExclude []string
	}{
		{
			name:        "docker without CI suggests CI=true",
			container:   true,
			env:         map[string]string{"CI": "", "GITHUB_ACTIONS": "", "GITLAB_CI": "", "ROD_BROWSER_BIN": ""},
			wantContain: []string{"hint:", "CI=true", "ROD_BROWSER_BIN"},
		},
		{
			name:        "github actions without CI=true",
			env:         map[string]string{"CI": "", "GITHUB_ACTIONS": "1", "GITLAB_CI": "", "ROD_BROWSER_BIN": ""},
			wantContain: []string{"CI=true"},
		},
		{
			name:        "CI=true already set",
			container:   true,
			env:         map[string]string{"CI": "true", "ROD_BROWSER_BIN": ""},
			wantContain: []string{"ROD_BROWSER_BIN"},
			wantExclude: []string{"CI=true"},
		},
		{
			name:        "browser bin set and not in container",
			env:         map[string]string{"CI": "", "GITHUB_ACTIONS": "", "GITLAB_CI": "", "ROD_BROWSER_BIN": "/usr/bin/chromium"},
			wantExclude: []string{"hint:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubContainer(t, tt.container)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got := ForBrowserConnect()
			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("ForBrowserConnect() = %q, missing %q", got, want)
				}
			}
			for _, bad := range tt.wantExclude {
				if strings.Contains(got, bad) {
					t.Errorf("ForBrowserConnect() = %q, should not contain %q", got, bad)
				}
			}
		})
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"timeout", ForTimeout(), "--timeout"},
		{"element", ForElementNotFound("#report"), "#report"},
		{"margins", ForMargins(210, 297), "210 mm"},
		{"output", ForOutputDirectory(), "writable"},
		{"inputs", ForUnsupportedInput([]string{".png", ".md"}), ".png, .md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !strings.HasPrefix(tt.got, "\n  hint: ") {
				t.Errorf("hint %q lacks prefix", tt.got)
			}
			if !strings.Contains(tt.got, tt.want) {
				t.Errorf("hint %q missing %q", tt.got, tt.want)
			}
		})
	}
}

func TestForUnsupportedInput_Empty(t *testing.T) {
	t.Parallel()

	if got := ForUnsupportedInput(nil); got != "" {
		t.Errorf("ForUnsupportedInput(nil) = %q, want empty", got)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{"work.yaml", "/home/u/.config/go-raster2pdf/work.yaml"})
	if !strings.Contains(got, "--config") {
		t.Errorf("missing --config suggestion: %q", got)
	}
	if !strings.Contains(got, "create /home/u/.config/go-raster2pdf/work.yaml") {
		t.Errorf("missing user config suggestion: %q", got)
	}
}
