// Package hints builds actionable suggestions appended to CLI error output.
// Every hint renders as "\n  hint: <text>".
package hints

import (
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-raster2pdf/internal/fileutil"
)

// IsInContainer reports whether the process runs inside Docker. Tests
// override it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect suggests environment variables that usually fix a
// failed Chrome launch.
func ForBrowserConnect() string {
	var out []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("CI") != "true" {
		out = append(out, "set CI=true to launch Chrome without sandbox")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		out = append(out, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	return join(out)
}

// ForTimeout suggests a longer capture timeout.
func ForTimeout() string {
	return format("for long pages, raise --timeout")
}

// ForElementNotFound reminds which selector was used.
func ForElementNotFound(selector string) string {
	return format("no element matches " + selector + "; check --selector")
}

// ForMargins explains how margins consume the page.
func ForMargins(pageWidth, pageHeight float64) string {
	return format("left+right must stay below " + strconv.FormatFloat(pageWidth, 'f', -1, 64) +
		" mm and top+bottom below " + strconv.FormatFloat(pageHeight, 'f', -1, 64) + " mm")
}

// ForConfigNotFound suggests --config or a file in the user config dir.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, "go-raster2pdf") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory covers output write failures.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForUnsupportedInput lists accepted input kinds.
func ForUnsupportedInput(exts []string) string {
	if len(exts) == 0 {
		return ""
	}
	return format("accepted: " + strings.Join(exts, ", ") + ", http(s) URLs or directories")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func join(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return format(strings.Join(parts, "; "))
}
