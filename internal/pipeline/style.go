package pipeline

import "strings"

// CaptureCSS resets page chrome so the screenshot starts at the content edge
// and renders backgrounds.
const CaptureCSS = `html, body { margin: 0; padding: 0; background: #fff; }
body { font-family: -apple-system, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; line-height: 1.5; padding: 24px; box-sizing: border-box; }
* { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
img { max-width: 100%; }
pre { white-space: pre-wrap; }`

// InjectStyle inserts css as a <style> block: before </head> when present,
// else right after the opening <body> tag, else at the very start.
func InjectStyle(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}

	block := "<style>" + escapeStyle(css) + "</style>"
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.Index(htmlContent[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return htmlContent[:pos] + block + htmlContent[pos:]
		}
	}
	return block + htmlContent
}

// escapeStyle keeps css from closing its <style> element.
func escapeStyle(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
