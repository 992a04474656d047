package delivery

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, Segoe UI, Helvetica, Arial, sans-serif; line-height: 1.5; max-width: 860px; margin: 0 auto; padding: 24px; color: #24292f; }
pre, code { background: #f6f8fa; border-radius: 4px; }
pre { padding: 12px; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 4px 8px; }
hr { margin: 32px 0; }
</style>
</head>
<body>
%s</body>
</html>
`

// RenderHTML converts markdown to a standalone HTML document titled title.
func RenderHTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return fmt.Sprintf(htmlShell, html.EscapeString(title), body.String()), nil
}
