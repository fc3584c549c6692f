package views

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// md omits raw HTML found in the source
var md = goldmark.New()

// renderMarkdown converts narrative Markdown into HTML for the page template
func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
