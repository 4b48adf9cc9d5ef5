package view

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/yuin/goldmark"
)

//go:embed content/*.md
var contentFS embed.FS

// RenderContent converts an embedded markdown file to HTML. Missing files
// render as empty.
func RenderContent(name string) template.HTML {
	src, err := contentFS.ReadFile("content/" + name)
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
