package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names understood by Render.
const (
	PageIndex    = "index"
	PageSignup   = "signup"
	PageLogin    = "login"
	PageMembers  = "members"
	PageAdmin    = "admin"
	PageNotFound = "notfound"
)

var pageNames = []string{PageIndex, PageSignup, PageLogin, PageMembers, PageAdmin, PageNotFound}

// Renderer turns a named page and its data into an HTML document.
type Renderer interface {
	Render(name string, data map[string]any) ([]byte, error)
}

// Templates renders the embedded pages. Every page is parsed on top of a
// clone of the shared layout, so the pages can redefine the same blocks.
type Templates struct {
	pages map[string]*template.Template
}

func New() (*Templates, error) {
	base := template.New("layout.html").Funcs(template.FuncMap{
		"content": RenderContent,
	})

	pages := make(map[string]*template.Template, len(pageNames))
	for _, page := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html"); err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", page, err)
		}
		pages[page] = t
	}

	return &Templates{pages: pages}, nil
}

func (t *Templates) Render(name string, data map[string]any) ([]byte, error) {
	page, ok := t.pages[name]
	if !ok {
		return nil, fmt.Errorf("view: unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("view: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Assets returns the public files served below every route.
func Assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
