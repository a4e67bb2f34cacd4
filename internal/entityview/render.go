package entityview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/sushihentaime/companyblog/internal/userservice"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// Page is passed to every template.
type Page struct {
	Title   string
	Account *userservice.User
	Alerts  []string
	Base    string
	Return  string
	Data    any
}

func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}

		t, err := template.New(base).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", base, err)
		}
		r.pages[strings.TrimSuffix(base, ".html")] = t
	}

	return r, nil
}

// Render writes the named page with status. Nothing is written if the template fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	buf := new(bytes.Buffer)
	if err := t.ExecuteTemplate(buf, "layout", page); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
