package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed templates/*
var templateFS embed.FS

// NewTemplate parses every embedded email template up front.
func NewTemplate() (*Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	tp := &Template{set: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		t, err := template.New("email").ParseFS(templateFS, name)
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", name, err)
		}
		tp.set[path.Base(name)] = t
	}

	return tp, nil
}

// ParseTemplate renders the subject, plain and html parts of the named template.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	t, ok := tp.set[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown template %q", name)
	}

	parts := make([]*bytes.Buffer, 0, 3)
	for _, block := range []string{"subject", "plainBody", "htmlBody"} {
		buf := new(bytes.Buffer)
		if err := t.ExecuteTemplate(buf, block, data); err != nil {
			return nil, nil, nil, err
		}
		parts = append(parts, buf)
	}

	return parts[0], parts[1], parts[2], nil
}
