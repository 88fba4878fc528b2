package web

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"f1league-app/internal/model"
)

type Templates struct {
	fs   fs.FS
	base *template.Template
}

var templateFuncs = template.FuncMap{
	"add":        func(a, b int) int { return a + b },
	"awardLabel": func(key model.AwardKey) string { return key.Label() },
	"dateLabel": func(t time.Time) string {
		if t.IsZero() {
			return "TBC"
		}
		return t.Format("2 Jan 2006")
	},
}

func NewTemplates(fsys fs.FS) (*Templates, error) {
	base, err := template.New("").Funcs(templateFuncs).ParseFS(fsys, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	return &Templates{fs: fsys, base: base}, nil
}

func (t *Templates) Render(w http.ResponseWriter, name string, data any) error {
	return t.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a full page with the given status code. Nothing is
// written when execution fails.
func (t *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, err := t.base.Clone()
	if err != nil {
		return err
	}
	if _, err := tmpl.ParseFS(t.fs, "templates/"+name); err != nil {
		return err
	}
	return execute(w, status, tmpl, "layout", data)
}

func (t *Templates) RenderPartial(w http.ResponseWriter, name string, data any) error {
	tmpl, err := t.base.Clone()
	if err != nil {
		return err
	}
	return execute(w, http.StatusOK, tmpl, name, data)
}

func execute(w http.ResponseWriter, status int, tmpl *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
