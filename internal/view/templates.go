package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/corpsite/corpsite/internal/rbac/snapshot"
	"github.com/corpsite/corpsite/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CurrentPath string
	PrincipalID int64
	Data        any
}

// NewEngine parses templates at build-time. Permission helpers are bound
// to a snapshot per render; until then they deny.
func NewEngine() (*Engine, error) {
	funcMap := snapshot.FuncMap(nil)
	funcMap["formatDate"] = func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006 15:04")
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with the snapshot bound to r's context.
// A request without a snapshot renders as if nothing were granted.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, err := e.templates.Clone()
	if err != nil {
		return err
	}
	tpl.Funcs(snapshot.FuncMap(snapshot.FromContext(r.Context())))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tpl.ExecuteTemplate(w, name, data)
}
