package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates holds the parsed page templates.
type Templates struct {
	page *template.Template
}

func LoadTemplates() (*Templates, error) {
	tmpl, err := template.New("form.html").Funcs(template.FuncMap{
		"noticeClass": func(kind string) string {
			switch kind {
			case "success":
				return "notice notice-success"
			case "validation":
				return "notice notice-warning"
			default:
				return "notice notice-error"
			}
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Templates{page: tmpl}, nil
}

// Render executes the page into a buffer first so a failing template never
// leaves a half-written response.
func (ts *Templates) Render(w http.ResponseWriter, data any) error {
	var buf bytes.Buffer
	if err := ts.page.ExecuteTemplate(&buf, "form.html", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

func (a *API) render(w http.ResponseWriter, data any) {
	if err := a.templates.Render(w, data); err != nil {
		a.logger.Error("render page failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
