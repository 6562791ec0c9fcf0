package webapp

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Renderer executes named page templates against a shared layout. It
// satisfies the account package's Renderer interface.
type Renderer struct {
	templates *template.Template
	log       *slog.Logger
}

func NewRenderer(log *slog.Logger) (*Renderer, error) {
	if log == nil {
		log = slog.Default()
	}
	templates, err := template.New("").Funcs(template.FuncMap{
		// The QR image is a data: URI generated server-side; the default
		// sanitizer would reject it.
		"safeURL": func(s string) template.URL { return template.URL(s) },
	}).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates, log: log}, nil
}

// MustNewRenderer is for wiring at startup, where a broken template set
// should stop the process.
func MustNewRenderer(log *slog.Logger) *Renderer {
	r, err := NewRenderer(log)
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes the named template with the given data. Template failures
// after the header is written cannot be recovered, so the output is rendered
// to a buffer first.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		r.log.Error("template render failed", slog.String("template", name), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
