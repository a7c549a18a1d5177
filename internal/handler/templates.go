// Package handler contains the HTTP handlers for Psst!: the HTML pages,
// the login/logout form posts and the JSON API.
//
// Handlers are the glue between HTTP and the services. They parse the
// request, call a service, and write a response; rules such as the post
// length limit live in the service layer, not here.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sakif/psst/internal/model"
	"github.com/sakif/psst/internal/render"
)

// pageNames are the page templates under the template directory. Each is
// parsed together with base.html, which defines the "base" layout and the
// shared "posts" list; the page fills in "content".
var pageNames = []string{"index", "user", "mentions", "error"}

// funcs are available to every template.
var funcs = template.FuncMap{
	"render": render.HTML,
	"stamp": func(t time.Time) string {
		return t.UTC().Format(model.TimestampLayout)
	},
}

// Templates holds every page, parsed once at startup.
type Templates struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// pageData is what every page template receives.
type pageData struct {
	Title string
	Nick  string // logged-in user; empty for anonymous visitors
	Flash string

	Posts   []model.Post
	User    *model.User // user page
	Subject string      // mentions page

	Heading string // error page
	Message string
}

// ParseTemplates parses base.html with each page template in dir.
//
// Each page gets its own template set because every page defines
// "content"; parsing them all into one set would keep only the last.
func ParseTemplates(dir string, logger *slog.Logger) (*Templates, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFiles(
			filepath.Join(dir, "base.html"),
			filepath.Join(dir, name+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Templates{pages: pages, logger: logger}, nil
}

// Render executes page into a buffer and only then writes status and body,
// so a template error still produces a clean 500 instead of half a page.
func (t *Templates) Render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := t.pages[page]
	if !ok {
		t.logger.Error("unknown page template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data.Title == "" {
		data.Title = "Psst!"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		t.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// RenderError shows the error page with the given status.
func (t *Templates) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := pageData{
		Title:   http.StatusText(status) + " | Psst!",
		Heading: http.StatusText(status),
		Message: message,
	}
	data.Nick, _ = nickFrom(r)
	t.Render(w, status, "error", data)
}
