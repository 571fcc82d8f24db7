// Package web serves the HTML pages of the application.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"resurate/internal/feedback"
	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/telemetry"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"auth", "home", "loading", "resume", "upload", "wipe"}

var funcs = template.FuncMap{
	"tier": func(score int) string { return string(feedback.TierFor(score)) },
	"tierLabel": func(score int) string {
		return feedback.TierFor(score).Label()
	},
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

type pageData struct {
	Title string
	User  string
	Data  any
}

func (r *renderer) render(c *gin.Context, status int, name, title string, data any) {
	tmpl, ok := r.pages[name]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page")
		return
	}
	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "layout", pageData{
		Title: title,
		User:  middleware.UserNameFromContext(c),
		Data:  data,
	})
	if err != nil {
		telemetry.Error("web.render_failed", map[string]any{"page": name, "error": err})
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
