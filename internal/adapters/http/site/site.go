// Package site holds the embedded HTML pages and stylesheet of the
// prediction UI.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// Page names.
const (
	PageIndex       = "index.html"
	PageResult      = "result.html"
	PageError       = "error.html"
	PageLeaderboard = "leaderboard.html"
)

// Error constants
var (
	ErrParse  = errors.New("site template parse failed")
	ErrRender = errors.New("site template render failed")
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// IndexView is the data of the form page.
type IndexView struct {
	Features   []string
	TimeFormat string
}

// ResultView is the data of the prediction page. Magnitude is preformatted.
type ResultView struct {
	Magnitude string
}

// ErrorView is the data of the error page.
type ErrorView struct {
	Message string
}

// LeaderboardView is the data of the leaderboard page.
type LeaderboardView struct {
	Columns []string
	Rows    [][]string
}

// Renderer executes the embedded pages. It is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageIndex, PageResult, PageError, PageLeaderboard} {
		t, err := template.New(name).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustNewRenderer is NewRenderer that panics on error.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes page with status. The page is buffered so a failing template
// yields a 500 with a plain-text body instead of a partial page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		err := fmt.Errorf("%w: unknown page %s", ErrRender, page)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, page, data); err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrRender, page, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// FS returns an http.FileSystem for the embedded static assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// Register attaches the static asset routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}
