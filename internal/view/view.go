// Package view renders the server-side pages: the read-only shared note and
// the editor.
package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"jotjot/internal/preview"
)

// Phase is the state of a shared view.
type Phase int

const (
	Loading Phase = iota
	Found
	NotFound
)

func (p Phase) String() string {
	switch p {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "loading"
	}
}

// Fetcher retrieves shared content by id.
type Fetcher interface {
	Get(ctx context.Context, id string) (string, error)
}

// SharedView is the read-only view of one share. It starts in Loading and
// moves once to Found or NotFound.
type SharedView struct {
	ID      string
	Phase   Phase
	Content string
	Err     error
}

// NewSharedView returns a view of id in the Loading phase.
func NewSharedView(id string) *SharedView {
	return &SharedView{ID: id}
}

// Load fetches the content. Any fetch error, or empty content, ends in
// NotFound. Calls after the first have no effect.
func (v *SharedView) Load(ctx context.Context, f Fetcher) Phase {
	if v.Phase != Loading {
		return v.Phase
	}
	content, err := f.Get(ctx, v.ID)
	switch {
	case err != nil:
		v.Phase, v.Err = NotFound, err
	case strings.TrimSpace(content) == "":
		v.Phase = NotFound
	default:
		v.Phase, v.Content = Found, content
	}
	return v.Phase
}

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type sharedPage struct {
	Meta    preview.Metadata
	Phase   string
	Content template.HTML
}

// RenderShared writes the page of v with meta in its head. Found content is
// written as-is: authors are the only writers of stored notes.
func RenderShared(w io.Writer, v *SharedView, meta preview.Metadata) error {
	data := sharedPage{
		Meta:    meta,
		Phase:   v.Phase.String(),
		Content: template.HTML(v.Content),
	}
	if err := pages.ExecuteTemplate(w, "shared.html", data); err != nil {
		return fmt.Errorf("failed to render shared page: %w", err)
	}
	return nil
}

// RenderEditor writes the editor page.
func RenderEditor(w io.Writer) error {
	if err := pages.ExecuteTemplate(w, "editor.html", preview.DefaultMetadata()); err != nil {
		return fmt.Errorf("failed to render editor page: %w", err)
	}
	return nil
}
