package topics

import (
	"github.com/charmbracelet/glamour"
)

// Renderer turns raw topic content into what gets printed. The ext
// argument is the topic file's extension, so a renderer can pass
// formats it does not understand through untouched.
type Renderer interface {
	Render(content, ext string) string
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(content, ext string) string

// Render calls f.
func (f RendererFunc) Render(content, ext string) string {
	return f(content, ext)
}

// Plain prints content exactly as stored.
var Plain Renderer = RendererFunc(func(content, _ string) string {
	return content
})

// MarkdownRenderer renders .md topics with glamour. Other extensions,
// and any glamour failure, fall back to the raw text.
type MarkdownRenderer struct {
	// Style is a glamour style name or style file path. Empty or
	// "auto" picks light or dark from the terminal background.
	Style string
	// Width word-wraps output at the given column when positive.
	Width int
}

// NewMarkdownRenderer returns a MarkdownRenderer with automatic style
// detection and no fixed width.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{Style: "auto"}
}

func (r *MarkdownRenderer) Render(content, ext string) string {
	if ext != ".md" {
		return content
	}

	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.Style != "" && r.Style != "auto" {
		opts = []glamour.TermRendererOption{glamour.WithStylePath(r.Style)}
	}
	if r.Width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.Width))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return content
	}
	out, err := tr.Render(content)
	if err != nil {
		return content
	}
	return out
}
