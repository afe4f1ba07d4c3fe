// Package report collects workflow output into a single sanitised HTML page.
package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"sync"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/agentpatterns/llms/provider"
	"github.com/smallnest/agentpatterns/log"
)

type entry struct {
	title string
	body  string
	image string
}

// HTML is a display.Reporter that accumulates sections and renders them as
// one HTML document. Section bodies are treated as Markdown.
type HTML struct {
	Title string

	mu      sync.Mutex
	entries []entry
	policy  *bluemonday.Policy
}

// NewHTML creates an empty report.
func NewHTML(title string) *HTML {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	return &HTML{Title: title, policy: policy}
}

// Section appends a titled Markdown block.
func (h *HTML) Section(title, body string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry{title: title, body: body})
}

// Image appends a titled image. The file is embedded as a data URL so the
// report stays self-contained; an unreadable file is linked by path instead.
func (h *HTML) Image(title, path string) {
	src := path
	if mime, data, err := provider.EncodeImage(path); err == nil {
		src = provider.DataURL(mime, data)
	} else {
		log.Warn("report: linking %s instead of embedding it: %v", path, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry{title: title, image: src})
}

// Len returns the number of recorded entries.
func (h *HTML) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *HTML) renderMarkdown(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return h.policy.SanitizeBytes(markdown.Render(doc, renderer))
}

// Render returns the complete HTML document.
func (h *HTML) Render() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(h.Title))
	buf.WriteString("</head>\n<body>\n")
	if h.Title != "" {
		fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(h.Title))
	}

	for _, e := range h.entries {
		buf.WriteString("<section>\n")
		if e.title != "" {
			fmt.Fprintf(&buf, "<h2>%s</h2>\n", html.EscapeString(e.title))
		}
		if e.image != "" {
			img := fmt.Sprintf("<img src=\"%s\" alt=\"%s\">", html.EscapeString(e.image), html.EscapeString(e.title))
			buf.WriteString(h.policy.Sanitize(img))
			buf.WriteString("\n")
		}
		if e.body != "" {
			buf.Write(h.renderMarkdown(e.body))
		}
		buf.WriteString("</section>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}

// WriteTo writes the rendered document to w.
func (h *HTML) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Render())
	return int64(n), err
}

// Save writes the rendered document to path.
func (h *HTML) Save(path string) error {
	if err := os.WriteFile(path, h.Render(), 0o644); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
