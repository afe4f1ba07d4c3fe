package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Reporter receives the human-facing output of a workflow step.
type Reporter interface {
	// Section reports a titled block of Markdown or plain text.
	Section(title, body string)
	// Image reports a generated image file.
	Image(title, path string)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	imageStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("10"))
)

// Terminal writes sections to a terminal with lipgloss styling.
type Terminal struct {
	w io.Writer
}

// NewTerminal creates a Terminal reporter writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Section(title, body string) {
	if title != "" {
		fmt.Fprintln(t.w, titleStyle.Render(title))
		fmt.Fprintln(t.w, ruleStyle.Render(strings.Repeat("─", max(len([]rune(title)), 8))))
	}
	if body != "" {
		fmt.Fprintln(t.w, body)
	}
	fmt.Fprintln(t.w)
}

func (t *Terminal) Image(title, path string) {
	if title != "" {
		fmt.Fprintln(t.w, titleStyle.Render(title))
	}
	fmt.Fprintln(t.w, imageStyle.Render("image: "+path))
	fmt.Fprintln(t.w)
}

type multi []Reporter

// Multi fans every call out to each non-nil reporter in order.
func Multi(reporters ...Reporter) Reporter {
	var m multi
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multi) Section(title, body string) {
	for _, r := range m {
		r.Section(title, body)
	}
}

func (m multi) Image(title, path string) {
	for _, r := range m {
		r.Image(title, path)
	}
}

type discard struct{}

// Discard drops everything reported to it.
var Discard Reporter = discard{}

func (discard) Section(string, string) {}
func (discard) Image(string, string)   {}

// CodeBlock wraps code in a fenced Markdown block.
func CodeBlock(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}
