package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/progressr/internal/progress"
)

// Terminal prints reports to a terminal, downsampling colours to what it supports.
type Terminal struct {
	// Out is the colour-aware writer; set Out.Profile to force a profile.
	Out *colorprofile.Writer

	// Width caps the markdown word wrap.
	Width int

	// Plain skips markdown rendering and prints the raw markdown.
	Plain bool
}

// NewTerminal creates a Terminal writing to w with a profile detected from the environment.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{
		Out:   colorprofile.NewWriter(w, os.Environ()),
		Width: 80,
	}
}

// Print writes the summary header and every active task.
func (t *Terminal) Print(doc progress.Document) error {
	r := Build(doc)

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(fmt.Sprintf("#%06X", r.Color))).
		Render(fmt.Sprintf("%s  %d%% across %d active", r.Title, r.Aggregate, r.ActiveTasks))
	if _, err := fmt.Fprintln(t.Out, header); err != nil {
		return err
	}

	if r.ActiveTasks == 0 {
		_, err := fmt.Fprintln(t.Out, EmptyDescription)
		return err
	}

	var sections []string
	for _, name := range doc.TaskNames() {
		if doc[name].Active {
			sections = append(sections, Markdown(name, doc[name]))
		}
	}
	body := t.render(strings.Join(sections, "\n---\n\n"))
	_, err := fmt.Fprintln(t.Out, body)
	return err
}

// render renders markdown with glamour, falling back to the raw text.
func (t *Terminal) render(content string) string {
	if t.Plain {
		return strings.TrimSuffix(content, "\n")
	}

	width := t.Width
	if width <= 0 || width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}
