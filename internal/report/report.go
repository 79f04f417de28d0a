// Package report turns a progress document into the published progress message and
// its terminal and markdown renditions.
package report

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mark3labs/progressr/internal/progress"
)

const (
	// Title heads every published report.
	Title = "🚀 Development Progress 🚀"

	// EmptyDescription is published when no task is active.
	EmptyDescription = "No projects are currently active."

	// Greyple is the colour of a report with no active tasks.
	Greyple = 0x99AAB5

	// MaxDescription is the longest description the channel accepts, in characters.
	MaxDescription = 4096

	barSegments  = 20
	filled       = "🟩"
	empty        = "⬜"
	zeroWidth    = "\u200b"
	projectBreak = "\n---\n"
)

// Report is the rendered state of the active tasks.
type Report struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	ActiveTasks int    `json:"active_tasks"`
	Aggregate   int    `json:"aggregate"`
}

// Build renders the report for the active tasks in doc, in name order.
func Build(doc progress.Document) Report {
	r := Report{Title: Title}

	var active []string
	for _, name := range doc.TaskNames() {
		if doc[name].Active {
			active = append(active, name)
		}
	}
	r.ActiveTasks = len(active)

	if len(active) == 0 {
		r.Description = EmptyDescription
		r.Color = Greyple
		return r
	}

	r.Aggregate = progress.AggregatePercent(doc)
	r.Color = Color(r.Aggregate)

	var parts []string
	for _, name := range active {
		parts = append(parts, projectLines(name, doc[name])...)
		parts = append(parts, projectBreak)
	}
	parts = parts[:len(parts)-1]

	r.Description = Truncate(strings.Join(parts, "\n"), MaxDescription)
	return r
}

// Project renders the description block of a single task.
func Project(name string, task *progress.Task) string {
	return strings.Join(projectLines(name, task), "\n")
}

func projectLines(name string, task *progress.Task) []string {
	lines := []string{
		fmt.Sprintf("__**PROJECT: %s**__", strings.ToUpper(name)),
		fmt.Sprintf("# %d%%", progress.TaskPercent(task)),
		zeroWidth,
	}
	for _, catName := range task.CategoryNames() {
		pct := progress.CategoryPercent(task.Categories[catName])
		lines = append(lines,
			fmt.Sprintf("**%s**: %d%%", capitalize(catName), pct),
			ProgressBar(pct),
		)
	}
	return lines
}

// ProgressBar draws pct as 20 segments followed by a zero-width space.
func ProgressBar(pct int) string {
	n := int(math.RoundToEven(float64(pct) / 5))
	n = max(0, min(barSegments, n))
	return strings.Repeat(filled, n) + strings.Repeat(empty, barSegments-n) + zeroWidth
}

// Color maps a percentage to an RGB value that moves from red through yellow to green.
func Color(pct int) int {
	pct = max(0, min(100, pct))
	var red, green int
	if pct < 50 {
		red = 255
		green = int(math.RoundToEven(255 * float64(pct) / 50))
	} else {
		red = int(math.RoundToEven(255 * (1 - float64(pct-50)/50)))
		green = 255
	}
	return red<<16 | green<<8
}

// Truncate cuts s to limit characters, ending it with "..." when it was too long.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
