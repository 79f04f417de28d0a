package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mark3labs/progressr/internal/progress"
)

// Markdown renders one task as a standalone markdown document with every subtask listed.
func Markdown(name string, task *progress.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%d%%)\n\n", strings.ToUpper(name), progress.TaskPercent(task))
	if !task.Active {
		b.WriteString("_inactive_\n\n")
	}
	if len(task.Categories) == 0 {
		b.WriteString("No categories yet.\n")
		return b.String()
	}

	for _, catName := range task.CategoryNames() {
		cat := task.Categories[catName]
		pct := progress.CategoryPercent(cat)
		fmt.Fprintf(&b, "## %s: %d%%\n\n", capitalize(catName), pct)
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSuffix(ProgressBar(pct), zeroWidth))
		if cat.Note != "" {
			for _, line := range strings.Split(cat.Note, "\n") {
				fmt.Fprintf(&b, "> %s\n", line)
			}
			b.WriteString("\n")
		}
		for _, sub := range cat.SubtaskNames() {
			mark := " "
			if cat.Subtasks[sub] {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, sub)
		}
		if len(cat.Subtasks) > 0 {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Export writes one markdown file per task into dir, named after the task's slug.
// With activeOnly set, inactive tasks are skipped. Names that share a slug get a
// numeric suffix in name order. Returns the written paths.
func Export(dir string, doc progress.Document, activeOnly bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	var paths []string
	used := make(map[string]bool)
	for _, name := range doc.TaskNames() {
		task := doc[name]
		if activeOnly && !task.Active {
			continue
		}
		fileSlug := slug.Make(name)
		if fileSlug == "" {
			fileSlug = "task"
		}
		base := fileSlug
		for i := 2; used[fileSlug]; i++ {
			fileSlug = fmt.Sprintf("%s-%d", base, i)
		}
		used[fileSlug] = true
		path := filepath.Join(dir, fileSlug+".md")
		if err := os.WriteFile(path, []byte(Markdown(name, task)), 0644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
