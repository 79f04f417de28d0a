package progress

import "math"

// roundPercent rounds half to even so results match the values already published.
func roundPercent(x float64) int {
	return int(math.RoundToEven(x))
}

// CategoryPercent is round(done / total * 100), or 0 for a category without subtasks.
// The division comes first; 23 of 40 is 57, not 58.
func CategoryPercent(c *Category) int {
	if c == nil || len(c.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, ok := range c.Subtasks {
		if ok {
			done++
		}
	}
	return roundPercent(float64(done) / float64(len(c.Subtasks)) * 100)
}

// TaskPercent is the rounded mean of the task's category percentages, or 0 without categories.
func TaskPercent(t *Task) int {
	if t == nil || len(t.Categories) == 0 {
		return 0
	}
	sum := 0
	for _, c := range t.Categories {
		sum += CategoryPercent(c)
	}
	return roundPercent(float64(sum) / float64(len(t.Categories)))
}

// AggregatePercent is the rounded mean of TaskPercent over active tasks, or 0 if none are active.
func AggregatePercent(doc Document) int {
	sum, n := 0, 0
	for _, t := range doc {
		if t == nil || !t.Active {
			continue
		}
		sum += TaskPercent(t)
		n++
	}
	if n == 0 {
		return 0
	}
	return roundPercent(float64(sum) / float64(n))
}

// Summary is a read-only view of a document with computed percentages.
type Summary struct {
	Aggregate   int           `json:"aggregate"`
	ActiveTasks int           `json:"active_tasks"`
	Tasks       []TaskSummary `json:"tasks"`
}

// TaskSummary describes one task.
type TaskSummary struct {
	Name       string            `json:"name"`
	Active     bool              `json:"active"`
	Percent    int               `json:"percent"`
	Categories []CategorySummary `json:"categories"`
}

// CategorySummary describes one category.
type CategorySummary struct {
	Name    string `json:"name"`
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Note    string `json:"note,omitempty"`
}

// Summarize computes a Summary with tasks and categories in name order.
func Summarize(doc Document) *Summary {
	s := &Summary{
		Aggregate: AggregatePercent(doc),
		Tasks:     make([]TaskSummary, 0, len(doc)),
	}
	for _, name := range doc.TaskNames() {
		t := doc[name]
		if t.Active {
			s.ActiveTasks++
		}
		ts := TaskSummary{
			Name:       name,
			Active:     t.Active,
			Percent:    TaskPercent(t),
			Categories: make([]CategorySummary, 0, len(t.Categories)),
		}
		for _, catName := range t.CategoryNames() {
			c := t.Categories[catName]
			done := 0
			for _, ok := range c.Subtasks {
				if ok {
					done++
				}
			}
			ts.Categories = append(ts.Categories, CategorySummary{
				Name:    catName,
				Done:    done,
				Total:   len(c.Subtasks),
				Percent: CategoryPercent(c),
				Note:    c.Note,
			})
		}
		s.Tasks = append(s.Tasks, ts)
	}
	return s
}
