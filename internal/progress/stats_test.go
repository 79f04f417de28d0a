package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func category(subtasks ...bool) *Category {
	c := NewCategory()
	for i, done := range subtasks {
		c.Subtasks[string(rune('a'+i))] = done
	}
	return c
}

func categoryOf(done, total int) *Category {
	flags := make([]bool, total)
	for i := range done {
		flags[i] = true
	}
	return category(flags...)
}

func TestCategoryPercent(t *testing.T) {
	tests := []struct {
		name string
		cat  *Category
		want int
	}{
		{"empty", category(), 0},
		{"nil", nil, 0},
		{"none done", category(false, false), 0},
		{"all done", category(true, true, true), 100},
		{"one of three", category(true, false, false), 33},
		{"two of three", category(true, true, false), 67},
		{"half to even rounds down", category(true, false, false, false, false, false, false, false), 12},
		{"divides before scaling", categoryOf(23, 40), 57},
		{"half to even rounds up", categoryOf(3, 8), 38},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryPercent(tt.cat))
		})
	}
}

func TestTaskPercent(t *testing.T) {
	assert.Equal(t, 0, TaskPercent(NewTask()))

	task := NewTask()
	task.Categories["empty"] = category()
	task.Categories["done"] = category(true, true, true)
	assert.Equal(t, 50, TaskPercent(task))

	task.Categories["third"] = category(true, false, false)
	// (0 + 100 + 33) / 3 = 44.33
	assert.Equal(t, 44, TaskPercent(task))
}

func TestAggregatePercent(t *testing.T) {
	doc := Document{}
	assert.Equal(t, 0, AggregatePercent(doc))

	done := NewTask()
	done.Active = true
	done.Categories["x"] = category(true)

	half := NewTask()
	half.Active = true
	half.Categories["x"] = category(true, false)

	ignored := NewTask()
	ignored.Categories["x"] = category(false)

	doc["done"], doc["half"], doc["ignored"] = done, half, ignored
	assert.Equal(t, 75, AggregatePercent(doc))
}

func TestSummarize(t *testing.T) {
	task := NewTask()
	task.Active = true
	task.Categories["code"] = category(true, false)
	task.Categories["art"] = category(true)
	task.Categories["art"].Note = "nearly there"
	doc := Document{"beta": task, "alpha": NewTask()}

	s := Summarize(doc)
	require.Len(t, s.Tasks, 2)
	assert.Equal(t, "alpha", s.Tasks[0].Name)
	assert.Equal(t, 1, s.ActiveTasks)
	assert.Equal(t, 75, s.Aggregate)

	beta := s.Tasks[1]
	assert.Equal(t, 75, beta.Percent)
	require.Len(t, beta.Categories, 2)
	assert.Equal(t, CategorySummary{Name: "art", Done: 1, Total: 1, Percent: 100, Note: "nearly there"}, beta.Categories[0])
	assert.Equal(t, CategorySummary{Name: "code", Done: 1, Total: 2, Percent: 50}, beta.Categories[1])
}
