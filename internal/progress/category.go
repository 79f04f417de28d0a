package progress

import "context"

// CreateCategory adds an empty category to a task.
func (s *Service) CreateCategory(ctx context.Context, task, name string) (string, error) {
	name, err := requireName("category", name)
	if err != nil {
		return "", err
	}
	task = Normalize(task)

	err = s.mutate(ctx, true, func(doc Document) error {
		t, err := findTask(doc, task)
		if err != nil {
			return err
		}
		if _, exists := t.Categories[name]; exists {
			return newError(KindConflict, "category %q already exists in task %q", name, task)
		}
		t.Categories[name] = NewCategory()
		return nil
	})
	return name, err
}

// RenameCategory moves a category to a new name within its task.
// Renaming a category to its current name succeeds without changes.
func (s *Service) RenameCategory(ctx context.Context, task, oldName, newName string) (string, error) {
	newName, err := requireName("new category", newName)
	if err != nil {
		return "", err
	}
	task, oldName = Normalize(task), Normalize(oldName)

	err = s.mutate(ctx, true, func(doc Document) error {
		cat, err := findCategory(doc, task, oldName)
		if err != nil {
			return err
		}
		t := doc[task]
		if newName != oldName {
			if _, exists := t.Categories[newName]; exists {
				return newError(KindConflict, "category %q already exists in task %q", newName, task)
			}
		}
		delete(t.Categories, oldName)
		t.Categories[newName] = cat
		return nil
	})
	return newName, err
}

// DeleteCategory removes a category and its subtasks.
func (s *Service) DeleteCategory(ctx context.Context, task, name string) error {
	task, name = Normalize(task), Normalize(name)

	return s.mutate(ctx, true, func(doc Document) error {
		if _, err := findCategory(doc, task, name); err != nil {
			return err
		}
		delete(doc[task].Categories, name)
		return nil
	})
}
