package progress

import "context"

// CreateTask adds an inactive task with no categories.
func (s *Service) CreateTask(ctx context.Context, name string) (string, error) {
	name, err := requireName("task", name)
	if err != nil {
		return "", err
	}

	err = s.mutate(ctx, true, func(doc Document) error {
		if _, exists := doc[name]; exists {
			return newError(KindConflict, "task %q already exists", name)
		}
		doc[name] = NewTask()
		return nil
	})
	return name, err
}

// RenameTask moves a task to a new name, keeping its contents.
// Renaming a task to its current name succeeds without changes.
func (s *Service) RenameTask(ctx context.Context, oldName, newName string) (string, error) {
	newName, err := requireName("new task", newName)
	if err != nil {
		return "", err
	}
	oldName = Normalize(oldName)

	err = s.mutate(ctx, true, func(doc Document) error {
		task, err := findTask(doc, oldName)
		if err != nil {
			return err
		}
		if newName != oldName {
			if _, exists := doc[newName]; exists {
				return newError(KindConflict, "task %q already exists", newName)
			}
		}
		delete(doc, oldName)
		doc[newName] = task
		return nil
	})
	return newName, err
}

// ToggleTaskActive flips a task's active flag and returns the new value.
func (s *Service) ToggleTaskActive(ctx context.Context, name string) (bool, error) {
	name = Normalize(name)

	var active bool
	err := s.mutate(ctx, true, func(doc Document) error {
		task, err := findTask(doc, name)
		if err != nil {
			return err
		}
		task.Active = !task.Active
		active = task.Active
		return nil
	})
	return active, err
}

// DeleteTask removes a task with all its categories.
func (s *Service) DeleteTask(ctx context.Context, name string) error {
	name = Normalize(name)

	return s.mutate(ctx, true, func(doc Document) error {
		if _, err := findTask(doc, name); err != nil {
			return err
		}
		delete(doc, name)
		return nil
	})
}
