package progress

import "context"

// CreateSubtask adds an incomplete subtask to a category.
func (s *Service) CreateSubtask(ctx context.Context, task, category, name string) (string, error) {
	name, err := requireName("subtask", name)
	if err != nil {
		return "", err
	}
	task, category = Normalize(task), Normalize(category)

	err = s.mutate(ctx, true, func(doc Document) error {
		cat, err := findCategory(doc, task, category)
		if err != nil {
			return err
		}
		if _, exists := cat.Subtasks[name]; exists {
			return newError(KindConflict, "subtask %q already exists in %s/%s", name, task, category)
		}
		cat.Subtasks[name] = false
		return nil
	})
	return name, err
}

// ToggleSubtask flips a subtask's completion flag and returns the new value.
func (s *Service) ToggleSubtask(ctx context.Context, task, category, name string) (bool, error) {
	task, category, name = Normalize(task), Normalize(category), Normalize(name)

	var done bool
	err := s.mutate(ctx, true, func(doc Document) error {
		cat, err := findCategory(doc, task, category)
		if err != nil {
			return err
		}
		current, ok := cat.Subtasks[name]
		if !ok {
			return newError(KindNotFound, "subtask %q not found in %s/%s", name, task, category)
		}
		done = !current
		cat.Subtasks[name] = done
		return nil
	})
	return done, err
}

// DeleteSubtask removes a subtask.
func (s *Service) DeleteSubtask(ctx context.Context, task, category, name string) error {
	task, category, name = Normalize(task), Normalize(category), Normalize(name)

	return s.mutate(ctx, true, func(doc Document) error {
		cat, err := findCategory(doc, task, category)
		if err != nil {
			return err
		}
		if _, ok := cat.Subtasks[name]; !ok {
			return newError(KindNotFound, "subtask %q not found in %s/%s", name, task, category)
		}
		delete(cat.Subtasks, name)
		return nil
	})
}
