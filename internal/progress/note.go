package progress

import "context"

// Notes are not part of the published report, so these operations never signal.

// SetNote replaces a category's note.
func (s *Service) SetNote(ctx context.Context, task, category, note string) error {
	task, category = Normalize(task), Normalize(category)

	return s.mutate(ctx, false, func(doc Document) error {
		cat, err := findCategory(doc, task, category)
		if err != nil {
			return err
		}
		cat.Note = note
		return nil
	})
}

// ClearNote empties a category's note.
func (s *Service) ClearNote(ctx context.Context, task, category string) error {
	return s.SetNote(ctx, task, category, "")
}

// Note returns a category's current note.
func (s *Service) Note(ctx context.Context, task, category string) (string, error) {
	doc, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	cat, err := findCategory(doc, Normalize(task), Normalize(category))
	if err != nil {
		return "", err
	}
	return cat.Note, nil
}
