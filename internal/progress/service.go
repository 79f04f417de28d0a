package progress

import (
	"context"
	"errors"

	"github.com/mark3labs/progressr/internal/logger"
)

// Signaler is told after every saved mutation that changes displayed progress.
type Signaler interface {
	Signal() error
}

// Service implements the task, category, note and subtask operations on top of a Store.
// Every operation normalizes its identifiers, validates, mutates and saves in one unit;
// a failed operation writes nothing and signals nothing.
type Service struct {
	store    *Store
	signaler Signaler
}

// NewService creates a service. signaler may be nil.
func NewService(store *Store, signaler Signaler) *Service {
	return &Service{store: store, signaler: signaler}
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// List returns the current document. A corrupt store is logged and reported as empty.
func (s *Service) List(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.store.Load()
	if errors.Is(err, ErrCorrupt) {
		logger.Warn("Serving empty document: %v", err)
		return doc, nil
	}
	return doc, err
}

// Summarize returns the current document with computed percentages.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	doc, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(doc), nil
}

// mutate runs fn as one store update and signals afterwards when requested.
func (s *Service) mutate(ctx context.Context, signal bool, fn func(Document) error) error {
	if err := s.store.Update(ctx, fn); err != nil {
		return err
	}
	if signal {
		s.notify()
	}
	return nil
}

// notify raises the update flag. The mutation is already saved, so a failure here is
// logged rather than returned.
func (s *Service) notify() {
	if s.signaler == nil {
		return
	}
	if err := s.signaler.Signal(); err != nil {
		logger.Error("Failed to signal progress update: %v", err)
	}
}

func requireName(kind, value string) (string, error) {
	name := Normalize(value)
	if name == "" {
		return "", newError(KindValidation, "%s name must not be empty", kind)
	}
	return name, nil
}

func findTask(doc Document, task string) (*Task, error) {
	t, ok := doc[task]
	if !ok {
		return nil, newError(KindNotFound, "task %q not found", task)
	}
	return t, nil
}

func findCategory(doc Document, task, category string) (*Category, error) {
	t, err := findTask(doc, task)
	if err != nil {
		return nil, err
	}
	c, ok := t.Categories[category]
	if !ok {
		return nil, newError(KindNotFound, "category %q not found in task %q", category, task)
	}
	return c, nil
}
