package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/progressr/internal/logger"
)

// FileName is the store document's name inside the data directory.
const FileName = "progress_data_multitask.json"

// ErrCorrupt is returned by Load when the store file exists but is not valid JSON.
var ErrCorrupt = errors.New("progress store is corrupt")

// Store persists a Document as one JSON file.
// Writes go to a temp file that is renamed over the target, so readers never see a
// partial document. Mutations through Update are serialized within this process;
// separate processes writing the same file remain last-writer-wins.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store for the document in dataDir.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, FileName)}
}

// NewStoreAt creates a store for an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing or empty file yields an empty document and no
// error. A malformed file yields an empty document and an error wrapping ErrCorrupt.
func (s *Store) Load() (Document, error) {
	return ReadDocument(s.path)
}

// ReadDocument reads a progress document from path with the same rules as Store.Load.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("reading progress store: %w", err)
	}
	if len(data) == 0 {
		return Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if doc == nil {
		doc = Document{}
	}
	doc.fill()
	return doc, nil
}

// Save writes the whole document atomically.
func (s *Store) Save(doc Document) error {
	return WriteJSON(s.path, doc)
}

// Update runs one load-mutate-save unit. If fn returns an error nothing is written.
// A corrupt file is copied aside to <file>.corrupt before it is replaced.
func (s *Store) Update(ctx context.Context, fn func(Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load()
	corrupt := errors.Is(err, ErrCorrupt)
	if err != nil && !corrupt {
		return err
	}
	if corrupt {
		logger.Warn("Progress store is corrupt, starting from an empty document: %v", err)
	}

	if err := fn(doc); err != nil {
		return err
	}

	if corrupt {
		if err := s.preserveCorrupt(); err != nil {
			return err
		}
	}
	return s.Save(doc)
}

func (s *Store) preserveCorrupt() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading corrupt store: %w", err)
	}
	backup := s.path + ".corrupt"
	if err := os.WriteFile(backup, data, 0644); err != nil {
		return fmt.Errorf("preserving corrupt store: %w", err)
	}
	logger.Warn("Corrupt progress store preserved at %s", backup)
	return nil
}

// WriteJSON marshals v with indentation and atomically replaces path with it.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
