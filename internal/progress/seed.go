package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SeedMarker is written next to the store once seeding has run.
const SeedMarker = ".seed_complete"

// Seed copies the document at seedPath into the store the first time it runs.
// It reports whether a copy happened. A missing seed file is not an error.
func (s *Store) Seed(seedPath string) (bool, error) {
	if seedPath == "" {
		return false, nil
	}
	marker := filepath.Join(filepath.Dir(s.path), SeedMarker)
	if _, err := os.Stat(marker); err == nil {
		return false, nil
	}
	if _, err := os.Stat(seedPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking seed file: %w", err)
	}

	same, err := samePath(seedPath, s.path)
	if err != nil {
		return false, err
	}
	if !same {
		doc, err := ReadDocument(seedPath)
		if err != nil {
			return false, fmt.Errorf("reading seed file: %w", err)
		}
		if err := s.Save(doc); err != nil {
			return false, fmt.Errorf("writing seeded store: %w", err)
		}
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := os.WriteFile(marker, []byte(stamp+"\n"), 0644); err != nil {
		return false, fmt.Errorf("writing seed marker: %w", err)
	}
	return !same, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
