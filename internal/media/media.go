package media

import (
	"fmt"
	"os"
	"path/filepath"
)

// Kind selects the storage folder for an artifact.
type Kind string

const (
	KindAudio Kind = "audio"
	KindImage Kind = "image"
)

// Store is a folder-backed blob store with one subdirectory per kind.
type Store struct {
	root string
}

// NewStore creates the media folders under root.
func NewStore(root string) (*Store, error) {
	for _, kind := range []Kind{KindAudio, KindImage} {
		dir := filepath.Join(root, string(kind))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

// Path returns the absolute path an artifact is (or would be) stored at.
func (s *Store) Path(kind Kind, filename string) string {
	return filepath.Join(s.root, string(kind), filename)
}

// Exists checks whether an artifact with this name is already stored.
func (s *Store) Exists(kind Kind, filename string) bool {
	_, err := os.Stat(s.Path(kind, filename))
	return err == nil
}

// Save stores a blob under the given name. Re-storing an existing name is
// a no-op: the first stored artifact wins.
func (s *Store) Save(kind Kind, filename string, data []byte) error {
	if s.Exists(kind, filename) {
		return nil
	}

	path := s.Path(kind, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}

	return nil
}

// SweepResult reports what an orphan sweep found and removed.
type SweepResult struct {
	Scanned int
	Orphans []string
	Removed int
}

// Sweep removes stored artifacts whose filename is not referenced by any
// entry. With dryRun the orphans are only reported. Adapted for media
// folders that outlive deleted or regenerated rows.
func (s *Store) Sweep(referenced map[string]bool, dryRun bool) (*SweepResult, error) {
	result := &SweepResult{}

	for _, kind := range []Kind{KindAudio, KindImage} {
		dir := filepath.Join(s.root, string(kind))
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read media directory: %w", err)
		}

		for _, de := range entries {
			if de.IsDir() {
				continue
			}
			result.Scanned++
			if referenced[de.Name()] {
				continue
			}

			result.Orphans = append(result.Orphans, de.Name())
			if dryRun {
				continue
			}
			if err := os.Remove(filepath.Join(dir, de.Name())); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to remove orphan %s: %v\n", de.Name(), err)
				continue
			}
			result.Removed++
		}
	}

	return result, nil
}
