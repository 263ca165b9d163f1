package wallpaper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the chosen wallpaper as {"wallpaper": "<path>"}.
type Store struct {
	path string
}

type record struct {
	Wallpaper string `json:"wallpaper"`
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Save overwrites the stored wallpaper with path.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.Marshal(record{Wallpaper: path})
	if err != nil {
		return fmt.Errorf("failed to marshal wallpaper config: %w", err)
	}

	// Atomic write
	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp wallpaper config: %w", err)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		return fmt.Errorf("failed to rename temp wallpaper config: %w", err)
	}

	return nil
}

// Load returns the stored wallpaper path. A missing, unreadable or malformed
// file, or one without the key, reports false.
func (s *Store) Load() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return "", false
	}

	if r.Wallpaper == "" {
		return "", false
	}
	return r.Wallpaper, true
}

// URI turns an absolute path into the file URI the page expects.
func URI(path string) string {
	return "file://" + path
}
