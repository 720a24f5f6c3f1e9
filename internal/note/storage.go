package note

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	notesFile = "notes.json"
	prefsFile = "prefs.json"
)

// FileStorage keeps notes and preferences as JSON files in a data directory.
type FileStorage struct {
	dir string
}

// NewFileStorage builds file-backed storage rooted at dir. When dir is empty
// the XDG data directory is used.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		resolved, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir reports the resolved data directory.
func (s *FileStorage) Dir() string {
	return s.dir
}

func (s *FileStorage) LoadNotes() ([]Note, error) {
	var notes []Note
	if err := s.readJSON(notesFile, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *FileStorage) SaveNotes(notes []Note) error {
	return s.writeJSON(notesFile, notes)
}

func (s *FileStorage) LoadPrefs() (Prefs, error) {
	prefs := Prefs{Autosave: true}
	if err := s.readJSON(prefsFile, &prefs); err != nil {
		return Prefs{Autosave: true}, err
	}
	return prefs, nil
}

func (s *FileStorage) SavePrefs(prefs Prefs) error {
	return s.writeJSON(prefsFile, prefs)
}

func (s *FileStorage) readJSON(name string, out any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeJSON writes through a temp file and renames, so a crash mid-write
// never leaves a truncated document behind.
func (s *FileStorage) writeJSON(name string, value any) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	raw = append(raw, '\n')

	tmp := filepath.Join(s.dir, name+".tmp")
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func defaultDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "voice-canvas"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "voice-canvas"), nil
}
