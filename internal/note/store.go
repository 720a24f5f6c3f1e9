package note

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"

	"github.com/naruto-161/voice-canvas/internal/transcript"
)

// DefaultSaveDelay is the trailing-edge autosave debounce window.
const DefaultSaveDelay = 1000 * time.Millisecond

// Store owns the in-memory note collection and drives persistence. All
// mutating operations are safe for concurrent use; content edits are saved
// through a debounced trailing write, structural edits are saved immediately.
type Store struct {
	storage Storage
	logger  *slog.Logger
	saver   func(func())
	now     func() time.Time
	newID   func() string

	mu          sync.Mutex
	notes       []Note
	activeID    string
	autosave    bool
	dirty       bool
	lastSavedAt time.Time
}

// NewStore loads the collection from storage, bootstrapping a single empty
// note when nothing usable is persisted.
func NewStore(storage Storage, saveDelay time.Duration, logger *slog.Logger) *Store {
	if saveDelay <= 0 {
		saveDelay = DefaultSaveDelay
	}
	s := &Store{
		storage:  storage,
		logger:   logger,
		saver:    debounce.New(saveDelay),
		now:      time.Now,
		newID:    uuid.NewString,
		autosave: true,
	}
	s.load()
	return s
}

func (s *Store) load() {
	notes, err := s.storage.LoadNotes()
	if err != nil {
		s.logWarn("note load failed; starting fresh", "error", err.Error())
		notes = nil
	}
	prefs, err := s.storage.LoadPrefs()
	if err != nil {
		s.logWarn("preference load failed; using defaults", "error", err.Error())
		prefs = Prefs{Autosave: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = notes
	s.autosave = prefs.Autosave
	if len(s.notes) == 0 {
		s.notes = []Note{s.blankNoteLocked()}
	}
	s.activeID = s.notes[len(s.notes)-1].ID
	for _, n := range s.notes {
		if n.ID == prefs.ActiveID {
			s.activeID = n.ID
			break
		}
	}
}

// Append joins dictated text onto the active note and schedules a save.
func (s *Store) Append(text string) error {
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndexLocked()
	if idx < 0 {
		return fmt.Errorf("no active note")
	}
	s.notes[idx].Content = transcript.Append(s.notes[idx].Content, text)
	s.notes[idx].UpdatedAt = s.now()
	s.scheduleSaveLocked()
	return nil
}

// ReplaceContent overwrites the active note's content and schedules a save.
func (s *Store) ReplaceContent(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndexLocked()
	if idx < 0 {
		return fmt.Errorf("no active note")
	}
	s.notes[idx].Content = content
	s.notes[idx].UpdatedAt = s.now()
	s.scheduleSaveLocked()
	return nil
}

// SaveNow persists immediately, superseding any pending debounced save.
func (s *Store) SaveNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Create appends a new empty note and makes it active.
func (s *Store) Create() Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.blankNoteLocked()
	s.notes = append(s.notes, n)
	s.activeID = n.ID
	s.persistAllLocked()
	return n
}

// Delete removes a note. When the active note is removed, the last remaining
// note becomes active; removing the final note leaves no active note.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("no note with id %q", id)
	}
	s.notes = append(s.notes[:idx], s.notes[idx+1:]...)
	if s.activeID == id {
		s.activeID = ""
		if len(s.notes) > 0 {
			s.activeID = s.notes[len(s.notes)-1].ID
		}
	}
	s.persistAllLocked()
	return nil
}

// Rename retitles a note.
func (s *Store) Rename(id, title string) error {
	if title == "" {
		return fmt.Errorf("note title cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("no note with id %q", id)
	}
	s.notes[idx].Title = title
	s.notes[idx].UpdatedAt = s.now()
	s.persistAllLocked()
	return nil
}

// Duplicate copies a note's content under a fresh identity. The selection is
// left unchanged.
func (s *Store) Duplicate(id string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Note{}, fmt.Errorf("no note with id %q", id)
	}
	src := s.notes[idx]
	now := s.now()
	dup := Note{
		ID:        s.newID(),
		Title:     src.Title + " (copy)",
		Content:   src.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes = append(s.notes, dup)
	s.persistAllLocked()
	return dup, nil
}

// SetActive selects a note for subsequent dictation.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return fmt.Errorf("no note with id %q", id)
	}
	s.activeID = id
	s.savePrefsLocked()
	return nil
}

// ToggleAutosave flips the autosave preference and reports the new value.
// Edits made while autosave was off stay in memory until the next save
// trigger; the toggle itself never flushes.
func (s *Store) ToggleAutosave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autosave = !s.autosave
	s.savePrefsLocked()
	return s.autosave
}

// Notes returns a snapshot of the collection in insertion order.
func (s *Store) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Note(nil), s.notes...)
}

// Active returns the currently selected note.
func (s *Store) Active() (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndexLocked()
	if idx < 0 {
		return Note{}, false
	}
	return s.notes[idx], true
}

// LastSavedAt reports when the collection last reached storage.
func (s *Store) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}

// Autosave reports whether debounced saving is enabled.
func (s *Store) Autosave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autosave
}

func (s *Store) blankNoteLocked() Note {
	now := s.now()
	return Note{
		ID:        s.newID(),
		Title:     fmt.Sprintf("Note_%d", len(s.notes)+1),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Store) indexLocked(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) activeIndexLocked() int {
	return s.indexLocked(s.activeID)
}

// scheduleSaveLocked marks the collection dirty and arms the trailing saver.
// A flush that finds the dirty flag already cleared is a no-op, which is how
// SaveNow supersedes a pending timer.
func (s *Store) scheduleSaveLocked() {
	s.dirty = true
	if !s.autosave {
		return
	}
	s.saver(s.flush)
}

func (s *Store) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	_ = s.persistLocked()
}

func (s *Store) persistLocked() error {
	if err := s.storage.SaveNotes(s.notes); err != nil {
		s.logWarn("note save failed", "error", err.Error())
		return err
	}
	s.dirty = false
	s.lastSavedAt = s.now()
	return nil
}

func (s *Store) persistAllLocked() {
	_ = s.persistLocked()
	s.savePrefsLocked()
}

func (s *Store) savePrefsLocked() {
	prefs := Prefs{ActiveID: s.activeID, Autosave: s.autosave}
	if err := s.storage.SavePrefs(prefs); err != nil {
		s.logWarn("preference save failed", "error", err.Error())
	}
}

func (s *Store) logWarn(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, args...)
}
