package note

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu        sync.Mutex
	notes     []Note
	prefs     Prefs
	noteSaves int
	loadErr   error
	saveErr   error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{prefs: Prefs{Autosave: true}}
}

func (m *memoryStorage) LoadNotes() ([]Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]Note(nil), m.notes...), nil
}

func (m *memoryStorage) SaveNotes(notes []Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.notes = append([]Note(nil), notes...)
	m.noteSaves++
	return nil
}

func (m *memoryStorage) LoadPrefs() (Prefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *memoryStorage) SavePrefs(prefs Prefs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = prefs
	return nil
}

func (m *memoryStorage) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.noteSaves
}

func (m *memoryStorage) savedNotes() []Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Note(nil), m.notes...)
}

func newTestStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	s := NewStore(storage, 20*time.Millisecond, nil)
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return s
}

func TestNewStoreBootstrapsSingleEmptyNote(t *testing.T) {
	s := newTestStore(t, newMemoryStorage())

	notes := s.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, "Note_1", notes[0].Title)
	require.Empty(t, notes[0].Content)

	active, ok := s.Active()
	require.True(t, ok)
	require.Equal(t, notes[0].ID, active.ID)
	require.True(t, s.Autosave())
}

func TestNewStoreBootstrapsOnLoadFailure(t *testing.T) {
	storage := newMemoryStorage()
	storage.loadErr = fmt.Errorf("disk unreadable")

	s := newTestStore(t, storage)
	notes := s.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, "Note_1", notes[0].Title)
}

func TestNewStoreRestoresActiveSelection(t *testing.T) {
	storage := newMemoryStorage()
	storage.notes = []Note{
		{ID: "a", Title: "Note_1"},
		{ID: "b", Title: "Note_2"},
		{ID: "c", Title: "Note_3"},
	}
	storage.prefs = Prefs{ActiveID: "b", Autosave: false}

	s := newTestStore(t, storage)
	active, ok := s.Active()
	require.True(t, ok)
	require.Equal(t, "b", active.ID)
	require.False(t, s.Autosave())
}

func TestAppendSeparatorRules(t *testing.T) {
	tests := []struct {
		name   string
		pieces []string
		want   string
	}{
		{"first piece lands verbatim", []string{"hello"}, "hello"},
		{"later pieces gain one space", []string{"hello", "world"}, "hello world"},
		{"leading whitespace suppresses separator", []string{"hello", " world"}, "hello world"},
		{"empty piece is ignored", []string{"hello", "", "again"}, "hello again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, newMemoryStorage())
			for _, piece := range tt.pieces {
				require.NoError(t, s.Append(piece))
			}
			active, _ := s.Active()
			require.Equal(t, tt.want, active.Content)
		})
	}
}

func TestReplaceContentOverwritesAndSchedulesSave(t *testing.T) {
	storage := newMemoryStorage()
	s := newTestStore(t, storage)
	base := storage.savedCount()

	require.NoError(t, s.Append("dictated text"))
	require.NoError(t, s.ReplaceContent("typed instead"))

	active, _ := s.Active()
	require.Equal(t, "typed instead", active.Content)
	require.False(t, active.UpdatedAt.IsZero())

	require.Eventually(t, func() bool {
		return storage.savedCount() == base+1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "typed instead", storage.savedNotes()[0].Content)

	only, _ := s.Active()
	require.NoError(t, s.Delete(only.ID))
	require.Error(t, s.ReplaceContent("nowhere to land"))
}

func TestDebounceCoalescesRapidAppends(t *testing.T) {
	storage := newMemoryStorage()
	s := newTestStore(t, storage)
	base := storage.savedCount()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append("word"))
	}

	require.Eventually(t, func() bool {
		return storage.savedCount() == base+1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, base+1, storage.savedCount(), "trailing saver must fire once per burst")
	saved := storage.savedNotes()
	require.Equal(t, "word word word word word", saved[0].Content)
}

func TestSaveNowSupersedesPendingDebounce(t *testing.T) {
	storage := newMemoryStorage()
	s := newTestStore(t, storage)
	base := storage.savedCount()

	require.NoError(t, s.Append("hello"))
	require.NoError(t, s.SaveNow())
	require.Equal(t, base+1, storage.savedCount())

	before := storage.savedNotes()
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, base+1, storage.savedCount(), "pending timer must fire as a no-op")
	require.Equal(t, before, storage.savedNotes())
	require.False(t, s.LastSavedAt().IsZero())
}

func TestSaveNowIsIdempotentOnBytes(t *testing.T) {
	storage := newMemoryStorage()
	s := newTestStore(t, storage)

	require.NoError(t, s.Append("stable content"))
	require.NoError(t, s.SaveNow())
	first := storage.savedNotes()

	require.NoError(t, s.SaveNow())
	require.Equal(t, first, storage.savedNotes())
}

func TestCreateNumbersTitlesByCollectionSize(t *testing.T) {
	s := newTestStore(t, newMemoryStorage())

	second := s.Create()
	third := s.Create()
	require.Equal(t, "Note_2", second.Title)
	require.Equal(t, "Note_3", third.Title)

	active, _ := s.Active()
	require.Equal(t, third.ID, active.ID)
}

func TestDeleteReselectsLastRemaining(t *testing.T) {
	s := newTestStore(t, newMemoryStorage())
	s.Create()
	third := s.Create()
	require.NoError(t, s.SetActive(third.ID))

	require.NoError(t, s.Delete(third.ID))
	active, _ := s.Active()
	require.Equal(t, "Note_2", active.Title)
	require.Len(t, s.Notes(), 2)
}

func TestDeleteLastNoteLeavesNoActive(t *testing.T) {
	s := newTestStore(t, newMemoryStorage())
	only, _ := s.Active()
	require.NoError(t, s.Append("contents"))

	require.NoError(t, s.Delete(only.ID))
	require.Empty(t, s.Notes())
	_, ok := s.Active()
	require.False(t, ok)
	require.Error(t, s.Append("nowhere to land"))
}

func TestDeleteUnknownIDFails(t *testing.T) {
	s := newTestStore(t, newMemoryStorage())
	require.Error(t, s.Delete("missing"))
}

func TestRename(t *testing.T) {
	s := newTestStore(t, newMemoryStorage())
	active, _ := s.Active()

	require.NoError(t, s.Rename(active.ID, "Groceries"))
	renamed, _ := s.Active()
	require.Equal(t, "Groceries", renamed.Title)

	require.Error(t, s.Rename(active.ID, ""))
	require.Error(t, s.Rename("missing", "Anything"))
}

func TestDuplicateCopiesContentUnderFreshIdentity(t *testing.T) {
	s := newTestStore(t, newMemoryStorage())
	src, _ := s.Active()
	require.NoError(t, s.Append("original body"))
	src, _ = s.Active()

	dup, err := s.Duplicate(src.ID)
	require.NoError(t, err)
	require.NotEqual(t, src.ID, dup.ID)
	require.Equal(t, "Note_1 (copy)", dup.Title)
	require.Equal(t, "original body", dup.Content)

	active, _ := s.Active()
	require.Equal(t, src.ID, active.ID, "duplicating must not move the selection")
	require.Len(t, s.Notes(), 2)
}

func TestToggleAutosaveSuspendsDebouncedSaves(t *testing.T) {
	storage := newMemoryStorage()
	s := newTestStore(t, storage)
	require.False(t, s.ToggleAutosave())

	base := storage.savedCount()
	require.NoError(t, s.Append("unsaved while off"))
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, base, storage.savedCount(), "autosave off must not schedule writes")

	// Re-enabling flips the flag only; prior edits stay in memory.
	require.True(t, s.ToggleAutosave())
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, base, storage.savedCount(), "toggling on must not flush retroactively")

	// The next save trigger picks them up.
	require.NoError(t, s.Append("back on"))
	require.Eventually(t, func() bool {
		return storage.savedCount() == base+1
	}, time.Second, 5*time.Millisecond)
	require.Contains(t, storage.savedNotes()[0].Content, "unsaved while off")
}

func TestSaveNowStillWorksWithAutosaveOff(t *testing.T) {
	storage := newMemoryStorage()
	s := newTestStore(t, storage)
	s.ToggleAutosave()
	base := storage.savedCount()

	require.NoError(t, s.Append("manual save"))
	require.NoError(t, s.SaveNow())
	require.Equal(t, base+1, storage.savedCount())
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	storage := newMemoryStorage()
	s := newTestStore(t, storage)
	storage.saveErr = fmt.Errorf("disk full")

	require.NoError(t, s.Append("kept in memory"))
	require.Error(t, s.SaveNow())
	active, _ := s.Active()
	require.Equal(t, "kept in memory", active.Content)
	require.True(t, s.LastSavedAt().IsZero())
}

func TestSetActivePersistsSelection(t *testing.T) {
	storage := newMemoryStorage()
	s := newTestStore(t, storage)
	second := s.Create()
	first := s.Notes()[0]

	require.NoError(t, s.SetActive(first.ID))
	require.Equal(t, first.ID, storage.prefs.ActiveID)
	require.Error(t, s.SetActive("missing"))

	active, _ := s.Active()
	require.Equal(t, first.ID, active.ID)
	require.NotEqual(t, second.ID, active.ID)
}
