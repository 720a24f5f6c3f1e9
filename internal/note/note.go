// Package note holds the document collection: an ordered set of notes, an
// active selection, and debounced persistence to a storage backend.
package note

import "time"

// Note is one dictation document.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Prefs are user preferences persisted separately from note content.
type Prefs struct {
	ActiveID string `json:"active_id"`
	Autosave bool   `json:"autosave"`
}

// Storage persists the note collection and preferences. Implementations must
// tolerate loads from a fresh installation by returning empty values.
type Storage interface {
	LoadNotes() ([]Note, error)
	SaveNotes(notes []Note) error
	LoadPrefs() (Prefs, error)
	SavePrefs(prefs Prefs) error
}
