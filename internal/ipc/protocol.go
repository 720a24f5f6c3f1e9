// Package ipc carries newline-delimited JSON requests over a unix socket
// between the voice-canvas daemon and its CLI clients.
package ipc

import "time"

type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// NoteInfo is the wire summary of one document.
type NoteInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Active    bool      `json:"active"`
	Words     int       `json:"words"`
	Chars     int       `json:"chars"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Response struct {
	OK         bool       `json:"ok"`
	State      string     `json:"state,omitempty"`
	Listening  bool       `json:"listening,omitempty"`
	Activated  bool       `json:"activated,omitempty"`
	Permission string     `json:"permission,omitempty"`
	Interim    string     `json:"interim,omitempty"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
	SavedAt    *time.Time `json:"saved_at,omitempty"`
	Notes      []NoteInfo `json:"notes,omitempty"`
}
