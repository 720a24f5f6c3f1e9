package session

import "context"

// Inserter receives final dictated text destined for the active document.
type Inserter interface {
	Insert(text string) error
}

// InserterFunc adapts a plain function to the Inserter interface.
type InserterFunc func(text string) error

func (f InserterFunc) Insert(text string) error {
	return f(text)
}

// Notifier is the session-facing subset of notification behavior.
type Notifier interface {
	DictationStarted(context.Context)
	DictationStopped(context.Context)
	PermissionDenied(context.Context)
	ListeningFailed(context.Context)
}

// noopNotifier preserves session flow when no notifier is wired.
type noopNotifier struct{}

func (noopNotifier) DictationStarted(context.Context) {}
func (noopNotifier) DictationStopped(context.Context) {}
func (noopNotifier) PermissionDenied(context.Context) {}
func (noopNotifier) ListeningFailed(context.Context)  {}
