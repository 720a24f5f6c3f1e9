// Package notify delivers toast-style session feedback over desktop DBus.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/naruto-161/voice-canvas/internal/config"
)

// Desktop sends replaceable freedesktop notifications via busctl. Later
// toasts replace earlier ones so the session never stacks stale feedback.
type Desktop struct {
	cfg      config.NotifyConfig
	logger   *slog.Logger
	messages messages

	mu     sync.Mutex
	lastID uint32
}

// NewDesktop creates a desktop notifier from config.
func NewDesktop(cfg config.NotifyConfig, logger *slog.Logger) *Desktop {
	return &Desktop{
		cfg:      cfg,
		logger:   logger,
		messages: toastMessagesFromEnv(),
	}
}

// DictationStarted signals that final results now land in the document.
func (d *Desktop) DictationStarted(ctx context.Context) {
	d.send(ctx, d.messages.dictationOn)
}

// DictationStopped signals that dictation is paused.
func (d *Desktop) DictationStopped(ctx context.Context) {
	d.send(ctx, d.messages.dictationOff)
}

// PermissionDenied surfaces a microphone access denial.
func (d *Desktop) PermissionDenied(ctx context.Context) {
	d.send(ctx, d.messages.permissionDenied)
}

// ListeningFailed surfaces a failed engine relaunch.
func (d *Desktop) ListeningFailed(ctx context.Context) {
	d.send(ctx, d.messages.listeningFailed)
}

// Dismiss closes the most recent toast, if any.
func (d *Desktop) Dismiss(ctx context.Context) {
	if !d.cfg.Enable {
		return
	}

	d.mu.Lock()
	id := d.lastID
	d.lastID = 0
	d.mu.Unlock()

	if id == 0 {
		return
	}
	d.run(ctx, func(ctx context.Context) error {
		return closeNotification(ctx, id)
	})
}

// send dispatches one replaceable toast through the configured app name.
func (d *Desktop) send(ctx context.Context, summary string) {
	if !d.cfg.Enable {
		return
	}

	d.mu.Lock()
	replaceID := d.lastID
	d.mu.Unlock()

	appName := strings.TrimSpace(d.cfg.AppName)
	if appName == "" {
		appName = "voice-canvas"
	}
	timeout := d.cfg.TimeoutMS
	if timeout <= 0 {
		timeout = 1600
	}

	d.run(ctx, func(ctx context.Context) error {
		id, err := sendNotification(ctx, appName, replaceID, summary, timeout)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.lastID = id
		d.mu.Unlock()
		return nil
	})
}

// run executes one notification operation with a bounded timeout.
func (d *Desktop) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		d.log("toast dispatch failed", err)
	}
}

func (d *Desktop) log(msg string, err error) {
	if d.logger == nil {
		return
	}
	d.logger.Warn(msg, "error", err.Error())
}
