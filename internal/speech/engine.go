// Package speech wraps streaming recognition backends behind a minimal
// engine capability: start, stop, and ordered text/lifecycle events.
package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/naruto-161/voice-canvas/internal/config"
)

// ErrUnavailable indicates the platform offers no recognition capability.
// Callers must treat it as permanent, not retry.
var ErrUnavailable = errors.New("speech recognition capability unavailable")

// Benign error codes emitted by recognition backends. Neither is ever
// escalated to the user.
const (
	ErrorNoSpeech = "no-speech"
	ErrorAborted  = "aborted"
)

// Result is one recognizer hypothesis.
type Result struct {
	Text  string
	Final bool
}

// Events receives engine callbacks. All callbacks for one engine are invoked
// from a single goroutine in delivery order. OnEnd fires exactly once per
// run, whether the run loop ended voluntarily or not.
type Events struct {
	OnResult func(Result)
	OnError  func(code string)
	OnEnd    func()
}

func (e Events) result(r Result) {
	if e.OnResult != nil {
		e.OnResult(r)
	}
}

func (e Events) errorCode(code string) {
	if e.OnError != nil {
		e.OnError(code)
	}
}

func (e Events) end() {
	if e.OnEnd != nil {
		e.OnEnd()
	}
}

// Engine is a reusable recognition handle. Start and Stop are idempotent;
// the same handle survives stop/start cycles within one process lifetime.
type Engine interface {
	Start(context.Context) error
	Stop() error
}

// wireEvent is the JSON event shape shared by both backends.
type wireEvent struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New selects an engine backend from config. ErrUnavailable means the
// capability is absent on this installation.
func New(cfg config.EngineConfig, events Events, logger *slog.Logger) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "websocket":
		if strings.TrimSpace(cfg.Gateway) == "" {
			return nil, ErrUnavailable
		}
		return NewGatewayEngine(cfg, events, logger)
	case "exec":
		if len(cfg.Cmd.Argv) == 0 {
			return nil, ErrUnavailable
		}
		return NewExecEngine(cfg, events, logger), nil
	default:
		return nil, ErrUnavailable
	}
}
