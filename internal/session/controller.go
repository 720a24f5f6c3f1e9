// Package session coordinates the dictation lifecycle: permission, engine
// ownership, command-phrase classification, and document inserts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/naruto-161/voice-canvas/internal/config"
	"github.com/naruto-161/voice-canvas/internal/fsm"
	"github.com/naruto-161/voice-canvas/internal/permission"
	"github.com/naruto-161/voice-canvas/internal/speech"
	"github.com/naruto-161/voice-canvas/internal/transcript"
)

// Snapshot is the externally visible session state, pushed on every change.
type Snapshot struct {
	State      fsm.State
	Listening  bool
	Activated  bool
	Permission fsm.Permission
	Interim    string
}

// Controller owns the engine handle and the session state machine. Engine
// callbacks and public operations serialize on one mutex, so each result is
// fully classified before the next event is handled.
type Controller struct {
	logger   *slog.Logger
	phrases  config.PhraseConfig
	gate     permission.Gate
	inserter Inserter
	notifier Notifier

	// OnState and OnInterim, when set before first use, receive pushes for
	// indicator rendering and live preview.
	OnState   func(Snapshot)
	OnInterim func(string)

	newEngine func(speech.Events) (speech.Engine, error)

	mu            sync.Mutex
	state         fsm.State
	engine        speech.Engine
	interim       string
	stopRequested bool
	unavailable   bool
	engineCtx     context.Context
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	cfg config.Config,
	gate permission.Gate,
	inserter Inserter,
	notifier Notifier,
) *Controller {
	if gate == nil {
		gate = permission.Static(permission.DecisionDenied)
	}
	if inserter == nil {
		inserter = InserterFunc(func(string) error { return nil })
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	c := &Controller{
		logger:    logger,
		phrases:   cfg.Phrases,
		gate:      gate,
		inserter:  inserter,
		notifier:  notifier,
		state:     fsm.StateIdle,
		engineCtx: context.Background(),
	}
	c.newEngine = func(events speech.Events) (speech.Engine, error) {
		return speech.New(cfg.Engine, events, logger)
	}
	return c
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:      c.state,
		Listening:  c.state.Listening(),
		Activated:  c.state.Activated(),
		Permission: c.state.Permission(),
		Interim:    c.interim,
	}
}

// RequestPermission resolves microphone access through the gate. Re-requesting
// after a grant is a no-op; re-requesting after a denial retries.
func (c *Controller) RequestPermission(ctx context.Context) fsm.Permission {
	c.mu.Lock()
	if c.state.Permission() == fsm.PermissionGranted {
		c.mu.Unlock()
		return fsm.PermissionGranted
	}
	if err := c.transitionLocked(fsm.EventRequest); err != nil {
		state := c.state
		c.mu.Unlock()
		c.logWarn("permission request ignored", "state", string(state))
		return state.Permission()
	}
	c.mu.Unlock()

	decision := c.gate.Request(ctx)

	c.mu.Lock()
	event := fsm.EventDeny
	if decision == permission.DecisionGranted {
		event = fsm.EventGrant
	}
	_ = c.transitionLocked(event)
	result := c.state.Permission()
	c.mu.Unlock()

	if result == fsm.PermissionDenied {
		c.notifier.PermissionDenied(ctx)
	}
	c.pushState()
	return result
}

// StartListening lazily constructs the engine handle and starts it. A missing
// recognition capability is permanent: the first attempt logs it, every later
// attempt stays off silently.
func (c *Controller) StartListening(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Listening() {
		c.mu.Unlock()
		return nil
	}
	if c.unavailable {
		c.mu.Unlock()
		return nil
	}
	if c.state.Permission() != fsm.PermissionGranted {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot listen from state %s: microphone permission not granted", state)
	}

	if c.engine == nil {
		engine, err := c.newEngine(speech.Events{
			OnResult: c.handleResult,
			OnError:  c.handleError,
			OnEnd:    c.handleEnd,
		})
		if errors.Is(err, speech.ErrUnavailable) {
			c.unavailable = true
			c.mu.Unlock()
			c.logWarn("speech recognition unavailable; listening disabled")
			return nil
		}
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.engine = engine
	}

	if err := c.engine.Start(ctx); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("start listening: %w", err)
	}
	c.engineCtx = ctx
	c.stopRequested = false
	_ = c.transitionLocked(fsm.EventMicOn)
	c.mu.Unlock()

	c.pushState()
	return nil
}

// StopListening turns the engine off intentionally. Idempotent and safe to
// call mid-restart: the stop flag is set before the engine stop so the
// termination handler never restarts a session the user just ended.
func (c *Controller) StopListening(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.Listening() {
		c.mu.Unlock()
		return nil
	}
	wasActivated := c.state.Activated()
	c.stopRequested = true
	c.interim = ""
	_ = c.transitionLocked(fsm.EventMicOff)
	engine := c.engine
	c.mu.Unlock()

	if engine != nil {
		if err := engine.Stop(); err != nil {
			c.logWarn("engine stop failed", "error", err.Error())
		}
	}
	if wasActivated {
		c.notifier.DictationStopped(ctx)
	}
	c.pushInterim("")
	c.pushState()
	return nil
}

// ToggleActivation flips whether engine output is routed into the document.
// Listening is untouched.
func (c *Controller) ToggleActivation(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.Listening() {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot toggle dictation from state %s", state)
	}

	if c.state.Activated() {
		c.interim = ""
		_ = c.transitionLocked(fsm.EventDeactivate)
		c.mu.Unlock()
		c.notifier.DictationStopped(ctx)
		c.pushInterim("")
	} else {
		_ = c.transitionLocked(fsm.EventActivate)
		c.mu.Unlock()
		c.notifier.DictationStarted(ctx)
	}

	c.pushState()
	return nil
}

// handleResult classifies one recognizer hypothesis. Final results containing
// a command phrase are consumed whole; dictated finals append exactly once.
func (c *Controller) handleResult(r speech.Result) {
	c.mu.Lock()
	if !c.state.Listening() {
		c.mu.Unlock()
		return
	}
	activated := c.state.Activated()

	switch {
	case !activated && r.Final && transcript.ContainsPhrase(r.Text, c.phrases.Activate):
		_ = c.transitionLocked(fsm.EventActivate)
		c.mu.Unlock()
		c.notifier.DictationStarted(c.engineCtx)
		c.pushState()
	case activated && r.Final && transcript.ContainsPhrase(r.Text, c.phrases.Deactivate):
		c.interim = ""
		_ = c.transitionLocked(fsm.EventDeactivate)
		c.mu.Unlock()
		c.notifier.DictationStopped(c.engineCtx)
		c.pushInterim("")
		c.pushState()
	case activated && !r.Final:
		c.interim = r.Text
		c.mu.Unlock()
		c.pushInterim(r.Text)
	case activated:
		c.interim = ""
		c.mu.Unlock()
		if err := c.inserter.Insert(r.Text); err != nil {
			c.logWarn("document insert failed", "error", err.Error())
		}
		c.pushInterim("")
	default:
		c.mu.Unlock()
	}
}

// handleError logs recognizer errors. Benign categories never escalate and
// never transition state; the termination handler covers any restart.
func (c *Controller) handleError(code string) {
	switch code {
	case speech.ErrorNoSpeech, speech.ErrorAborted:
		c.logDebug("recognizer reported benign error", "code", code)
	default:
		c.logWarn("recognizer reported error", "code", code)
	}
}

// handleEnd reacts to the engine run loop ending. An intentional stop is
// absorbed; an unintentional end while listening relaunches the same handle,
// giving up after a single failed relaunch.
func (c *Controller) handleEnd() {
	c.mu.Lock()
	if c.stopRequested {
		c.stopRequested = false
		c.mu.Unlock()
		return
	}
	if !c.state.Listening() {
		c.mu.Unlock()
		return
	}

	if err := c.engine.Start(c.engineCtx); err == nil {
		c.mu.Unlock()
		c.logDebug("engine relaunched after termination")
		return
	}

	c.interim = ""
	_ = c.transitionLocked(fsm.EventMicOff)
	c.mu.Unlock()

	c.logWarn("engine relaunch failed; listening disabled for this session")
	c.notifier.ListeningFailed(c.engineCtx)
	c.pushInterim("")
	c.pushState()
}

func (c *Controller) transitionLocked(event fsm.Event) error {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) pushState() {
	if c.OnState == nil {
		return
	}
	c.OnState(c.Snapshot())
}

func (c *Controller) pushInterim(text string) {
	if c.OnInterim == nil {
		return
	}
	c.OnInterim(text)
}

func (c *Controller) logWarn(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, args...)
}

func (c *Controller) logDebug(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, args...)
}
