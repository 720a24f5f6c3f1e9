package speech

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/naruto-161/voice-canvas/internal/config"
)

// ExecEngine runs a recognizer child process that prints one JSON event per
// stdout line. The child exiting on its own (silence timeout, crash) is the
// termination event the session controller reacts to.
type ExecEngine struct {
	argv     []string
	language string
	model    string
	events   Events
	logger   *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	running bool
}

// NewExecEngine builds a child-process recognizer handle.
func NewExecEngine(cfg config.EngineConfig, events Events, logger *slog.Logger) *ExecEngine {
	return &ExecEngine{
		argv:     cfg.Cmd.Argv,
		language: cfg.Language,
		model:    cfg.Model,
		events:   events,
		logger:   logger,
	}
}

// Start spawns the recognizer and begins reading its event stream. No-op
// when already running.
func (e *ExecEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	args := append([]string(nil), e.argv[1:]...)
	if e.language != "" {
		args = append(args, "--language", e.language)
	}
	if e.model != "" {
		args = append(args, "--model", e.model)
	}

	cmd := exec.CommandContext(ctx, e.argv[0], args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open recognizer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start recognizer %s: %w", e.argv[0], err)
	}

	e.cmd = cmd
	e.running = true
	go e.readLoop(cmd, bufio.NewScanner(stdout))
	return nil
}

// Stop kills the recognizer process. The read loop draining afterwards
// delivers the termination event. No-op when not running.
func (e *ExecEngine) Stop() error {
	e.mu.Lock()
	cmd := e.cmd
	running := e.running
	e.mu.Unlock()

	if !running || cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// readLoop decodes stdout events until the process exits.
func (e *ExecEngine) readLoop(cmd *exec.Cmd, scanner *bufio.Scanner) {
	defer func() {
		_ = cmd.Wait()
		e.mu.Lock()
		if e.cmd == cmd {
			e.cmd = nil
			e.running = false
		}
		e.mu.Unlock()
		e.events.end()
	}()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event wireEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			e.logWarn("recognizer event decode failed", "error", err.Error())
			continue
		}

		switch strings.ToLower(event.Type) {
		case "error":
			e.events.errorCode(event.Code)
		case "result", "":
			if event.Text == "" {
				continue
			}
			e.events.result(Result{Text: event.Text, Final: event.IsFinal})
		}
	}
}

func (e *ExecEngine) logWarn(msg string, args ...any) {
	if e.logger == nil {
		return
	}
	e.logger.Warn(msg, args...)
}
