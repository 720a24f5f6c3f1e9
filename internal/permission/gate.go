// Package permission resolves microphone access through a configured probe.
package permission

import (
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Decision is the tri-state outcome of a microphone permission request.
type Decision string

const (
	DecisionUnknown Decision = "unknown"
	DecisionGranted Decision = "granted"
	DecisionDenied  Decision = "denied"
)

// Gate asks the platform for microphone access.
type Gate interface {
	Request(context.Context) Decision
}

// ExecGate probes microphone availability by running a configured command.
// Exit status zero grants access; anything else denies it.
type ExecGate struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecGate builds a probe-based gate. An empty argv always denies.
func NewExecGate(argv []string, logger *slog.Logger) *ExecGate {
	return &ExecGate{argv: argv, timeout: 3 * time.Second, logger: logger}
}

func (g *ExecGate) Request(ctx context.Context) Decision {
	if len(g.argv) == 0 {
		g.logWarn("microphone probe not configured; denying permission")
		return DecisionDenied
	}

	probeCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, g.argv[0], g.argv[1:]...)
	if err := cmd.Run(); err != nil {
		g.logWarn("microphone probe failed", "command", g.argv[0], "error", err.Error())
		return DecisionDenied
	}
	return DecisionGranted
}

func (g *ExecGate) logWarn(msg string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Warn(msg, args...)
}

// Static is a fixed-outcome gate used in tests and headless wiring.
type Static Decision

func (s Static) Request(context.Context) Decision {
	return Decision(s)
}
