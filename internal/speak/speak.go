// Package speak reads note content aloud through a configured TTS command.
package speak

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/naruto-161/voice-canvas/internal/config"
)

// Speaker pipes text to a text-to-speech command's stdin. Without a
// configured command the speaker is inert.
type Speaker struct {
	argv []string
}

// NewSpeaker constructs a speaker from runtime config.
func NewSpeaker(cfg config.Config) *Speaker {
	return &Speaker{argv: cfg.SpeakCmd.Argv}
}

// Enabled reports whether a TTS command is configured.
func (s *Speaker) Enabled() bool {
	return len(s.argv) > 0
}

// Say speaks text. Empty text or no configured command is a no-op.
func (s *Speaker) Say(ctx context.Context, text string) error {
	if text == "" || !s.Enabled() {
		return nil
	}

	sayCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(sayCtx, s.argv[0], s.argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", s.argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start speech command %s: %w", s.argv[0], err)
	}

	if _, err := stdin.Write([]byte(text)); err != nil {
		_ = stdin.Close()
		_ = cmd.Wait()
		return fmt.Errorf("write speech text: %w", err)
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("speech command failed: %w", err)
	}
	return nil
}
