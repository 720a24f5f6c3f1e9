// Package output copies note content to the system clipboard.
package output

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/atotto/clipboard"

	"github.com/naruto-161/voice-canvas/internal/config"
)

// Copier writes text to the clipboard through a configured command, falling
// back to the platform clipboard when none is configured.
type Copier struct {
	argv []string
}

// NewCopier constructs a clipboard copier from runtime config.
func NewCopier(cfg config.Config) *Copier {
	return &Copier{argv: cfg.Clipboard.Argv}
}

// Copy places text on the clipboard. Empty text is a no-op.
func (c *Copier) Copy(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	if len(c.argv) == 0 {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("set clipboard: %w", err)
		}
		return nil
	}

	cmdCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := runCommandWithInput(cmdCtx, c.argv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	return nil
}

// runCommandWithInput executes argv and writes input to its stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
