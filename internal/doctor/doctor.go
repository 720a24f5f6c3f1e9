// Package doctor runs readiness diagnostics for config, speech engine,
// storage, and desktop integration.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/naruto-161/voice-canvas/internal/config"
	"github.com/naruto-161/voice-canvas/internal/speech"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkEngine(cfg.Config.Engine))
	checks = append(checks, checkCommand(cfg.Config.ProbeCmd.Argv, "probe_cmd"))
	checks = append(checks, checkClipboard(cfg.Config))
	if len(cfg.Config.SpeakCmd.Argv) > 0 {
		checks = append(checks, checkCommand(cfg.Config.SpeakCmd.Argv, "speak_cmd"))
	}
	if cfg.Config.Notify.Enable {
		checks = append(checks, checkBinary("busctl", "desktop notifications require busctl"))
	}
	checks = append(checks, checkStorageDir(cfg.Config.Store.Dir))

	return Report{Checks: checks}
}

// checkEngine validates the configured speech backend without dialing it.
func checkEngine(cfg config.EngineConfig) Check {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "websocket":
		url, err := speech.ListenURL(cfg)
		if err != nil {
			return Check{Name: "engine", Pass: false, Message: err.Error()}
		}
		return Check{Name: "engine", Pass: true, Message: fmt.Sprintf("gateway endpoint %s", url)}
	case "exec":
		if len(cfg.Cmd.Argv) == 0 {
			return Check{Name: "engine", Pass: false, Message: "engine command is empty"}
		}
		return checkBinary(cfg.Cmd.Argv[0], "recognizer command is available")
	case "":
		return Check{Name: "engine", Pass: false, Message: "engine mode is empty; dictation is disabled"}
	default:
		return Check{Name: "engine", Pass: false, Message: fmt.Sprintf("unknown engine mode %q", cfg.Mode)}
	}
}

// checkClipboard accepts a configured command or the built-in fallback.
func checkClipboard(cfg config.Config) Check {
	if len(cfg.Clipboard.Argv) == 0 {
		return Check{Name: "clipboard_cmd", Pass: true, Message: "not configured; using built-in clipboard"}
	}
	return checkCommand(cfg.Clipboard.Argv, "clipboard_cmd")
}

// checkStorageDir verifies the note directory is creatable and writable.
func checkStorageDir(dir string) Check {
	if dir == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return Check{Name: "store.dir", Pass: false, Message: err.Error()}
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		dir = filepath.Join(dataHome, "voice-canvas")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "store.dir", Pass: false, Message: fmt.Sprintf("create %s: %v", dir, err)}
	}

	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return Check{Name: "store.dir", Pass: false, Message: fmt.Sprintf("write %s: %v", dir, err)}
	}
	_ = os.Remove(probe)
	return Check{Name: "store.dir", Pass: true, Message: fmt.Sprintf("writable %s", dir)}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}
