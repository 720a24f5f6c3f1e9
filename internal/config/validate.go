package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	mode := strings.ToLower(strings.TrimSpace(cfg.Engine.Mode))
	switch mode {
	case "websocket":
		if strings.TrimSpace(cfg.Engine.Gateway) == "" {
			return nil, fmt.Errorf("engine.gateway must not be empty when engine.mode=websocket")
		}
	case "exec":
		if len(cfg.Engine.Cmd.Argv) == 0 {
			return nil, fmt.Errorf("engine.command must not be empty when engine.mode=exec")
		}
	case "":
		warnings = append(warnings, Warning{Message: "engine.mode is empty; speech recognition is disabled"})
	default:
		return nil, fmt.Errorf("engine.mode must be one of: websocket, exec")
	}

	if strings.TrimSpace(cfg.Engine.Language) == "" {
		return nil, fmt.Errorf("engine.language must not be empty")
	}

	activate := strings.TrimSpace(cfg.Phrases.Activate)
	deactivate := strings.TrimSpace(cfg.Phrases.Deactivate)
	if activate == "" {
		return nil, fmt.Errorf("phrases.activate must not be empty")
	}
	if deactivate == "" {
		return nil, fmt.Errorf("phrases.deactivate must not be empty")
	}
	if strings.EqualFold(activate, deactivate) {
		return nil, fmt.Errorf("phrases.activate and phrases.deactivate must differ")
	}

	if cfg.Store.AutosaveDelayMS <= 0 {
		return nil, fmt.Errorf("store.autosave_delay_ms must be > 0")
	}
	if cfg.Notify.TimeoutMS < 0 {
		return nil, fmt.Errorf("notify.timeout_ms must be >= 0")
	}
	if cfg.Notify.Enable && strings.TrimSpace(cfg.Notify.AppName) == "" {
		return nil, fmt.Errorf("notify.app_name must not be empty when notify.enable=true")
	}

	if len(cfg.ProbeCmd.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "probe_cmd is empty; microphone permission requests will be denied"})
	}
	if len(cfg.Clipboard.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "clipboard_cmd is empty; copy falls back to the native clipboard"})
	}

	return warnings, nil
}
