// Package config resolves, parses, validates, and defaults voice-canvas configuration.
package config

// Config is the fully materialized runtime configuration used by voice-canvas.
type Config struct {
	Engine    EngineConfig
	Phrases   PhraseConfig
	Store     StoreConfig
	Notify    NotifyConfig
	ProbeCmd  CommandConfig
	Clipboard CommandConfig
	SpeakCmd  CommandConfig
}

// EngineConfig selects and parameterizes the speech engine backend.
type EngineConfig struct {
	// Mode is "websocket" (speech gateway) or "exec" (recognizer child process).
	Mode     string
	Gateway  string
	Cmd      CommandConfig
	Language string
	Model    string
}

// PhraseConfig holds the spoken activation and deactivation commands.
type PhraseConfig struct {
	Activate   string
	Deactivate string
}

// StoreConfig controls note persistence location and autosave debounce.
type StoreConfig struct {
	Dir             string
	AutosaveDelayMS int
}

// NotifyConfig controls desktop toast notifications.
type NotifyConfig struct {
	Enable    bool
	AppName   string
	TimeoutMS int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
