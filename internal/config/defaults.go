package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	probe := "pactl list sources short"
	clipboard := "wl-copy --trim-newline"

	return Config{
		Engine: EngineConfig{
			Mode:     "websocket",
			Gateway:  "ws://127.0.0.1:2700",
			Language: "en-US",
		},
		Phrases: PhraseConfig{
			Activate:   "start recording",
			Deactivate: "stop recording",
		},
		Store: StoreConfig{
			AutosaveDelayMS: 1000,
		},
		Notify: NotifyConfig{
			Enable:    true,
			AppName:   "voice-canvas",
			TimeoutMS: 1600,
		},
		ProbeCmd:  CommandConfig{Raw: probe, Argv: mustParseArgv(probe)},
		Clipboard: CommandConfig{Raw: clipboard, Argv: mustParseArgv(clipboard)},
	}
}
