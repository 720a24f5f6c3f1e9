package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Engine  *jsoncEngine  `json:"engine"`
	Phrases *jsoncPhrases `json:"phrases"`
	Store   *jsoncStore   `json:"store"`
	Notify  *jsoncNotify  `json:"notify"`

	ProbeCmd     *string `json:"probe_cmd"`
	ClipboardCmd *string `json:"clipboard_cmd"`
	SpeakCmd     *string `json:"speak_cmd"`
}

type jsoncEngine struct {
	Mode     *string `json:"mode"`
	Gateway  *string `json:"gateway"`
	Command  *string `json:"command"`
	Language *string `json:"language"`
	Model    *string `json:"model"`
}

type jsoncPhrases struct {
	Activate   *string `json:"activate"`
	Deactivate *string `json:"deactivate"`
}

type jsoncStore struct {
	Dir             *string `json:"dir"`
	AutosaveDelayMS *int    `json:"autosave_delay_ms"`
}

type jsoncNotify struct {
	Enable    *bool   `json:"enable"`
	AppName   *string `json:"app_name"`
	TimeoutMS *int    `json:"timeout_ms"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if payload.Engine != nil {
		if payload.Engine.Mode != nil {
			cfg.Engine.Mode = strings.TrimSpace(*payload.Engine.Mode)
		}
		if payload.Engine.Gateway != nil {
			cfg.Engine.Gateway = strings.TrimSpace(*payload.Engine.Gateway)
		}
		if payload.Engine.Command != nil {
			raw := *payload.Engine.Command
			argv, err := parseArgv(raw)
			if err != nil {
				return fmt.Errorf("invalid engine.command: %w", err)
			}
			cfg.Engine.Cmd = CommandConfig{Raw: raw, Argv: argv}
		}
		if payload.Engine.Language != nil {
			cfg.Engine.Language = strings.TrimSpace(*payload.Engine.Language)
		}
		if payload.Engine.Model != nil {
			cfg.Engine.Model = strings.TrimSpace(*payload.Engine.Model)
		}
	}

	if payload.Phrases != nil {
		if payload.Phrases.Activate != nil {
			cfg.Phrases.Activate = *payload.Phrases.Activate
		}
		if payload.Phrases.Deactivate != nil {
			cfg.Phrases.Deactivate = *payload.Phrases.Deactivate
		}
	}

	if payload.Store != nil {
		if payload.Store.Dir != nil {
			cfg.Store.Dir = strings.TrimSpace(*payload.Store.Dir)
		}
		if payload.Store.AutosaveDelayMS != nil {
			cfg.Store.AutosaveDelayMS = *payload.Store.AutosaveDelayMS
		}
	}

	if payload.Notify != nil {
		if payload.Notify.Enable != nil {
			cfg.Notify.Enable = *payload.Notify.Enable
		}
		if payload.Notify.AppName != nil {
			cfg.Notify.AppName = strings.TrimSpace(*payload.Notify.AppName)
		}
		if payload.Notify.TimeoutMS != nil {
			cfg.Notify.TimeoutMS = *payload.Notify.TimeoutMS
		}
	}

	if payload.ProbeCmd != nil {
		raw := *payload.ProbeCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return fmt.Errorf("invalid probe_cmd: %w", err)
		}
		cfg.ProbeCmd = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.ClipboardCmd != nil {
		raw := *payload.ClipboardCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return fmt.Errorf("invalid clipboard_cmd: %w", err)
		}
		cfg.Clipboard = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.SpeakCmd != nil {
		raw := *payload.SpeakCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return fmt.Errorf("invalid speak_cmd: %w", err)
		}
		cfg.SpeakCmd = CommandConfig{Raw: raw, Argv: argv}
	}

	return nil
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' || ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
