package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/naruto-161/voice-canvas/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "probe_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-bin")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"fake-bin", "--arg"}, "probe_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "probe_cmd command is available")
}

func TestCheckEngineWebsocket(t *testing.T) {
	cfg := config.Default().Engine
	check := checkEngine(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "ws://127.0.0.1:2700/listen")
}

func TestCheckEngineWebsocketBadURL(t *testing.T) {
	cfg := config.Default().Engine
	cfg.Gateway = "ftp://example.com"
	check := checkEngine(cfg)
	require.False(t, check.Pass)
}

func TestCheckEngineExec(t *testing.T) {
	cfg := config.Default().Engine
	cfg.Mode = "exec"
	cfg.Cmd = config.CommandConfig{Raw: "sh -c true", Argv: []string{"sh", "-c", "true"}}
	check := checkEngine(cfg)
	require.True(t, check.Pass)

	cfg.Cmd = config.CommandConfig{}
	check = checkEngine(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "engine command is empty")
}

func TestCheckEngineEmptyMode(t *testing.T) {
	cfg := config.Default().Engine
	cfg.Mode = ""
	check := checkEngine(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "dictation is disabled")
}

func TestCheckClipboardFallback(t *testing.T) {
	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{}
	check := checkClipboard(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "built-in clipboard")
}

func TestCheckStorageDirWritable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes")
	check := checkStorageDir(dir)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, dir)
}

func TestRunReportsConfigPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg := config.Default()
	report := Run(config.Loaded{Path: "/tmp/config.conf", Config: cfg})
	require.NotEmpty(t, report.Checks)
	require.Equal(t, "config", report.Checks[0].Name)
	require.Contains(t, report.Checks[0].Message, "/tmp/config.conf")
}
