package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/canvas.conf", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/canvas.conf", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantArgs []string
		wantHelp bool
		wantPath string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantCmd: CommandVersion,
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "valid record command",
			args:    []string{"record"},
			wantCmd: CommandRecord,
		},
		{
			name:     "valid mic with config",
			args:     []string{"--config", "/tmp/cfg", "mic"},
			wantCmd:  CommandMic,
			wantPath: "/tmp/cfg",
		},
		{
			name:     "delete takes one id",
			args:     []string{"delete", "note-1"},
			wantCmd:  CommandDelete,
			wantArgs: []string{"note-1"},
		},
		{
			name:    "delete requires an id",
			args:    []string{"delete"},
			wantErr: "requires exactly 1 argument",
		},
		{
			name:     "rename takes id and title words",
			args:     []string{"rename", "note-1", "Meeting", "notes"},
			wantCmd:  CommandRename,
			wantArgs: []string{"note-1", "Meeting", "notes"},
		},
		{
			name:    "rename requires id and title",
			args:    []string{"rename", "note-1"},
			wantErr: "requires an id and a title",
		},
		{
			name:     "duplicate takes one id",
			args:     []string{"duplicate", "note-1"},
			wantCmd:  CommandDuplicate,
			wantArgs: []string{"note-1"},
		},
		{
			name:     "edit takes replacement words",
			args:     []string{"edit", "typed", "instead"},
			wantCmd:  CommandEdit,
			wantArgs: []string{"typed", "instead"},
		},
		{
			name:    "edit requires text",
			args:    []string{"edit"},
			wantErr: "requires text",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
			if tc.wantArgs != nil {
				require.Equal(t, tc.wantArgs, parsed.Args)
			}
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("voice-canvas")
	require.Contains(t, text, "run")
	require.Contains(t, text, "mic")
	require.Contains(t, text, "record")
	require.Contains(t, text, "autosave")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config PATH")
}
