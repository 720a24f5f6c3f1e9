package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun       Command = "run"
	CommandStatus    Command = "status"
	CommandMic       Command = "mic"
	CommandRecord    Command = "record"
	CommandSave      Command = "save"
	CommandNew       Command = "new"
	CommandList      Command = "list"
	CommandDelete    Command = "delete"
	CommandRename    Command = "rename"
	CommandDuplicate Command = "duplicate"
	CommandEdit      Command = "edit"
	CommandAutosave  Command = "autosave"
	CommandCopy      Command = "copy"
	CommandSpeak     Command = "speak"
	CommandDoctor    Command = "doctor"
	CommandVersion   Command = "version"
	CommandHelp      Command = "help"
)

// arity is the argument count each command accepts; arityIDTitle wants an id
// plus at least one title word, arityText wants at least one word.
const (
	arityIDTitle = -1
	arityText    = -2
)

var arity = map[Command]int{
	CommandRun:       0,
	CommandStatus:    0,
	CommandMic:       0,
	CommandRecord:    0,
	CommandSave:      0,
	CommandNew:       0,
	CommandList:      0,
	CommandDelete:    1,
	CommandRename:    arityIDTitle,
	CommandDuplicate: 1,
	CommandEdit:      arityText,
	CommandAutosave:  0,
	CommandCopy:      0,
	CommandSpeak:     0,
	CommandDoctor:    0,
	CommandVersion:   0,
	CommandHelp:      0,
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			want, ok := arity[cmd]
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			parsed.Args = args[i+1:]

			switch {
			case want == arityIDTitle && len(parsed.Args) < 2:
				return Parsed{}, fmt.Errorf("command %q requires an id and a title", arg)
			case want == arityText && len(parsed.Args) < 1:
				return Parsed{}, fmt.Errorf("command %q requires text", arg)
			case want >= 0 && len(parsed.Args) != want:
				if want == 0 {
					return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
				}
				return Parsed{}, fmt.Errorf("command %q requires exactly %d argument(s)", arg, want)
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Commands:
  run                      Run the dictation daemon
  status                   Print current session and document state
  mic                      Toggle listening on or off
  record                   Toggle dictation into the active note
  save                     Flush notes to disk immediately
  new                      Create a new note and make it active
  list                     List notes with word and character counts
  delete <id>              Delete a note
  rename <id> <title...>   Rename a note
  duplicate <id>           Duplicate a note
  edit <text...>           Replace the active note's content
  autosave                 Toggle debounced autosave
  copy                     Copy the active note to the clipboard
  speak                    Read the active note aloud
  doctor                   Run configuration and environment checks
  version                  Print version information
  help                     Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/voice-canvas/config.conf)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
