package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/naruto-161/voice-canvas/internal/config"
	"github.com/naruto-161/voice-canvas/internal/fsm"
	"github.com/naruto-161/voice-canvas/internal/ipc"
	"github.com/naruto-161/voice-canvas/internal/note"
	"github.com/naruto-161/voice-canvas/internal/notify"
	"github.com/naruto-161/voice-canvas/internal/output"
	"github.com/naruto-161/voice-canvas/internal/permission"
	"github.com/naruto-161/voice-canvas/internal/session"
	"github.com/naruto-161/voice-canvas/internal/speak"
	"github.com/naruto-161/voice-canvas/internal/transcript"
)

// runDaemon owns the socket, the document store, and the session controller
// until the context is cancelled.
func (r Runner) runDaemon(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: voice-canvas daemon already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	storage, err := note.NewFileStorage(cfg.Store.Dir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	store := note.NewStore(storage, time.Duration(cfg.Store.AutosaveDelayMS)*time.Millisecond, logger)

	notifier := notify.NewDesktop(cfg.Notify, logger)
	gate := permission.NewExecGate(cfg.ProbeCmd.Argv, logger)
	controller := session.NewController(logger, cfg, gate, session.InserterFunc(store.Append), notifier)
	controller.OnState = func(snap session.Snapshot) {
		logger.Info("session state",
			"state", string(snap.State),
			"listening", snap.Listening,
			"activated", snap.Activated,
			"permission", string(snap.Permission),
		)
	}

	handler := &daemonHandler{
		controller: controller,
		store:      store,
		copier:     output.NewCopier(cfg),
		speaker:    speak.NewSpeaker(cfg),
	}

	// Resolve microphone access up front so the first listen does not stall.
	if controller.RequestPermission(ctx) == fsm.PermissionGranted {
		if err := controller.StartListening(ctx); err != nil {
			logger.Warn("initial listen failed", "error", err.Error())
		}
	}

	logger.Info("daemon ready", "socket", socketPath)
	serveErr := ipc.Serve(ctx, listener, handler)

	_ = controller.StopListening(context.Background())
	notifier.Dismiss(context.Background())
	if err := store.SaveNow(); err != nil {
		logger.Warn("final save failed", "error", err.Error())
	}

	if serveErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serveErr)
		return 1
	}
	return 0
}

// daemonHandler serves CLI requests against the live controller and store.
type daemonHandler struct {
	controller *session.Controller
	store      *note.Store
	copier     *output.Copier
	speaker    *speak.Speaker
}

func (h *daemonHandler) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return h.status()
	case "mic":
		return h.toggleMic(ctx)
	case "record":
		if err := h.controller.ToggleActivation(ctx); err != nil {
			return h.fail(err)
		}
		if h.controller.Snapshot().Activated {
			return h.ok("dictation on")
		}
		return h.ok("dictation off")
	case "save":
		if err := h.store.SaveNow(); err != nil {
			return h.fail(err)
		}
		resp := h.ok("saved")
		savedAt := h.store.LastSavedAt()
		resp.SavedAt = &savedAt
		return resp
	case "new":
		n := h.store.Create()
		return h.ok(fmt.Sprintf("created %s (%s)", n.Title, n.ID))
	case "list":
		return h.list()
	case "delete":
		if len(req.Args) != 1 {
			return h.fail(errors.New("delete requires a note id"))
		}
		if err := h.store.Delete(req.Args[0]); err != nil {
			return h.fail(err)
		}
		return h.ok("deleted")
	case "rename":
		if len(req.Args) < 2 {
			return h.fail(errors.New("rename requires a note id and a title"))
		}
		title := joinTitle(req.Args[1:])
		if err := h.store.Rename(req.Args[0], title); err != nil {
			return h.fail(err)
		}
		return h.ok(fmt.Sprintf("renamed to %q", title))
	case "duplicate":
		if len(req.Args) != 1 {
			return h.fail(errors.New("duplicate requires a note id"))
		}
		dup, err := h.store.Duplicate(req.Args[0])
		if err != nil {
			return h.fail(err)
		}
		return h.ok(fmt.Sprintf("created %s (%s)", dup.Title, dup.ID))
	case "edit":
		if len(req.Args) == 0 {
			return h.fail(errors.New("edit requires the replacement text"))
		}
		if err := h.store.ReplaceContent(strings.Join(req.Args, " ")); err != nil {
			return h.fail(err)
		}
		return h.ok("edited")
	case "autosave":
		if h.store.ToggleAutosave() {
			return h.ok("autosave on")
		}
		return h.ok("autosave off")
	case "copy":
		active, found := h.store.Active()
		if !found {
			return h.fail(errors.New("no active note"))
		}
		if err := h.copier.Copy(ctx, active.Content); err != nil {
			return h.fail(err)
		}
		return h.ok("copied")
	case "speak":
		if !h.speaker.Enabled() {
			return h.fail(errors.New("speak_cmd is not configured"))
		}
		active, found := h.store.Active()
		if !found {
			return h.fail(errors.New("no active note"))
		}
		if err := h.speaker.Say(ctx, active.Content); err != nil {
			return h.fail(err)
		}
		return h.ok("spoken")
	default:
		return h.fail(fmt.Errorf("unknown command: %s", req.Command))
	}
}

func (h *daemonHandler) status() ipc.Response {
	resp := h.withSnapshot(ipc.Response{OK: true})
	if savedAt := h.store.LastSavedAt(); !savedAt.IsZero() {
		resp.SavedAt = &savedAt
	}
	return resp
}

func (h *daemonHandler) toggleMic(ctx context.Context) ipc.Response {
	if h.controller.Snapshot().Listening {
		if err := h.controller.StopListening(ctx); err != nil {
			return h.fail(err)
		}
		return h.ok("listening off")
	}
	if err := h.controller.StartListening(ctx); err != nil {
		return h.fail(err)
	}
	if !h.controller.Snapshot().Listening {
		return h.fail(errors.New("speech recognition is unavailable"))
	}
	return h.ok("listening on")
}

func (h *daemonHandler) list() ipc.Response {
	active, _ := h.store.Active()
	resp := h.withSnapshot(ipc.Response{OK: true})
	for _, n := range h.store.Notes() {
		resp.Notes = append(resp.Notes, ipc.NoteInfo{
			ID:        n.ID,
			Title:     n.Title,
			Active:    n.ID == active.ID,
			Words:     transcript.WordCount(n.Content),
			Chars:     len([]rune(n.Content)),
			UpdatedAt: n.UpdatedAt,
		})
	}
	return resp
}

func (h *daemonHandler) ok(message string) ipc.Response {
	return h.withSnapshot(ipc.Response{OK: true, Message: message})
}

func (h *daemonHandler) fail(err error) ipc.Response {
	return h.withSnapshot(ipc.Response{OK: false, Error: err.Error()})
}

func (h *daemonHandler) withSnapshot(resp ipc.Response) ipc.Response {
	snap := h.controller.Snapshot()
	resp.State = string(snap.State)
	resp.Listening = snap.Listening
	resp.Activated = snap.Activated
	resp.Permission = string(snap.Permission)
	resp.Interim = snap.Interim
	return resp
}

func joinTitle(words []string) string {
	return strings.Join(words, " ")
}
