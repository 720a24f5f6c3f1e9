package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/naruto-161/voice-canvas/internal/config"
)

// GatewayEngine streams recognition events from a speech gateway over a
// websocket. The engine handle is reusable: every Start dials a fresh
// connection, and the read loop ending (for any reason) emits one OnEnd.
type GatewayEngine struct {
	listenURL string
	events    Events
	logger    *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	running bool
}

// NewGatewayEngine validates gateway configuration and builds the handle.
func NewGatewayEngine(cfg config.EngineConfig, events Events, logger *slog.Logger) (*GatewayEngine, error) {
	listenURL, err := ListenURL(cfg)
	if err != nil {
		return nil, err
	}
	return &GatewayEngine{listenURL: listenURL, events: events, logger: logger}, nil
}

// Start dials the gateway and begins the receive loop. No-op when already
// running.
func (g *GatewayEngine) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, g.listenURL, nil)
	if err != nil {
		return fmt.Errorf("dial speech gateway %q: %w", g.listenURL, err)
	}

	g.conn = conn
	g.running = true
	go g.readLoop(conn)
	return nil
}

// Stop closes the active connection. The receive loop observing the close
// delivers the termination event. No-op when not running.
func (g *GatewayEngine) Stop() error {
	g.mu.Lock()
	conn := g.conn
	running := g.running
	g.mu.Unlock()

	if !running || conn == nil {
		return nil
	}

	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop"}`))
	return conn.Close()
}

// readLoop receives gateway events until the connection ends.
func (g *GatewayEngine) readLoop(conn *websocket.Conn) {
	defer func() {
		g.mu.Lock()
		if g.conn == conn {
			g.conn = nil
			g.running = false
		}
		g.mu.Unlock()
		g.events.end()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !isExpectedClose(err) {
				g.logWarn("speech gateway read failed", "error", err.Error())
			}
			return
		}

		var event wireEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			g.logWarn("speech gateway event decode failed", "error", err.Error())
			continue
		}

		switch strings.ToLower(event.Type) {
		case "error":
			g.events.errorCode(event.Code)
		case "result", "":
			if event.Text == "" {
				continue
			}
			g.events.result(Result{Text: event.Text, Final: event.IsFinal})
		}
	}
}

func (g *GatewayEngine) logWarn(msg string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Warn(msg, args...)
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

// ListenURL derives the websocket listen endpoint from engine config.
// http(s) bases are rewritten to their websocket schemes.
func ListenURL(cfg config.EngineConfig) (string, error) {
	base := strings.TrimSpace(cfg.Gateway)
	if base == "" {
		return "", fmt.Errorf("speech gateway URL is empty")
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid speech gateway URL: %w", err)
	}
	if listenURL.Scheme != "ws" && listenURL.Scheme != "wss" {
		return "", fmt.Errorf("speech gateway URL must use ws, wss, http, or https scheme")
	}

	query := listenURL.Query()
	query.Set("language", cfg.Language)
	query.Set("interim_results", "true")
	query.Set("continuous", "true")
	if cfg.Model != "" {
		query.Set("model", cfg.Model)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
