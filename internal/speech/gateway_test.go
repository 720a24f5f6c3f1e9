package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/naruto-161/voice-canvas/internal/config"
)

type recordedEvents struct {
	results chan Result
	errors  chan string
	ends    chan struct{}
}

func newRecordedEvents() *recordedEvents {
	return &recordedEvents{
		results: make(chan Result, 16),
		errors:  make(chan string, 16),
		ends:    make(chan struct{}, 16),
	}
}

func (r *recordedEvents) events() Events {
	return Events{
		OnResult: func(res Result) { r.results <- res },
		OnError:  func(code string) { r.errors <- code },
		OnEnd:    func() { r.ends <- struct{}{} },
	}
}

func (r *recordedEvents) waitEnd(t *testing.T) {
	t.Helper()
	select {
	case <-r.ends:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for engine end event")
	}
}

func gatewayServer(t *testing.T, serve func(*websocket.Conn)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
}

func TestGatewayEngineDeliversResultsInOrderThenEnds(t *testing.T) {
	server := gatewayServer(t, func(conn *websocket.Conn) {
		messages := []string{
			`{"type":"result","text":"hello wor","is_final":false}`,
			`{"type":"result","text":"hello world","is_final":true}`,
			`{"type":"error","code":"no-speech"}`,
		}
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})
	defer server.Close()

	recorded := newRecordedEvents()
	engine, err := NewGatewayEngine(config.EngineConfig{
		Gateway:  server.URL,
		Language: "en-US",
	}, recorded.events(), nil)
	require.NoError(t, err)

	require.NoError(t, engine.Start(context.Background()))
	recorded.waitEnd(t)

	require.Equal(t, Result{Text: "hello wor", Final: false}, <-recorded.results)
	require.Equal(t, Result{Text: "hello world", Final: true}, <-recorded.results)
	require.Equal(t, "no-speech", <-recorded.errors)
	require.Empty(t, recorded.ends, "end event must fire exactly once")
}

func TestGatewayEngineStopEndsRunLoop(t *testing.T) {
	hold := make(chan struct{})
	server := gatewayServer(t, func(conn *websocket.Conn) {
		// Keep the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(hold)
				return
			}
		}
	})
	defer server.Close()

	recorded := newRecordedEvents()
	engine, err := NewGatewayEngine(config.EngineConfig{
		Gateway:  server.URL,
		Language: "en-US",
	}, recorded.events(), nil)
	require.NoError(t, err)

	require.NoError(t, engine.Start(context.Background()))
	require.NoError(t, engine.Stop())
	recorded.waitEnd(t)

	select {
	case <-hold:
	case <-time.After(2 * time.Second):
		t.Fatal("server never observed the close")
	}

	// Stop on a stopped engine is a no-op.
	require.NoError(t, engine.Stop())
	require.Empty(t, recorded.ends)
}

func TestGatewayEngineRestartsOnSameHandle(t *testing.T) {
	server := gatewayServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"result","text":"run","is_final":true}`))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})
	defer server.Close()

	recorded := newRecordedEvents()
	engine, err := NewGatewayEngine(config.EngineConfig{
		Gateway:  server.URL,
		Language: "en-US",
	}, recorded.events(), nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, engine.Start(context.Background()))
		recorded.waitEnd(t)
		require.Equal(t, Result{Text: "run", Final: true}, <-recorded.results)
	}
}

func TestGatewayEngineStartWhileRunningIsNoop(t *testing.T) {
	server := gatewayServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	recorded := newRecordedEvents()
	engine, err := NewGatewayEngine(config.EngineConfig{
		Gateway:  server.URL,
		Language: "en-US",
	}, recorded.events(), nil)
	require.NoError(t, err)

	require.NoError(t, engine.Start(context.Background()))
	require.NoError(t, engine.Start(context.Background()))
	require.NoError(t, engine.Stop())
	recorded.waitEnd(t)
	require.Empty(t, recorded.ends, "double start must not spawn a second run loop")
}
