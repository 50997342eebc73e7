package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/sync/registry"
)

const testSecret = "test-jwt-secret-must-be-32-bytes"

func newTestServer(t *testing.T) (*httptest.Server, *auth.TokenManager, *registry.Registry) {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error"})
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	reg := registry.New(log)

	r := chi.NewRouter()
	SyncRoutes(r, NewWSHandler(tokens, reg, log))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, tokens, reg
}

func wsURL(srv *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func waitForConnections(t *testing.T, reg *registry.Registry, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if reg.ConnectionCount(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connections for %s = %d, want %d", userID, reg.ConnectionCount(userID), want)
}

func TestServe_RegistersAuthenticatedClient(t *testing.T) {
	srv, tokens, reg := newTestServer(t)

	token, err := tokens.Generate("user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	waitForConnections(t, reg, "user-1", 1)
}

func TestServe_InvalidTokenClosedWithPolicyViolation(t *testing.T) {
	srv, _, reg := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("expected close")
	}
	var closeErr *websocket.CloseError
	if ce, ok := err.(*websocket.CloseError); ok {
		closeErr = ce
	}
	if closeErr == nil || closeErr.Code != websocket.ClosePolicyViolation {
		t.Errorf("close error = %v, want code 1008", err)
	}
	if reg.TotalConnectionCount() != 0 {
		t.Error("rejected client must not be registered")
	}
}

func TestServe_MissingTokenRejected(t *testing.T) {
	srv, _, reg := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected close")
	}
	if reg.TotalConnectionCount() != 0 {
		t.Error("rejected client must not be registered")
	}
}

func TestServe_TextPingPong(t *testing.T) {
	srv, tokens, _ := newTestServer(t)

	token, _ := tokens.Generate("user-1")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if msgType != websocket.TextMessage || string(data) != "pong" {
		t.Errorf("reply = type %d %q, want text pong", msgType, data)
	}

	// The connection stays open for further traffic after a bare ping.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("second ping: %v", err)
	}
	if _, data, err = conn.ReadMessage(); err != nil || string(data) != "pong" {
		t.Fatalf("second pong = %q, %v", data, err)
	}
}

func TestServe_JSONPingPong(t *testing.T) {
	srv, tokens, _ := newTestServer(t)

	token, _ := tokens.Generate("user-1")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var reply clientMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if reply.Type != "pong" {
		t.Errorf("reply = %+v, want pong", reply)
	}
}

func TestServe_BroadcastReachesClient(t *testing.T) {
	srv, tokens, reg := newTestServer(t)

	token, _ := tokens.Generate("user-1")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	waitForConnections(t, reg, "user-1", 1)

	if sent := reg.Broadcast("user-1", map[string]string{"action": "created"}); sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var got map[string]string
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if got["action"] != "created" {
		t.Errorf("broadcast = %v", got)
	}
}

func TestServe_DisconnectUnregisters(t *testing.T) {
	srv, tokens, reg := newTestServer(t)

	token, _ := tokens.Generate("user-1")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	waitForConnections(t, reg, "user-1", 1)

	conn.Close()
	waitForConnections(t, reg, "user-1", 0)
}
