// Package api exposes the WebSocket endpoint clients use for real-time
// task sync.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/sync/registry"
)

const writeTimeout = 10 * time.Second

// WSHandler upgrades /ws requests and keeps the connection registered for
// broadcasts until the client goes away.
type WSHandler struct {
	upgrader websocket.Upgrader
	tokens   *auth.TokenManager
	reg      *registry.Registry
	log      logger.Logger
}

// NewWSHandler returns a WSHandler over the given registry.
func NewWSHandler(tokens *auth.TokenManager, reg *registry.Registry, log logger.Logger) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers cannot set an Authorization header on a WebSocket
			// handshake, so auth rides the token query param and origin
			// checks are delegated to the CORS layer in front.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		tokens: tokens,
		reg:    reg,
		log:    log,
	}
}

// SyncRoutes mounts the WebSocket endpoint.
func SyncRoutes(r chi.Router, h *WSHandler) {
	r.Get("/ws", h.Serve)
}

// wsConn serializes writes to one WebSocket connection. Broadcasts arrive
// from the consumer goroutine while pongs come from the read loop, and
// gorilla/websocket allows only one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) writeText(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) closeWith(code int, reason string) {
	c.mu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
	c.mu.Unlock()
	_ = c.conn.Close()
}

type clientMessage struct {
	Type string `json:"type"`
}

// Serve handles GET /ws. The bearer token rides the "token" query parameter;
// a missing or invalid token gets a policy-violation close (1008) after the
// upgrade so browser clients see a close code instead of a failed handshake.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "sync: upgrade failed", "error", err)
		return
	}
	conn := &wsConn{conn: raw}

	userID, err := h.tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		conn.closeWith(websocket.ClosePolicyViolation, "invalid token")
		return
	}

	h.reg.Add(userID, conn)
	defer func() {
		h.reg.Remove(userID, conn)
		_ = conn.Close()
	}()

	h.log.InfoContext(r.Context(), "sync client connected",
		"user_id", userID, "connections", h.reg.ConnectionCount(userID))

	h.readLoop(userID, conn)

	h.log.InfoContext(r.Context(), "sync client disconnected", "user_id", userID)
}

// readLoop answers application-level pings and exits when the client closes
// or the connection breaks. Clients ping either with a bare "ping" text
// frame, answered with a bare "pong", or with {"type":"ping"}, answered in
// kind. Anything else is ignored.
func (h *WSHandler) readLoop(userID string, conn *wsConn) {
	for {
		msgType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("sync: read failed", "user_id", userID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		if string(bytes.TrimSpace(data)) == "ping" {
			if err := conn.writeText([]byte("pong")); err != nil {
				return
			}
			continue
		}
		var msg clientMessage
		if json.Unmarshal(data, &msg) == nil && msg.Type == "ping" {
			if err := conn.WriteJSON(clientMessage{Type: "pong"}); err != nil {
				return
			}
		}
	}
}
