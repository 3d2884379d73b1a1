// Package ws pushes assistant events to browser clients over WebSocket.
package ws

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/violet/backend/internal/service/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Subscriber is the part of the event hub the socket needs.
type Subscriber interface {
	Subscribe(buffer int) (<-chan events.Event, func())
}

// Handler upgrades /ws and writes each event type as a text frame, e.g.
// "clap_detected". Client messages are read and discarded.
type Handler struct {
	hub      Subscriber
	upgrader websocket.Upgrader
}

// New creates a socket handler. Origins lists the browser origins allowed to
// connect; "*" allows any.
func New(hub Subscriber, origins []string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
	}
}

// RegisterRoutes mounts GET /ws.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sub, cancel := h.hub.Subscribe(16)
	defer cancel()

	slog.Debug("websocket client connected", "remote", r.RemoteAddr)

	gone := make(chan struct{})
	go readLoop(conn, gone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			slog.Debug("websocket client disconnected", "remote", r.RemoteAddr)
			return
		case ev, ok := <-sub:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(ev.Type)); err != nil {
				slog.Debug("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed, and
// closes gone when the peer disconnects.
func readLoop(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "err", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
