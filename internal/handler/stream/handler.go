// Package stream relays assistant events to browsers over Server-Sent Events.
package stream

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/violet/backend/internal/service/events"
	"github.com/zhouzirui/violet/backend/pkg/utils"
)

// Subscriber is the part of the event hub the stream needs.
type Subscriber interface {
	Subscribe(buffer int) (<-chan events.Event, func())
}

// Handler streams hub events to each connected client.
type Handler struct {
	hub       Subscriber
	heartbeat time.Duration
}

// New creates a stream handler that sends a heartbeat comment every interval.
func New(hub Subscriber, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &Handler{hub: hub, heartbeat: heartbeat}
}

// RegisterRoutes mounts GET /events.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleEvents)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, cancel := h.hub.Subscribe(16)
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	if err := utils.SendSSEComment(w, flusher, "connected"); err != nil {
		return
	}

	ctx := r.Context()
	slog.Debug("sse client connected", "remote", r.RemoteAddr)
	defer slog.Debug("sse client disconnected", "remote", r.RemoteAddr)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, ev.Type, ev); err != nil {
				slog.Debug("sse write failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
