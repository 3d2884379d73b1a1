package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/violet/backend/internal/handler/chat"
	"github.com/zhouzirui/violet/backend/internal/handler/stream"
	"github.com/zhouzirui/violet/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/violet/backend/internal/middleware"
	"github.com/zhouzirui/violet/backend/internal/service/events"
	"github.com/zhouzirui/violet/backend/pkg/utils"
)

// Deps 汇总路由所需的服务。
type Deps struct {
	Assistant      chat.Assistant
	Session        chat.Session
	Events         *events.Hub
	AllowedOrigins []string
	Heartbeat      time.Duration
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"message": "VIOLET Voice Assistant API is running!",
			"status":  "active",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"assistant": "VIOLET",
		})
	})

	chat.New(deps.Assistant, deps.Session).RegisterRoutes(r)

	// 事件推送仅在提供了事件中心时启用
	if deps.Events != nil {
		stream.New(deps.Events, deps.Heartbeat).RegisterRoutes(r)
		ws.New(deps.Events, deps.AllowedOrigins).RegisterRoutes(r)
	}

	return r
}
