package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/violet/backend/internal/model/chat"
	"github.com/zhouzirui/violet/backend/internal/model/reminder"
	"github.com/zhouzirui/violet/backend/pkg/utils"
)

// ErrEmptyMessage 表示请求中的消息为空
var ErrEmptyMessage = errors.New("message cannot be empty")

// emptyMessageText 是返回给客户端的错误文本
const emptyMessageText = "Message cannot be empty"

// Assistant 把一句话路由到对应意图并返回回复
type Assistant interface {
	Route(ctx context.Context, text string) string
}

// Session 暴露会话状态的只读视图
type Session interface {
	History(ctx context.Context) []chat.Turn
	Reminders(ctx context.Context) []reminder.Reminder
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	assistant Assistant
	session   Session
	now       func() time.Time
}

// New 创建聊天处理器
func New(assistant Assistant, session Session) *Handler {
	return &Handler{
		assistant: assistant,
		session:   session,
		now:       time.Now,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/history", h.handleHistory)
	r.Get("/reminders", h.handleReminders)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// handleChat 处理一条文本指令
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := normalizeMessage(payload.Message)
	if errors.Is(err, ErrEmptyMessage) {
		utils.RespondError(w, http.StatusBadRequest, emptyMessageText)
		return
	}

	reply := h.assistant.Route(r.Context(), message)
	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		Timestamp: h.now().Format(time.RFC3339),
	})
}

// handleHistory 返回最近的对话轮次
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns := h.session.History(r.Context())
	if turns == nil {
		turns = []chat.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"history": turns})
}

// handleReminders 返回提醒列表
func (h *Handler) handleReminders(w http.ResponseWriter, r *http.Request) {
	items := h.session.Reminders(r.Context())
	if items == nil {
		items = []reminder.Reminder{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"reminders": items})
}

// normalizeMessage 去除首尾空白，空消息返回 ErrEmptyMessage
func normalizeMessage(raw string) (string, error) {
	message := strings.TrimSpace(raw)
	if message == "" {
		return "", ErrEmptyMessage
	}
	return message, nil
}
