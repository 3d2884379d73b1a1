package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/violet/backend/internal/model/chat"
	"github.com/zhouzirui/violet/backend/internal/model/reminder"
)

// DefaultHistoryLimit is the number of turns kept when no limit is configured.
const DefaultHistoryLimit = 10

var (
	ErrEmptyText   = errors.New("turn text is required")
	ErrEmptyTask   = errors.New("reminder task is required")
	ErrUnknownRole = errors.New("unknown speaker")
)

// Service owns the assistant's session state: a bounded rolling history of
// turns and an unbounded reminder list. One mutex serializes every access, so
// concurrent requests append in the order they acquire the lock.
type Service struct {
	mu        sync.RWMutex
	history   *ring
	reminders []reminder.Reminder
	now       func() time.Time
}

// NewService bootstraps an in-memory session keeping at most historyLimit turns.
func NewService(historyLimit int) *Service {
	return &Service{
		history: newRing(historyLimit),
		now:     time.Now,
	}
}

// AppendTurn pushes a turn, evicting the oldest once the history is full.
func (s *Service) AppendTurn(_ context.Context, speaker chat.Speaker, text string) (chat.Turn, error) {
	if speaker != chat.User && speaker != chat.Assistant {
		return chat.Turn{}, ErrUnknownRole
	}
	if strings.TrimSpace(text) == "" {
		return chat.Turn{}, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turn := chat.Turn{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	s.history.push(turn)
	return turn, nil
}

// AppendExchange records a user turn and the assistant's reply under one lock
// so the pair is never split by another request.
func (s *Service) AppendExchange(_ context.Context, userText, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.history.push(chat.Turn{ID: uuid.NewString(), Speaker: chat.User, Text: userText, CreatedAt: now})
	s.history.push(chat.Turn{ID: uuid.NewString(), Speaker: chat.Assistant, Text: reply, CreatedAt: now})
}

// History returns a copy of the turns, oldest first.
func (s *Service) History(_ context.Context) []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.snapshot()
}

// HistoryLimit reports the maximum number of retained turns.
func (s *Service) HistoryLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.capacity()
}

// AddReminder stores a reminder. An empty at means no specific time.
func (s *Service) AddReminder(_ context.Context, task, at string) (reminder.Reminder, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return reminder.Reminder{}, ErrEmptyTask
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := reminder.Reminder{
		ID:        uuid.NewString(),
		Task:      task,
		Time:      strings.TrimSpace(at),
		CreatedAt: s.now(),
	}
	s.reminders = append(s.reminders, r)
	return r, nil
}

// Reminders returns a copy of the reminder list in insertion order.
func (s *Service) Reminders(_ context.Context) []reminder.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]reminder.Reminder, len(s.reminders))
	copy(copied, s.reminders)
	return copied
}

// ClearReminders drops every reminder and reports how many were removed.
func (s *Service) ClearReminders(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.reminders)
	s.reminders = nil
	return n
}
