// Package intent maps a free-form utterance to one action and returns the
// reply to show or speak.
//
// Dispatch is an ordered rule list evaluated top to bottom; the first rule
// whose predicate matches handles the request. Later rules rely on earlier
// ones having claimed overlapping phrasings ("today's weather" is weather,
// not a date), so the order of the table is part of the behavior.
package intent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/zhouzirui/violet/backend/internal/analysis/mood"
	"github.com/zhouzirui/violet/backend/internal/model/chat"
	"github.com/zhouzirui/violet/backend/internal/model/reminder"
)

// Session is the conversation state the router reads and updates.
type Session interface {
	History(ctx context.Context) []chat.Turn
	AppendExchange(ctx context.Context, userText, reply string)
	AddReminder(ctx context.Context, task, at string) (reminder.Reminder, error)
	Reminders(ctx context.Context) []reminder.Reminder
	ClearReminders(ctx context.Context) int
}

// Knowledge answers open questions and translations.
type Knowledge interface {
	Ask(ctx context.Context, question string, m mood.Mood, history []chat.Turn) string
	Translate(ctx context.Context, text, target string) string
}

// Weather reports conditions; an empty city means the default city.
type Weather interface {
	Report(ctx context.Context, city string) string
}

// News reads headlines; an empty country means world news and limit <= 0
// means the configured count.
type News interface {
	Headlines(ctx context.Context, country string, limit int) string
}

// Launcher performs local side effects.
type Launcher interface {
	Open(ctx context.Context, app string) string
	Search(ctx context.Context, query string) string
	PlayYouTube(ctx context.Context, query string) string
	OpenClock(ctx context.Context) error
	Shutdown(ctx context.Context) string
}

// Deps bundles the router's collaborators. Now defaults to time.Now.
type Deps struct {
	Session   Session
	Knowledge Knowledge
	Weather   Weather
	News      News
	Launcher  Launcher
	Now       func() time.Time
}

// Router is safe for concurrent use when its collaborators are.
type Router struct {
	session   Session
	knowledge Knowledge
	weather   Weather
	news      News
	launcher  Launcher
	now       func() time.Time
	rules     []rule
}

type request struct {
	raw   string
	lower string
}

type rule struct {
	name   string
	match  func(request) bool
	handle func(context.Context, request) string
}

// New creates a router over deps.
func New(deps Deps) *Router {
	r := &Router{
		session:   deps.Session,
		knowledge: deps.Knowledge,
		weather:   deps.Weather,
		news:      deps.News,
		launcher:  deps.Launcher,
		now:       deps.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.rules = r.buildRules()
	return r
}

// Route answers text and records the exchange in the session history. It
// never fails: collaborator errors come back as apologies.
func (r *Router) Route(ctx context.Context, text string) string {
	req := newRequest(text)
	if req.raw == "" {
		return "I didn't catch that, boss."
	}

	rl := r.match(req)
	slog.Debug("intent matched", "rule", rl.name)

	reply := rl.handle(ctx, req)
	r.session.AppendExchange(ctx, req.raw, reply)
	return reply
}

// Intent returns the name of the rule that would handle text, without
// running it.
func (r *Router) Intent(text string) string {
	return r.match(newRequest(text)).name
}

func newRequest(text string) request {
	raw := strings.TrimSpace(text)
	return request{raw: raw, lower: strings.ToLower(raw)}
}

func (r *Router) match(req request) rule {
	for _, rl := range r.rules {
		if rl.match(req) {
			return rl
		}
	}
	// The last rule always matches.
	return r.rules[len(r.rules)-1]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
