package intent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/zhouzirui/violet/backend/internal/analysis/extract"
	"github.com/zhouzirui/violet/backend/internal/analysis/mathexpr"
	"github.com/zhouzirui/violet/backend/internal/analysis/mood"
	"github.com/zhouzirui/violet/backend/internal/model/reminder"
)

// Rule names, in dispatch order.
const (
	RuleGreeting       = "greeting"
	RuleIdentity       = "identity"
	RuleTime           = "time"
	RuleWeather        = "weather"
	RuleNews           = "news"
	RuleDate           = "date"
	RuleOpenApp        = "open_app"
	RuleShutdown       = "shutdown"
	RuleSearch         = "search"
	RuleMedia          = "media"
	RuleReminderList   = "reminder_list"
	RuleReminderNoTime = "reminder"
	RuleReminderAtTime = "reminder_at_time"
	RuleAlarm          = "alarm"
	RuleTranslate      = "translate"
	RuleMath           = "math"
	RuleFallback       = "fallback"
)

const (
	greetingReply = "Hello boss! I'm VIOLET, your personal assistant. How can I help you today?"
	identityReply = "I'm VIOLET, boss! Your advanced AI assistant."
	timeLayout    = "03:04 PM"
	dateLayout    = "Monday, January 02, 2006"
)

var (
	greetingPattern = regexp.MustCompile(`\b(hello|hi|hey)\b`)
	timePattern     = regexp.MustCompile(`\btime\b`)
	datePattern     = regexp.MustCompile(`\b(date|day|today)\b`)

	languagePhrases = []string{
		"translate", "in tamil", "in hindi", "in english", "to tamil", "to hindi", "to english",
	}
	translationTriggers = []string{
		"translate", "in english", "in tamil", "in hindi", "to english", "to tamil", "to hindi",
		"how do you say", "meaning of",
	}
	mathTriggers       = []string{"calculate", "solve", "plus", "minus", "divided by", "multiplied by", "square root"}
	inlineOperators    = []string{"+", "-", "*", "/", "plus", "minus", "times"}
	newsTriggers       = []string{"news", "headlines", "update me", "what's happening"}
	listReminderWords  = []string{"show reminders", "my reminders", "list reminders", "what are my reminders"}
	clearReminderWords = []string{"clear reminders", "delete reminders", "remove reminders"}
	alarmTriggers      = []string{"set alarm", "set an alarm", "alarm for", "alarm at", "wake me"}
)

func (r *Router) buildRules() []rule {
	return []rule{
		{
			name: RuleGreeting,
			match: func(q request) bool {
				return greetingPattern.MatchString(q.lower) && !containsAny(q.lower, languagePhrases...)
			},
			handle: func(context.Context, request) string { return greetingReply },
		},
		{
			name:   RuleIdentity,
			match:  func(q request) bool { return containsAny(q.lower, "who are you", "what is your name") },
			handle: func(context.Context, request) string { return identityReply },
		},
		{
			name:  RuleTime,
			match: func(q request) bool { return timePattern.MatchString(q.lower) },
			handle: func(context.Context, request) string {
				return fmt.Sprintf("It's %s, boss!", r.now().Format(timeLayout))
			},
		},
		{
			name:   RuleWeather,
			match:  func(q request) bool { return strings.Contains(q.lower, "weather") },
			handle: r.handleWeather,
		},
		{
			name:   RuleNews,
			match:  func(q request) bool { return containsAny(q.lower, newsTriggers...) },
			handle: r.handleNews,
		},
		{
			name: RuleDate,
			match: func(q request) bool {
				return datePattern.MatchString(q.lower) && !strings.Contains(q.lower, "news")
			},
			handle: func(context.Context, request) string {
				return fmt.Sprintf("Today is %s, boss!", r.now().Format(dateLayout))
			},
		},
		{
			name:  RuleOpenApp,
			match: func(q request) bool { return hasAnyPrefix(q.lower, "open ", "launch ") },
			handle: func(ctx context.Context, q request) string {
				return r.launcher.Open(ctx, extract.AppName(q.lower))
			},
		},
		{
			name: RuleShutdown,
			match: func(q request) bool {
				return strings.Contains(q.lower, "shutdown") && containsAny(q.lower, "laptop", "pc")
			},
			handle: func(ctx context.Context, _ request) string { return r.launcher.Shutdown(ctx) },
		},
		{
			name:  RuleSearch,
			match: func(q request) bool { return hasAnyPrefix(q.lower, "search ", "google ") },
			handle: func(ctx context.Context, q request) string {
				return r.launcher.Search(ctx, extract.SearchQuery(q.lower))
			},
		},
		{
			name: RuleMedia,
			match: func(q request) bool {
				return strings.Contains(q.lower, "play") && containsAny(q.lower, "youtube", "yt")
			},
			handle: func(ctx context.Context, q request) string {
				return r.launcher.PlayYouTube(ctx, extract.MediaQuery(q.lower))
			},
		},
		{
			name: RuleReminderList,
			match: func(q request) bool {
				return containsAny(q.lower, listReminderWords...) || containsAny(q.lower, clearReminderWords...)
			},
			handle: r.handleReminderList,
		},
		{
			name: RuleReminderNoTime,
			match: func(q request) bool {
				_, timed := extract.ReminderClause(q.lower)
				return strings.Contains(q.lower, "remind me") && !timed
			},
			handle: r.handleReminder,
		},
		{
			name: RuleReminderAtTime,
			match: func(q request) bool {
				_, timed := extract.ReminderClause(q.lower)
				return strings.Contains(q.lower, "remind me") && timed
			},
			handle: r.handleReminder,
		},
		{
			name:   RuleAlarm,
			match:  func(q request) bool { return containsAny(q.lower, alarmTriggers...) },
			handle: r.handleAlarm,
		},
		{
			name:   RuleTranslate,
			match:  func(q request) bool { return containsAny(q.lower, translationTriggers...) },
			handle: r.handleTranslate,
		},
		{
			name:   RuleMath,
			match:  func(q request) bool { return containsAny(q.lower, mathTriggers...) },
			handle: r.handleMath,
		},
		{
			name:   RuleFallback,
			match:  func(request) bool { return true },
			handle: r.handleFallback,
		},
	}
}

func (r *Router) handleWeather(ctx context.Context, q request) string {
	city, _ := extract.City(q.raw)
	return r.weather.Report(ctx, city)
}

func (r *Router) handleNews(ctx context.Context, q request) string {
	country, _ := extract.Country(q.raw)
	return r.news.Headlines(ctx, country, 0)
}

func (r *Router) handleReminderList(ctx context.Context, q request) string {
	if containsAny(q.lower, listReminderWords...) {
		return formatReminders(r.session.Reminders(ctx))
	}
	n := r.session.ClearReminders(ctx)
	slog.Info("reminders cleared", "count", n)
	return "🗑️ All reminders cleared, boss!"
}

func formatReminders(list []reminder.Reminder) string {
	if len(list) == 0 {
		return "📋 You have no reminders set, boss."
	}

	var b strings.Builder
	b.WriteString("📋 Your Reminders:\n\n")
	for i, rem := range list {
		fmt.Fprintf(&b, "%d. %s\n   ⏰ %s\n   📅 Set on: %s\n\n", i+1, rem.Task, rem.DisplayTime(), rem.DisplayCreated())
	}
	return strings.TrimSpace(b.String())
}

func (r *Router) handleReminder(ctx context.Context, q request) string {
	task := extract.ReminderTask(q.lower)
	if task == "" {
		return "What would you like me to remind you about, boss?"
	}

	var at string
	if clause, ok := extract.ReminderClause(q.lower); ok {
		at = clause
		if c, ok := extract.ClockTime(clause); ok {
			at = c.String()
		}
	}

	rem, err := r.session.AddReminder(ctx, task, at)
	if err != nil {
		slog.Warn("add reminder failed", "err", err)
		return "What would you like me to remind you about, boss?"
	}
	r.openClock(ctx)

	if rem.Time != "" {
		return fmt.Sprintf("📝 Reminder set!\n\nTask: %s\nTime: %s\n\nI've also opened the Clock app so you can set an alert!", rem.Task, rem.Time)
	}
	return fmt.Sprintf("📝 Reminder noted!\n\nTask: %s\n\nI've also opened the Clock app if you want to set an alert.", rem.Task)
}

func (r *Router) handleAlarm(ctx context.Context, q request) string {
	r.openClock(ctx)
	if c, ok := extract.ClockTime(q.lower); ok {
		return fmt.Sprintf("⏰ Opening the Clock app! Please set your alarm for %s, boss. The app is ready for you!", c)
	}
	return "⏰ Opening the Clock app for you, boss! Set your alarm there."
}

func (r *Router) openClock(ctx context.Context) {
	if err := r.launcher.OpenClock(ctx); err != nil {
		slog.Debug("open clock failed", "err", err)
	}
}

func (r *Router) handleTranslate(ctx context.Context, q request) string {
	text := extract.TranslationText(q.lower)
	if text == "" {
		return "What would you like me to translate, boss?"
	}
	return r.knowledge.Translate(ctx, text, extract.TargetLanguage(q.lower))
}

func (r *Router) handleMath(ctx context.Context, q request) string {
	if strings.Contains(q.lower, "weather") {
		return r.knowledge.Ask(ctx, q.raw, mood.Neutral, r.session.History(ctx))
	}
	return mathexpr.Evaluate(q.raw)
}

func (r *Router) handleFallback(ctx context.Context, q request) string {
	m := mood.Classify(q.raw)
	if strings.HasPrefix(q.lower, "what is") && containsAny(q.lower, inlineOperators...) {
		return mathexpr.Evaluate(q.raw)
	}
	return r.knowledge.Ask(ctx, q.raw, m, r.session.History(ctx))
}
