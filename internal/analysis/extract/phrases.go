package extract

import (
	"regexp"
	"strings"
)

var (
	mediaFillers = wordPatterns(
		"play", "on youtube", "in youtube", "on yt", "in yt", "youtube", "yt", "song", "video", "music",
	)
	reminderLead       = regexp.MustCompile(`^.*?\bremind me\b(?:\s+(?:that|to)\b)?`)
	reminderClause     = regexp.MustCompile(`\bat\s+(\d{1,2}(?:[:.]?\d{2})?\s*(?:am|pm)?)\b`)
	reminderConnectors = regexp.MustCompile(`^(?:about|that|to)\b\s*`)
)

// AppName returns what follows "open " or "launch ".
func AppName(text string) string {
	return trimAnyPrefix(strings.ToLower(strings.TrimSpace(text)), "open ", "launch ")
}

// SearchQuery returns what follows "search " or "google ", without a leading "for".
func SearchQuery(text string) string {
	query := trimAnyPrefix(strings.ToLower(strings.TrimSpace(text)), "search ", "google ")
	return strings.TrimSpace(strings.TrimPrefix(query, "for "))
}

// MediaQuery removes the "play ... on youtube" phrasing and returns the title.
func MediaQuery(text string) string {
	return collapse(stripWords(strings.ToLower(text), mediaFillers))
}

// ReminderClause reports whether text carries an explicit "at <time>" clause
// and returns the time as written.
func ReminderClause(text string) (string, bool) {
	m := reminderClause.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ReminderTask returns the task of a "remind me ..." request with the lead-in,
// the "at <time>" clause and a leading connector word removed.
func ReminderTask(text string) string {
	task := reminderLead.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "")
	task = reminderClause.ReplaceAllString(task, " ")
	task = collapse(task)
	task = reminderConnectors.ReplaceAllString(task, "")
	return strings.TrimRight(collapse(task), ".!?")
}

func trimAnyPrefix(text string, prefixes ...string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return strings.TrimSpace(strings.TrimPrefix(text, p))
		}
	}
	return strings.TrimSpace(text)
}
