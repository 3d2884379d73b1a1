package extract

import "strings"

const (
	English = "english"
	Tamil   = "tamil"
	Hindi   = "hindi"
)

var translationFillers = wordPatterns(
	"translate", "to english", "in english", "to tamil", "in tamil", "to hindi", "in hindi",
	"what is", "how do you say", "meaning of", "tell me", "say", "the word",
)

// TargetLanguage decides which language a translation request wants. Naming
// Tamil or Hindi without "to"/"in" means translating from it, so the target
// falls back to English.
func TargetLanguage(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, Tamil) || strings.Contains(lower, "தமிழ்"):
		if strings.Contains(lower, "to tamil") || strings.Contains(lower, "in tamil") {
			return Tamil
		}
		return English
	case strings.Contains(lower, Hindi) || strings.Contains(lower, "हिंदी"):
		if strings.Contains(lower, "to hindi") || strings.Contains(lower, "in hindi") {
			return Hindi
		}
		return English
	default:
		return English
	}
}

// TranslationText strips the request phrasing and leaves the text to translate.
func TranslationText(text string) string {
	return collapse(stripWords(strings.ToLower(text), translationFillers))
}
