// Package extract pulls single arguments (a city, a country, a clock time, a
// target language) out of a raw utterance. Every extractor is a pure function
// and reports a miss with ok == false so the caller can apply its own default.
package extract

import (
	"regexp"
	"strings"
)

var (
	cityPattern  = regexp.MustCompile(`weather\s+(?:in|for|at|of)\s+([a-z\s]+)`)
	punctuation  = regexp.MustCompile(`[^\w\s]`)
	cityFillers  = wordPatterns("right now", "today", "tomorrow", "please", "outcome", "now", "currently", "current")
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// City returns the place named after "weather in|for|at|of", without trailing
// filler words such as "today" or "please".
func City(text string) (string, bool) {
	m := cityPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return "", false
	}

	city := stripWords(m[1], cityFillers)
	city = punctuation.ReplaceAllString(city, "")
	city = collapse(city)
	if city == "" {
		return "", false
	}
	return city, true
}

type country struct {
	name string
	code string
}

// countries is scanned in order and the first name contained in the text wins.
// There is no longest-match or word-boundary preference, so "ukraine" resolves
// to "gb" through "uk" and "indiana" to "in".
var countries = []country{
	{"india", "in"}, {"indian", "in"},
	{"america", "us"}, {"usa", "us"}, {"united states", "us"}, {"american", "us"},
	{"uk", "gb"}, {"united kingdom", "gb"}, {"britain", "gb"}, {"british", "gb"}, {"england", "gb"},
	{"australia", "au"}, {"australian", "au"},
	{"canada", "ca"}, {"canadian", "ca"},
	{"germany", "de"}, {"german", "de"},
	{"france", "fr"}, {"french", "fr"},
	{"japan", "jp"}, {"japanese", "jp"},
	{"china", "cn"}, {"chinese", "cn"},
	{"russia", "ru"}, {"russian", "ru"},
	{"brazil", "br"}, {"brazilian", "br"},
	{"italy", "it"}, {"italian", "it"},
	{"spain", "es"}, {"spanish", "es"},
	{"mexico", "mx"}, {"mexican", "mx"},
	{"south korea", "kr"}, {"korea", "kr"}, {"korean", "kr"},
	{"singapore", "sg"}, {"singaporean", "sg"},
	{"indonesia", "id"}, {"indonesian", "id"},
	{"pakistan", "pk"}, {"pakistani", "pk"},
	{"bangladesh", "bd"}, {"bangladeshi", "bd"},
	{"sri lanka", "lk"}, {"sri lankan", "lk"},
}

// Country returns the two-letter code of the first country or demonym found
// as a substring of text.
func Country(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, c := range countries {
		if strings.Contains(lower, c.name) {
			return c.code, true
		}
	}
	return "", false
}

func wordPatterns(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}

func stripWords(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, " ")
	}
	return text
}

func collapse(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
