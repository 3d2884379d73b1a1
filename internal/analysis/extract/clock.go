package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`\b(\d{1,2})(?:[:.]?(\d{2}))?\s*(am|pm)?\b`)

// Clock is a time of day on the 24-hour clock.
type Clock struct {
	Hour   int
	Minute int
}

// String renders the clock on the 12-hour dial, e.g. "5:00 PM".
func (c Clock) String() string {
	hour := c.Hour
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	if hour > 12 {
		hour -= 12
	}
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, c.Minute, period)
}

// ClockTime finds the first time of day in text. A missing minute defaults to
// zero, "pm" moves hours below 12 into the afternoon and "12am" is midnight.
func ClockTime(text string) (Clock, bool) {
	m := clockPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return Clock{}, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return Clock{}, false
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return Clock{}, false
		}
	}

	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute}, true
}
