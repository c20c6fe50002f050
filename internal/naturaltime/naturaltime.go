// Package naturaltime converts free-text time expressions coming from the
// voice channel ("tomorrow 10am", "next friday 3:30pm", explicit dates)
// into absolute UTC instants interpreted in a business's local timezone.
package naturaltime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError reports an expression the parser could not understand. The
// original text is kept so the voice channel can repeat it back.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not understand time expression %q", e.Input)
}

// absolute layouts tried verbatim before the relative grammar kicks in.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04pm",
	"2006-01-02 3pm",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006 3:04pm",
	"01/02/2006",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Parse interprets expr in loc relative to now and returns the instant in
// UTC. The zero time.Location is not accepted; callers resolve the
// business timezone first.
func Parse(expr string, loc *time.Location, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return time.Time{}, &ParseError{Input: expr}
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC(), nil
		}
	}

	local := now.In(loc)
	tokens := tokenize(raw)

	if t, ok := parseRelativeOffset(tokens, local); ok {
		return t.UTC(), nil
	}

	day, rest, dayOK := parseDayPart(tokens, local)
	hour, min, timeOK := parseClock(rest)

	switch {
	case dayOK && timeOK:
		// explicit day and clock
	case dayOK && len(rest) == 0:
		hour, min = 0, 0
	case !dayOK && timeOK && len(tokens) == len(rest):
		// bare clock: today, rolled to tomorrow when already past
		day = local
		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, loc)
		if !candidate.After(local) {
			day = day.AddDate(0, 0, 1)
		}
	default:
		return time.Time{}, &ParseError{Input: expr}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, loc).UTC(), nil
}

func tokenize(raw string) []string {
	fields := strings.Fields(strings.ToLower(raw))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.")
		if f == "" || f == "at" || f == "on" || f == "the" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// parseRelativeOffset handles "in 2 hours", "in 30 minutes", "in 3 days".
func parseRelativeOffset(tokens []string, local time.Time) (time.Time, bool) {
	if len(tokens) != 3 || tokens[0] != "in" {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(tokens[1])
	if err != nil || n < 0 {
		return time.Time{}, false
	}
	switch strings.TrimSuffix(tokens[2], "s") {
	case "minute", "min":
		return local.Add(time.Duration(n) * time.Minute), true
	case "hour", "hr":
		return local.Add(time.Duration(n) * time.Hour), true
	case "day":
		return local.AddDate(0, 0, n), true
	case "week":
		return local.AddDate(0, 0, 7*n), true
	}
	return time.Time{}, false
}

// parseDayPart consumes leading day tokens and returns the resolved
// calendar day plus the remaining tokens.
func parseDayPart(tokens []string, local time.Time) (time.Time, []string, bool) {
	if len(tokens) == 0 {
		return time.Time{}, tokens, false
	}

	switch tokens[0] {
	case "today", "tonight":
		return local, tokens[1:], true
	case "tomorrow":
		return local.AddDate(0, 0, 1), tokens[1:], true
	case "yesterday":
		return local.AddDate(0, 0, -1), tokens[1:], true
	}

	rest := tokens
	if rest[0] == "next" || rest[0] == "this" {
		rest = rest[1:]
		if len(rest) == 0 {
			return time.Time{}, tokens, false
		}
	}

	if wd, ok := weekdays[rest[0]]; ok {
		days := int(wd-local.Weekday()+7) % 7
		if days == 0 {
			days = 7
		}
		return local.AddDate(0, 0, days), rest[1:], true
	}

	// "june 1" / "june 1st 2026"
	if m, ok := months[rest[0]]; ok && len(rest) >= 2 {
		dayNum, err := strconv.Atoi(stripOrdinal(rest[1]))
		if err != nil || dayNum < 1 || dayNum > 31 {
			return time.Time{}, tokens, false
		}
		year := local.Year()
		consumed := 2
		if len(rest) >= 3 {
			if y, err := strconv.Atoi(rest[2]); err == nil && y >= 1970 {
				year = y
				consumed = 3
			}
		}
		day := time.Date(year, m, dayNum, 0, 0, 0, 0, local.Location())
		if consumed == 2 && day.AddDate(0, 0, 1).Before(local) {
			day = day.AddDate(1, 0, 0)
		}
		return day, rest[consumed:], true
	}

	return time.Time{}, tokens, false
}

func stripOrdinal(s string) string {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if v := strings.TrimSuffix(s, suffix); v != s {
			return v
		}
	}
	return s
}

// parseClock understands "10am", "10 am", "3:30pm", "15:04", "noon" and
// "midnight". It accepts exactly the remaining tokens or fails.
func parseClock(tokens []string) (int, int, bool) {
	switch len(tokens) {
	case 0:
		return 0, 0, false
	case 1:
		return parseClockWord(tokens[0])
	case 2:
		if tokens[1] == "am" || tokens[1] == "pm" {
			return parseClockWord(tokens[0] + tokens[1])
		}
		return 0, 0, false
	default:
		return 0, 0, false
	}
}

func parseClockWord(w string) (int, int, bool) {
	switch w {
	case "noon", "midday":
		return 12, 0, true
	case "midnight":
		return 0, 0, true
	}

	meridiem := ""
	if v := strings.TrimSuffix(w, "am"); v != w {
		w, meridiem = v, "am"
	} else if v := strings.TrimSuffix(w, "pm"); v != w {
		w, meridiem = v, "pm"
	}
	w = strings.TrimSuffix(w, ".")

	hourStr, minStr := w, "0"
	if i := strings.IndexAny(w, ":."); i >= 0 {
		hourStr, minStr = w[:i], w[i+1:]
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, 0, false
	}
	min, err := strconv.Atoi(minStr)
	if err != nil || min < 0 || min > 59 {
		return 0, 0, false
	}

	switch meridiem {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, 0, false
		}
		// bare "10" with no meridiem and no minutes is too ambiguous
		if minStr == "0" && !strings.ContainsAny(w, ":.") {
			return 0, 0, false
		}
	}
	return hour, min, true
}
