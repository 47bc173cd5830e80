package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts tried before the ambiguous numeric slash forms, most unambiguous first.
var (
	isoLayouts = []string{
		"2006-01-02",
		"2006-1-2",
	}

	asianLayouts = []string{
		"2006/01/02",
		"2006/1/2",
		"2006.01.02",
		"2006年01月02日",
		"2006年1月2日",
	}

	europeanLayouts = []string{
		"02.01.2006",
		"2.1.2006",
		"02.01.06",
		"02-01-2006",
		"2-1-2006",
		// month-first dashes only match when the day-first reading is impossible
		"01-02-2006",
		"1-2-2006",
	}

	textualLayouts = []string{
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"January 2 2006",
		"Mon, Jan 2, 2006",
		"Monday, January 2, 2006",
		"2 Jan 2006",
		"02 Jan 2006",
		"2 January 2006",
		"02-Jan-2006",
		"2-Jan-2006",
		"02-Jan-06",
		"02 Jan 06",
		"Jan-02-2006",
		"2006-Jan-02",
		"02/Jan/2006",
		"Jan 02, 2006",
	}
)

var (
	slashDateRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})$`)
	timeSuffixRe = regexp.MustCompile(`\s+\d{1,2}:\d{2}(:\d{2})?(\.\d+)?\s*([AaPp][Mm])?$`)
)

// ParseDate parses a statement date. Numeric slash dates are disambiguated:
// a first number above 12 must be the day, a second number above 12 must be
// the day, and otherwise the month comes first.
func ParseDate(text string) (time.Time, bool) {
	s := strings.Trim(strings.TrimSpace(text), `"'`)
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := parseDateOnly(s); ok {
		return t, true
	}

	// drop a trailing time component
	if loc := timeSuffixRe.FindStringIndex(s); loc != nil {
		if t, ok := parseDateOnly(s[:loc[0]]); ok {
			return t, true
		}
	}
	if i := strings.IndexAny(s, "T "); i > 0 {
		if t, ok := parseDateOnly(s[:i]); ok {
			return t, true
		}
	}

	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseDateOnly(s string) (time.Time, bool) {
	for _, group := range [][]string{isoLayouts, asianLayouts, europeanLayouts, textualLayouts} {
		for _, layout := range group {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}

	if t, ok := parseSlashDate(s); ok {
		return t, true
	}

	if len(s) == 8 && isDigits(s) {
		if t, err := time.Parse("20060102", s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseSlashDate(s string) (time.Time, bool) {
	m := slashDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		if year >= 69 {
			year += 1900
		} else {
			year += 2000
		}
	}

	month, day := first, second
	if first > 12 {
		day, month = first, second
	}
	return civilDate(year, month, day)
}

// civilDate builds a UTC date, rejecting values time.Date would normalize.
func civilDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
