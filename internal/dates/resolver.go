// internal/dates/resolver.go
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Shape tells which field of a Resolution is populated.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeExact
	ShapeRange
	ShapeTemplate
)

func (s Shape) String() string {
	switch s {
	case ShapeExact:
		return "exact"
	case ShapeRange:
		return "range"
	case ShapeTemplate:
		return "template"
	}
	return "none"
}

// Template is a predicate anchored to the current date. Exactly one of
// DayOffset (when Months is empty) or Months applies.
type Template struct {
	DayOffset int
	Months    []int
}

func (t Template) IsMonths() bool { return len(t.Months) > 0 }

// Resolution is the outcome of resolving one date phrase. Start holds the exact
// date for ShapeExact; Start and End bound an inclusive range for ShapeRange.
type Resolution struct {
	Shape    Shape
	Start    time.Time
	End      time.Time
	Template Template
}

func (r Resolution) Resolved() bool { return r.Shape != ShapeNone }

var numericDate = regexp.MustCompile(`(?:^|[^\d])(\d{1,2})\.(\d{1,2})(?:\.(\d{4}|\d{2}))?(?:[^\d]|$)`)

// Resolve parses a Russian date or period phrase relative to today. Unknown
// phrases resolve to ShapeNone and are never an error.
func Resolve(phrase string, today time.Time) Resolution {
	p := newPhrase(phrase)
	if p.empty() {
		return Resolution{}
	}
	day := truncate(today)

	if offset, ok := p.relativeDay(); ok {
		return Resolution{Shape: ShapeTemplate, Template: Template{DayOffset: offset}}
	}
	if months, ok := p.season(); ok {
		return Resolution{Shape: ShapeTemplate, Template: Template{Months: months}}
	}
	if hasTokenPrefix(p.tokens, "недел") {
		start, end := weekRange(day, qualifierOffset(p.tokens))
		return rangeOf(start, end)
	}
	if hasTokenPrefix(p.tokens, "месяц") {
		start, end := monthRange(day, qualifierOffset(p.tokens))
		return rangeOf(start, end)
	}
	if hasTokenPrefix(p.tokens, "квартал") {
		start, end := quarterRange(day, qualifierOffset(p.tokens))
		return rangeOf(start, end)
	}
	// "15 июня 2025 года" names a date, not the whole year.
	if hasTokenPrefix(p.tokens, "год") && !p.hasExplicitDate() {
		start, end := yearRange(day, qualifierOffset(p.tokens))
		return rangeOf(start, end)
	}
	if res, ok := p.namedMonth(day); ok {
		return res
	}
	if date, ok := p.numeric(day); ok {
		return Resolution{Shape: ShapeExact, Start: date}
	}
	return Resolution{}
}

type phrase struct {
	text   string
	tokens []string
}

func newPhrase(s string) phrase {
	text := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "ё", "е")
	return phrase{text: text, tokens: tokenize(text)}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (p phrase) empty() bool { return len(p.tokens) == 0 }

func (p phrase) relativeDay() (int, bool) {
	for _, t := range p.tokens {
		if offset, ok := relativeDays[t]; ok {
			return offset, true
		}
	}
	return 0, false
}

func (p phrase) season() ([]int, bool) {
	for _, t := range p.tokens {
		if months, ok := seasonForms[t]; ok {
			return append([]int(nil), months...), true
		}
	}
	return nil, false
}

// monthMention finds a month word and the digit tokens left once it is removed.
// Forms match anywhere in the text, so words that contain one ("самая" holds
// "мая") also count as a month.
func (p phrase) monthMention() (time.Month, []string, bool) {
	for _, form := range monthForms {
		if idx := strings.Index(p.text, form.word); idx >= 0 {
			rest := p.text[:idx] + " " + p.text[idx+len(form.word):]
			return form.month, tokenize(rest), true
		}
	}
	return 0, nil, false
}

func (p phrase) namedMonth(today time.Time) (Resolution, bool) {
	month, rest, ok := p.monthMention()
	if !ok {
		return Resolution{}, false
	}
	year := today.Year()
	day := 0
	for _, t := range rest {
		if !isDigits(t) {
			continue
		}
		n, _ := strconv.Atoi(t)
		switch {
		case len(t) == 4:
			year = n
		case len(t) <= 2 && day == 0:
			day = n
		}
	}
	if day == 0 {
		start := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())
		return rangeOf(start, start.AddDate(0, 1, -1)), true
	}
	date, valid := makeDate(year, month, day, today.Location())
	if !valid {
		return Resolution{}, false
	}
	return Resolution{Shape: ShapeExact, Start: date}, true
}

func (p phrase) hasExplicitDate() bool {
	if _, _, ok := p.monthMention(); ok {
		return true
	}
	return numericDate.MatchString(p.text)
}

func (p phrase) numeric(today time.Time) (time.Time, bool) {
	m := numericDate.FindStringSubmatch(p.text)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := today.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
	}
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	return makeDate(year, time.Month(month), day, today.Location())
}

// makeDate rejects days that time.Date would silently normalise into the next month.
func makeDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
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

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func rangeOf(start, end time.Time) Resolution {
	return Resolution{Shape: ShapeRange, Start: start, End: end}
}
