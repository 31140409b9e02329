// internal/dates/birthday.go
package dates

import (
	"strconv"
	"time"
)

// BirthdayResolution constrains a birthday column while ignoring the year.
// Template is set for relative days and seasons; otherwise Month (and optionally
// Day) apply. A zero value means the phrase was not understood.
type BirthdayResolution struct {
	Template *Template
	Month    int
	Day      int
}

func (b BirthdayResolution) Resolved() bool {
	return b.Template != nil || b.Month != 0
}

// ResolveBirthday is the birthday flavour of Resolve: "в этом месяце" narrows to
// a month, "15 июня" or "15.06" to a month and day.
func ResolveBirthday(phrase string, today time.Time) BirthdayResolution {
	p := newPhrase(phrase)
	if p.empty() {
		return BirthdayResolution{}
	}
	day := truncate(today)

	if offset, ok := p.relativeDay(); ok {
		return BirthdayResolution{Template: &Template{DayOffset: offset}}
	}
	if months, ok := p.season(); ok {
		return BirthdayResolution{Template: &Template{Months: months}}
	}
	if hasTokenPrefix(p.tokens, "месяц") {
		start, _ := monthRange(day, qualifierOffset(p.tokens))
		return BirthdayResolution{Month: int(start.Month())}
	}
	if month, rest, ok := p.monthMention(); ok {
		if res, ok := monthDay(month, rest); ok {
			return res
		}
	}
	if m := numericDate.FindStringSubmatch(p.text); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		if mo >= 1 && mo <= 12 {
			if _, valid := makeDate(2000, time.Month(mo), d, time.UTC); valid {
				return BirthdayResolution{Month: mo, Day: d}
			}
		}
	}
	return BirthdayResolution{}
}

// monthDay pairs a named month with the first short number next to it. A day
// the month cannot hold gives up on the phrase.
func monthDay(month time.Month, rest []string) (BirthdayResolution, bool) {
	res := BirthdayResolution{Month: int(month)}
	for _, t := range rest {
		if isDigits(t) && len(t) <= 2 {
			n, _ := strconv.Atoi(t)
			// 29 February is a valid birthday, so validate against a leap year.
			if _, valid := makeDate(2000, month, n, time.UTC); !valid {
				return BirthdayResolution{}, false
			}
			res.Day = n
			break
		}
	}
	return res, true
}
