// internal/dates/vocabulary.go
package dates

import (
	"sort"
	"strings"
	"time"
)

type monthForm struct {
	word  string
	month time.Month
}

// monthForms holds nominative, genitive and prepositional forms, longest first so
// that substring matching prefers "марта" over "март".
var monthForms = buildMonthForms(map[time.Month][]string{
	time.January:   {"январь", "января", "январе"},
	time.February:  {"февраль", "февраля", "феврале"},
	time.March:     {"март", "марта", "марте"},
	time.April:     {"апрель", "апреля", "апреле"},
	time.May:       {"май", "мая", "мае"},
	time.June:      {"июнь", "июня", "июне"},
	time.July:      {"июль", "июля", "июле"},
	time.August:    {"август", "августа", "августе"},
	time.September: {"сентябрь", "сентября", "сентябре"},
	time.October:   {"октябрь", "октября", "октябре"},
	time.November:  {"ноябрь", "ноября", "ноябре"},
	time.December:  {"декабрь", "декабря", "декабре"},
})

func buildMonthForms(src map[time.Month][]string) []monthForm {
	var forms []monthForm
	for month, words := range src {
		for _, w := range words {
			forms = append(forms, monthForm{word: w, month: month})
		}
	}
	sort.Slice(forms, func(i, j int) bool {
		li, lj := len([]rune(forms[i].word)), len([]rune(forms[j].word))
		if li != lj {
			return li > lj
		}
		return forms[i].word < forms[j].word
	})
	return forms
}

// relativeDays maps whole-word day expressions to an offset from today.
var relativeDays = map[string]int{
	"позавчера":   -2,
	"вчера":       -1,
	"сегодня":     0,
	"завтра":      1,
	"послезавтра": 2,
}

var (
	winter = []int{12, 1, 2}
	spring = []int{3, 4, 5}
	summer = []int{6, 7, 8}
	autumn = []int{9, 10, 11}
)

var seasonForms = map[string][]int{
	"зима": winter, "зимой": winter, "зиму": winter, "зимы": winter, "зиме": winter,
	"зимний": winter, "зимние": winter, "зимних": winter,
	"весна": spring, "весной": spring, "весну": spring, "весны": spring, "весне": spring,
	"весенний": spring, "весенние": spring, "весенних": spring,
	"лето": summer, "летом": summer, "лета": summer, "лете": summer,
	"летний": summer, "летние": summer, "летних": summer,
	"осень": autumn, "осенью": autumn, "осени": autumn,
	"осенний": autumn, "осенние": autumn, "осенних": autumn,
}

var (
	nextQualifiers = []string{"следующ", "будущ", "грядущ"}
	lastQualifiers = []string{"прошл", "предыдущ", "минувш"}
)

// qualifierOffset reports -1, 0 or +1 for last, this (or unqualified) and next.
func qualifierOffset(tokens []string) int {
	for _, t := range tokens {
		if hasAnyPrefix(t, nextQualifiers) {
			return 1
		}
		if hasAnyPrefix(t, lastQualifiers) {
			return -1
		}
	}
	return 0
}

func hasAnyPrefix(token string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

func hasTokenPrefix(tokens []string, prefix string) bool {
	for _, t := range tokens {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}
