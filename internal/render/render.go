// Package render turns typed query results into chat messages. Output uses the
// Telegram HTML subset (<b>, <i>) and every value is escaped.
package render

import (
	"html"
	"strings"
	"time"

	"staff-assistant/internal/models"
)

const (
	NothingFound     = "По вашему запросу ничего не найдено."
	NoBirthdaysFound = "Дни рождения по вашим критериям не найдены."
	NoTasksFound     = "Задачи по вашим критериям не найдены."
	NoEventsFound    = "Мероприятия по вашим критериям не найдены."
	descriptionLimit = 100
	ellipsis         = "..."
	missing          = "-"
	dateLayout       = "02.01.2006"
	dayMonthLayout   = "02.01"
	dateTimeLayout   = "02.01.2006 15:04"
	eventStartLayout = "02.01.2006 в 15:04"
	notSpecified     = "Не указан"
)

// Render formats a row set. It never returns an empty string.
func Render(rs models.RowSet) string {
	if rs == nil || rs.Len() == 0 {
		return emptyMessage(rs)
	}
	switch rows := rs.(type) {
	case models.PersonRows:
		return renderPerson(rows[0])
	case models.BirthdayRows:
		return renderBirthdays(rows)
	case models.TaskRows:
		return renderTasks(rows)
	case models.EventRows:
		return renderEvents(rows)
	}
	return NothingFound
}

func emptyMessage(rs models.RowSet) string {
	if rs == nil {
		return NothingFound
	}
	switch rs.Kind() {
	case models.ResultBirthdayList:
		return NoBirthdaysFound
	case models.ResultTaskList:
		return NoTasksFound
	case models.ResultEventList:
		return NoEventsFound
	}
	return NothingFound
}

func esc(s string) string { return html.EscapeString(s) }

// orDefault escapes s, or returns def when s is blank.
func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return esc(s)
}

func formatTime(t *time.Time, layout, def string) string {
	if t == nil || t.IsZero() {
		return def
	}
	return t.Format(layout)
}

// fullName joins the non-empty parts with single spaces.
func fullName(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
