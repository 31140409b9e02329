// internal/render/lists.go
package render

import (
	"fmt"
	"strings"
	"time"

	"staff-assistant/internal/models"
)

func renderTasks(rows models.TaskRows) string {
	blocks := make([]string, 0, len(rows)+1)
	blocks = append(blocks, "<b>Найдены следующие задачи:</b>")
	for _, r := range rows {
		var sb strings.Builder
		fmt.Fprintf(&sb, "<b>%s</b> (Проект: %s)", orDefault(r.Name, "Без названия"), orDefault(r.Project, "Без проекта"))
		fmt.Fprintf(&sb, "\n  <i>Описание:</i> %s", orDefault(r.Description, "Нет описания"))
		fmt.Fprintf(&sb, "\n  Исполнитель: %s", orDefault(fullName(r.AssigneeSurname, r.AssigneeName), missing))
		// Status and priority are not selected by the current schema.
		fmt.Fprintf(&sb, "\n  Дата/Дедлайн: %s, Статус: %s, Приоритет: %s",
			formatTime(r.Deadline, dateTimeLayout, "Нет даты"), missing, missing)
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

func renderEvents(rows models.EventRows) string {
	blocks := make([]string, 0, len(rows)+1)
	blocks = append(blocks, "<b>Найдены следующие мероприятия:</b>")
	for _, r := range rows {
		var sb strings.Builder
		fmt.Fprintf(&sb, "<b>%s</b> (Категория: %s)", orDefault(r.Name, "Без названия"), orDefault(r.Category, "Не указана"))
		fmt.Fprintf(&sb, "\n  <i>Начало:</i> %s", formatTime(r.Begin, eventStartLayout, "Время начала не указано"))

		if d, ok := eventDuration(r.Begin, r.End); ok {
			fmt.Fprintf(&sb, ", <i>Длительность:</i> %s", d)
		} else if r.End != nil {
			fmt.Fprintf(&sb, "\n  <i>Окончание:</i> %s", formatTime(r.End, eventStartLayout, missing))
		}

		fmt.Fprintf(&sb, "\n  <i>Организатор:</i> %s", orDefault(fullName(r.OrganizerSurname, r.OrganizerName), notSpecified))
		if desc := strings.TrimSpace(r.Description); desc != "" {
			fmt.Fprintf(&sb, "\n  <i>Описание:</i> %s", esc(shorten(desc, descriptionLimit)))
		}
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

// eventDuration reports the coarsest readable duration when end is after begin.
func eventDuration(begin, end *time.Time) (string, bool) {
	if begin == nil || end == nil || !end.After(*begin) {
		return "", false
	}
	d := end.Sub(*begin)
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d ч %d мин", hours, minutes), true
	case hours > 0:
		return fmt.Sprintf("%d ч", hours), true
	case minutes > 0:
		return fmt.Sprintf("%d мин", minutes), true
	}
	if seconds := int(d / time.Second); seconds > 0 {
		return fmt.Sprintf("%d сек", seconds), true
	}
	return "", false
}

// shorten collapses whitespace and cuts at a word boundary so the result,
// ellipsis included, fits in limit runes.
func shorten(s string, limit int) string {
	words := strings.Fields(s)
	joined := strings.Join(words, " ")
	if len([]rune(joined)) <= limit {
		return joined
	}

	budget := limit - len([]rune(ellipsis))
	var kept []string
	length := 0
	for _, w := range words {
		n := len([]rune(w))
		if len(kept) > 0 {
			n++
		}
		if length+n > budget {
			break
		}
		kept = append(kept, w)
		length += n
	}
	if len(kept) == 0 {
		return string([]rune(joined)[:budget]) + ellipsis
	}
	return strings.Join(kept, " ") + ellipsis
}
