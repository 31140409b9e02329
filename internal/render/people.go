// internal/render/people.go
package render

import (
	"fmt"
	"strings"

	"staff-assistant/internal/models"
)

func renderPerson(p models.PersonRow) string {
	var sb strings.Builder
	sb.WriteString("Нашёл первое совпадение:\n\n")
	fmt.Fprintf(&sb, "<b>%s</b>\n", esc(fullName(p.Surname, p.Name, p.Father)))
	fmt.Fprintf(&sb, "<b>День рождения:</b> %s\n", formatTime(p.Birthday, dateLayout, missing))
	fmt.Fprintf(&sb, "<b>Вступил в должность:</b> %s\n", formatTime(p.FirstDay, dateLayout, missing))
	fmt.Fprintf(&sb, "<b>Пишет на:</b> %s\n", orDefault(p.Language, missing))
	fmt.Fprintf(&sb, "<b>Грейд:</b> %s\n", orDefault(p.Rank, missing))
	fmt.Fprintf(&sb, "<b>Сейчас работает над проектом:</b> %s\n", orDefault(p.Project, missing))
	fmt.Fprintf(&sb, "<b>Состоит в отделе:</b> %s\n", orDefault(p.Department, missing))
	fmt.Fprintf(&sb, "<b>Почта:</b> %s\n", orDefault(p.Contacts.Email, missing))
	fmt.Fprintf(&sb, "<b>Номер телефона:</b> %s", orDefault(p.Contacts.Phone, missing))
	return sb.String()
}

func renderBirthdays(rows models.BirthdayRows) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, "<b>Найдены следующие дни рождения:</b>")
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("- %s (%s), Отдел: %s",
			esc(fullName(r.Surname, r.Name, r.Father)),
			formatTime(r.Birthday, dayMonthLayout, "Дата не указана"),
			orDefault(r.Department, notSpecified),
		))
	}
	return strings.Join(lines, "\n")
}
