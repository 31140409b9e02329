// internal/query/scan.go
package query

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"staff-assistant/internal/models"
)

// Scan reads rows produced by a compiled query of the given kind. The column
// order matches the SELECT lists built in this package.
func Scan(kind models.ResultKind, rows *sql.Rows) (models.RowSet, error) {
	switch kind {
	case models.ResultPersonInfo:
		return scanPersons(rows)
	case models.ResultBirthdayList:
		return scanBirthdays(rows)
	case models.ResultTaskList:
		return scanTasks(rows)
	case models.ResultEventList:
		return scanEvents(rows)
	}
	return nil, fmt.Errorf("no scanner for result kind %q", kind)
}

func scanPersons(rows *sql.Rows) (models.PersonRows, error) {
	out := models.PersonRows{}
	for rows.Next() {
		var (
			tag                                              string
			surname, name, father, lang, rank, project, dept sql.NullString
			birthday, firstDay                               sql.NullTime
			contacts                                         []byte
		)
		if err := rows.Scan(&tag, &surname, &name, &father, &birthday, &firstDay,
			&lang, &rank, &project, &dept, &contacts); err != nil {
			return nil, fmt.Errorf("scan person row: %w", err)
		}
		if err := checkTag(tag, models.ResultPersonInfo); err != nil {
			return nil, err
		}
		out = append(out, models.PersonRow{
			Surname:    text(surname),
			Name:       text(name),
			Father:     text(father),
			Birthday:   timestamp(birthday),
			FirstDay:   timestamp(firstDay),
			Language:   text(lang),
			Rank:       text(rank),
			Project:    text(project),
			Department: text(dept),
			Contacts:   decodeContacts(contacts),
		})
	}
	return out, rows.Err()
}

func scanBirthdays(rows *sql.Rows) (models.BirthdayRows, error) {
	out := models.BirthdayRows{}
	for rows.Next() {
		var (
			tag                         string
			surname, name, father, dept sql.NullString
			birthday                    sql.NullTime
		)
		if err := rows.Scan(&tag, &surname, &name, &father, &birthday, &dept); err != nil {
			return nil, fmt.Errorf("scan birthday row: %w", err)
		}
		if err := checkTag(tag, models.ResultBirthdayList); err != nil {
			return nil, err
		}
		out = append(out, models.BirthdayRow{
			Surname:    text(surname),
			Name:       text(name),
			Father:     text(father),
			Birthday:   timestamp(birthday),
			Department: text(dept),
		})
	}
	return out, rows.Err()
}

func scanTasks(rows *sql.Rows) (models.TaskRows, error) {
	out := models.TaskRows{}
	for rows.Next() {
		var (
			tag                                           string
			name, description, assignee, surname, project sql.NullString
			deadline                                      sql.NullTime
		)
		if err := rows.Scan(&tag, &name, &description, &deadline, &assignee, &surname, &project); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		if err := checkTag(tag, models.ResultTaskList); err != nil {
			return nil, err
		}
		out = append(out, models.TaskRow{
			Name:            text(name),
			Description:     text(description),
			Deadline:        timestamp(deadline),
			AssigneeName:    text(assignee),
			AssigneeSurname: text(surname),
			Project:         text(project),
		})
	}
	return out, rows.Err()
}

func scanEvents(rows *sql.Rows) (models.EventRows, error) {
	out := models.EventRows{}
	for rows.Next() {
		var (
			tag                                              string
			name, category, description, orgName, orgSurname sql.NullString
			begin, end                                       sql.NullTime
		)
		if err := rows.Scan(&tag, &name, &begin, &end, &category, &description, &orgName, &orgSurname); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if err := checkTag(tag, models.ResultEventList); err != nil {
			return nil, err
		}
		out = append(out, models.EventRow{
			Name:             text(name),
			Begin:            timestamp(begin),
			End:              timestamp(end),
			Category:         text(category),
			Description:      text(description),
			OrganizerName:    text(orgName),
			OrganizerSurname: text(orgSurname),
		})
	}
	return out, rows.Err()
}

func checkTag(tag string, want models.ResultKind) error {
	if models.ResultKind(tag) != want {
		return fmt.Errorf("result tag mismatch: got %q, want %q", tag, want)
	}
	return nil
}

func text(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return strings.TrimSpace(ns.String)
}

func timestamp(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// decodeContacts reads the JSON contacts column. Unreadable contacts render as
// missing rather than failing the whole answer.
func decodeContacts(raw []byte) models.Contacts {
	if len(raw) == 0 {
		return models.Contacts{}
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Contacts{}
	}
	return models.Contacts{
		Phone: stringField(fields["phone"]),
		Email: stringField(fields["email"]),
	}
}

func stringField(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return fmt.Sprintf("%.0f", val)
	default:
		return fmt.Sprint(val)
	}
}
