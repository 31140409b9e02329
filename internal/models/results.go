// internal/models/results.go
package models

import "time"

// ResultKind identifies a query family and its row layout. The value doubles as
// the literal tag selected in column 0 of every row.
type ResultKind string

const (
	ResultPersonInfo   ResultKind = "PersonInfo"
	ResultBirthdayList ResultKind = "BirthdayList"
	ResultTaskList     ResultKind = "TaskList"
	ResultEventList    ResultKind = "EventList"
)

// RowSet is the typed result of one compiled query.
type RowSet interface {
	Kind() ResultKind
	Len() int
}

type Contacts struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type PersonRow struct {
	Surname    string     `json:"surname,omitempty"`
	Name       string     `json:"name,omitempty"`
	Father     string     `json:"father,omitempty"`
	Birthday   *time.Time `json:"birthday,omitempty"`
	FirstDay   *time.Time `json:"firstDay,omitempty"`
	Language   string     `json:"language,omitempty"`
	Rank       string     `json:"rank,omitempty"`
	Project    string     `json:"project,omitempty"`
	Department string     `json:"department,omitempty"`
	Contacts   Contacts   `json:"contacts,omitempty"`
}

type BirthdayRow struct {
	Surname    string     `json:"surname,omitempty"`
	Name       string     `json:"name,omitempty"`
	Father     string     `json:"father,omitempty"`
	Birthday   *time.Time `json:"birthday,omitempty"`
	Department string     `json:"department,omitempty"`
}

type TaskRow struct {
	Name            string     `json:"name,omitempty"`
	Description     string     `json:"description,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	AssigneeName    string     `json:"assigneeName,omitempty"`
	AssigneeSurname string     `json:"assigneeSurname,omitempty"`
	Project         string     `json:"project,omitempty"`
}

type EventRow struct {
	Name             string     `json:"name,omitempty"`
	Begin            *time.Time `json:"begin,omitempty"`
	End              *time.Time `json:"end,omitempty"`
	Category         string     `json:"category,omitempty"`
	Description      string     `json:"description,omitempty"`
	OrganizerName    string     `json:"organizerName,omitempty"`
	OrganizerSurname string     `json:"organizerSurname,omitempty"`
}

type (
	PersonRows   []PersonRow
	BirthdayRows []BirthdayRow
	TaskRows     []TaskRow
	EventRows    []EventRow
)

func (PersonRows) Kind() ResultKind   { return ResultPersonInfo }
func (BirthdayRows) Kind() ResultKind { return ResultBirthdayList }
func (TaskRows) Kind() ResultKind     { return ResultTaskList }
func (EventRows) Kind() ResultKind    { return ResultEventList }

func (r PersonRows) Len() int   { return len(r) }
func (r BirthdayRows) Len() int { return len(r) }
func (r TaskRows) Len() int     { return len(r) }
func (r EventRows) Len() int    { return len(r) }

// EmptyRowSet returns a zero-length row set of the given kind.
func EmptyRowSet(kind ResultKind) RowSet {
	switch kind {
	case ResultPersonInfo:
		return PersonRows{}
	case ResultBirthdayList:
		return BirthdayRows{}
	case ResultTaskList:
		return TaskRows{}
	case ResultEventList:
		return EventRows{}
	}
	return nil
}
