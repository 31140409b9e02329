// internal/models/intent.go
package models

type Intent string

const (
	IntentSearchPerson Intent = "search_person"
	IntentSearchEvent  Intent = "search_event"
	IntentFindBirthday Intent = "find_birthday"
	IntentCheckTask    Intent = "check_task"
)

// Entity types produced by the NLU model.
const (
	EntityName              = "name"
	EntityPerson            = "person"
	EntityOrganizer         = "organizer"
	EntityAssignee          = "assignee"
	EntityDepartment        = "department"
	EntityProject           = "project"
	EntityDate              = "date"
	EntityDeadline          = "deadline"
	EntityBirthdaySpecifier = "birthday_specifier"
	EntityAgeOlder          = "age_older_than"
	EntityAgeYounger        = "age_younger_than"
	EntityEventName         = "event_name"
	EntityEventCategory     = "event_category"
	EntityLocation          = "location"
	EntityTaskName          = "task_name"
	EntityTaskStatus        = "task_status"
	EntityTaskPriority      = "task_priority"
	EntityTaskTag           = "task_tag"
)

var KnownIntents = []Intent{
	IntentSearchPerson,
	IntentSearchEvent,
	IntentFindBirthday,
	IntentCheckTask,
}

func (i Intent) IsKnown() bool {
	for _, known := range KnownIntents {
		if i == known {
			return true
		}
	}
	return false
}
