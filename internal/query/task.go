// internal/query/task.go
package query

import (
	"strings"

	"staff-assistant/internal/common/errors"
	"staff-assistant/internal/dates"
	"staff-assistant/internal/models"

	"github.com/doug-martin/goqu/v9"
)

// selfReferences cannot be resolved without the caller's identity.
var selfReferences = map[string]bool{
	"я": true, "мне": true, "меня": true, "мной": true,
	"мои": true, "мой": true, "моя": true, "мое": true, "моё": true, "моих": true,
}

// checkTask looks up tasks. Tasks have no project of their own; the project is
// reached through the assignee.
func (c *Compiler) checkTask(e models.EntityDictionary) (*Compiled, error) {
	description := interface{}(col("tsk.Description"))
	if !c.options.TaskDescription {
		description = goqu.L("NULL").As("Description")
	}

	b := newBuilder(models.ResultTaskList, "Task", "tsk").Columns(
		col("tsk.Name"),
		description,
		col("tsk.Begin").As("Deadline"),
		col("emp_assignee.Name").As("AssigneeName"),
		col("emp_assignee.Surname").As("AssigneeSurname"),
		col("prj.Name").As("ProjectName"),
	)
	b.LeftJoin(joinAssignee, "Employees", "emp_assignee", col("emp_assignee.Employee_Id").Eq(col("tsk.EmployeeId")))
	c.joinTaskProject(b)

	if entity, assignee, ok := e.FirstOf(models.EntityAssignee, models.EntityPerson, models.EntityName); ok {
		if selfReferences[strings.ToLower(assignee)] {
			c.logger.Warn("Self reference cannot be resolved without caller identity, skipping assignee filter", map[string]interface{}{
				"entity": entity,
				"value":  assignee,
			})
		} else {
			b.Where(nameMatch("emp_assignee", assignee))
		}
	}
	if project, ok := e.First(models.EntityProject); ok {
		c.joinTaskProject(b)
		b.Where(contains("prj.Name", project))
	}
	if _, phrase, ok := e.FirstOf(models.EntityDeadline, models.EntityDate); ok {
		if res := dates.Resolve(phrase, c.today()); res.Resolved() {
			b.Where(dateMatch("tsk.Begin", res))
		} else {
			c.logger.Warn("Date phrase not recognized, ignoring", map[string]interface{}{
				"intent": models.IntentCheckTask,
				"date":   phrase,
			})
		}
	}
	if name, ok := e.First(models.EntityTaskName); ok {
		b.Where(contains("tsk.Name", name))
	}
	c.optionalTaskFilter(b, e, models.EntityTaskStatus, "tsk.Status", c.options.TaskStatus)
	c.optionalTaskFilter(b, e, models.EntityTaskPriority, "tsk.Priority", c.options.TaskPriority)
	c.optionalTaskFilter(b, e, models.EntityTaskTag, "tsk.Tags", c.options.TaskTags)

	if b.FilterCount() == 0 {
		return nil, errors.NewInsufficientCriteriaError("Недостаточно критериев для поиска задач.")
	}

	b.OrderBy(col("tsk.Begin").Asc().NullsLast())

	return b.Limit(listLimit).Build()
}

func (c *Compiler) joinTaskProject(b *Builder) {
	b.LeftJoin(joinProject, "Project", "prj", col("prj.Project_Id").Eq(col("emp_assignee.ProjectId")))
}

func (c *Compiler) optionalTaskFilter(b *Builder, e models.EntityDictionary, entity, ref string, enabled bool) {
	value, ok := e.First(entity)
	if !ok {
		return
	}
	if !enabled {
		c.logger.Warn("Task column not enabled for this schema, filter skipped", map[string]interface{}{
			"entity": entity,
			"column": ref,
		})
		return
	}
	b.Where(contains(ref, value))
}
