// internal/query/event.go
package query

import (
	"staff-assistant/internal/dates"
	"staff-assistant/internal/models"

	"github.com/doug-martin/goqu/v9"
)

// searchEvent has no required entity. Without any filter it lists upcoming events.
func (c *Compiler) searchEvent(e models.EntityDictionary) (*Compiled, error) {
	b := newBuilder(models.ResultEventList, "Event", "ev").Columns(
		col("ev.Name"),
		col("ev.Begin"),
		col("ev.End"),
		col("cat.Name").As("CategoryName"),
		col("ev.Description"),
		col("emp.Name").As("OrganizerName"),
		col("emp.Surname").As("OrganizerSurname"),
	)
	b.LeftJoin(joinCategory, "Categories", "cat", col("cat.Category_Id").Eq(col("ev.CategoryId")))
	b.LeftJoin(joinOrganizer, "Employees", "emp", col("emp.Employee_Id").Eq(col("ev.EmployeeId")))

	if name, ok := e.First(models.EntityEventName); ok {
		b.Where(contains("ev.Name", name))
	}
	if category, ok := e.First(models.EntityEventCategory); ok {
		b.Where(contains("cat.Name", category))
	}
	if _, organizer, ok := e.FirstOf(models.EntityOrganizer, models.EntityPerson, models.EntityName); ok {
		b.Where(nameMatch("emp", organizer))
	}
	if phrase, ok := e.First(models.EntityDate); ok {
		if res := dates.Resolve(phrase, c.today()); res.Resolved() {
			b.Where(dateMatch("ev.Begin", res))
		} else {
			c.logger.Warn("Date phrase not recognized, ignoring", map[string]interface{}{
				"intent": models.IntentSearchEvent,
				"date":   phrase,
			})
		}
	}
	if location, ok := e.First(models.EntityLocation); ok {
		c.logger.Warn("Location filter is not supported by the schema", map[string]interface{}{
			"location": location,
		})
	}

	if b.FilterCount() == 0 {
		b.Where(goqu.L("(CAST(? AS DATE) >= CURRENT_DATE)", col("ev.Begin")))
	}
	b.OrderBy(col("ev.Begin").Asc())

	return b.Limit(listLimit).Build()
}
