// internal/query/birthday.go
package query

import (
	"strconv"
	"strings"

	"staff-assistant/internal/common/errors"
	"staff-assistant/internal/dates"
	"staff-assistant/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

func (c *Compiler) findBirthday(e models.EntityDictionary) (*Compiled, error) {
	b := newBuilder(models.ResultBirthdayList, "Employees", "emp").Columns(
		col("emp.Surname"),
		col("emp.Name"),
		col("emp.Father"),
		col("emp.Birthday"),
		col("dprt.Name").As("DepartmentName"),
	)
	b.LeftJoin(joinDepartment, "Department", "dprt", col("dprt.Department_Id").Eq(col("emp.DepartmentId")))

	if entity, phrase, ok := e.FirstOf(models.EntityBirthdaySpecifier, models.EntityDate); ok {
		if res := dates.ResolveBirthday(phrase, c.today()); res.Resolved() {
			b.Where(birthdayMatch("emp.Birthday", res))
		} else {
			c.logger.Warn("Birthday phrase not recognized, ignoring", map[string]interface{}{
				"entity": entity,
				"value":  phrase,
			})
		}
	}
	if department, ok := e.First(models.EntityDepartment); ok {
		b.Where(contains("dprt.Name", department))
	}
	if name, ok := e.First(models.EntityName); ok {
		b.Where(nameMatch("emp", name))
	}
	if years, ok := c.ageEntity(e, models.EntityAgeOlder); ok {
		b.Where(ageOver("emp.Birthday", years))
	}
	if years, ok := c.ageEntity(e, models.EntityAgeYounger); ok {
		b.Where(ageUnder("emp.Birthday", years))
	}

	if b.FilterCount() == 0 {
		return nil, errors.NewInsufficientCriteriaError("Недостаточно критериев для поиска дней рождения.")
	}

	b.OrderBy(
		birthdayPart("MONTH").Asc(),
		birthdayPart("DAY").Asc(),
		col("emp.Surname").Asc(),
		col("emp.Name").Asc(),
	)

	return b.Limit(listLimit).Build()
}

func birthdayPart(field string) exp.LiteralExpression {
	return goqu.L("EXTRACT("+field+" FROM ?)", col("emp.Birthday"))
}

// ageEntity parses an age filter. A malformed value drops the filter.
func (c *Compiler) ageEntity(e models.EntityDictionary, entity string) (int, bool) {
	raw, ok := e.First(entity)
	if !ok {
		return 0, false
	}
	years, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || years < 0 {
		c.logger.Warn("Malformed age filter dropped", map[string]interface{}{
			"entity": entity,
			"value":  raw,
		})
		return 0, false
	}
	return years, true
}
