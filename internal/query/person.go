// internal/query/person.go
package query

import (
	"staff-assistant/internal/common/errors"
	"staff-assistant/internal/models"
)

// searchPerson returns the first employee matching the name with everything we
// know about them.
func (c *Compiler) searchPerson(e models.EntityDictionary) (*Compiled, error) {
	name, ok := e.First(models.EntityName)
	if !ok {
		return nil, errors.NewMissingEntityError(models.EntityName, "Сущность 'name' не найдена для search_person")
	}

	b := newBuilder(models.ResultPersonInfo, "Employees", "emp").Columns(
		col("emp.Surname"),
		col("emp.Name"),
		col("emp.Father"),
		col("emp.Birthday"),
		col("emp.FirstDay"),
		col("lng.Name").As("LanguageName"),
		col("rnk.Status").As("RankStatus"),
		col("prj.Name").As("ProjectName"),
		col("dprt.Name").As("DepartmentName"),
		col("emp.Contacts"),
	)
	b.LeftJoin(joinLanguage, "Languages", "lng", col("lng.Language_Id").Eq(col("emp.LanguageId")))
	b.LeftJoin(joinRank, "Rank", "rnk", col("rnk.Rank_Id").Eq(col("emp.RankId")))
	b.LeftJoin(joinProject, "Project", "prj", col("prj.Project_Id").Eq(col("emp.ProjectId")))
	b.LeftJoin(joinDepartment, "Department", "dprt", col("dprt.Department_Id").Eq(col("emp.DepartmentId")))

	b.Where(nameMatch("emp", name))
	b.OrderBy(col("emp.Surname").Asc(), col("emp.Name").Asc())

	return b.Limit(1).Build()
}
