// internal/query/filters.go
package query

import (
	"strings"

	"staff-assistant/internal/dates"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const dateLayout = "2006-01-02"

func col(ref string) exp.IdentifierExpression { return goqu.I(ref) }

// contains is a case-insensitive substring match.
func contains(ref, value string) exp.Expression {
	return col(ref).ILike("%" + value + "%")
}

// nameMatch matches a person by given name and surname. Two tokens are tried in
// both orders, so "Петров Иван" and "Иван Петров" find the same employee.
func nameMatch(alias, value string) exp.Expression {
	name, surname := alias+".Name", alias+".Surname"
	fields := strings.Fields(value)
	if len(fields) < 2 {
		v := strings.Join(fields, " ")
		return goqu.Or(contains(name, v), contains(surname, v))
	}
	first, rest := fields[0], strings.Join(fields[1:], " ")
	return goqu.Or(
		goqu.And(contains(name, first), contains(surname, rest)),
		goqu.And(contains(name, rest), contains(surname, first)),
	)
}

// dateMatch turns a resolved phrase into a predicate on a timestamp column.
// It returns nil for unresolved phrases.
func dateMatch(ref string, res dates.Resolution) exp.Expression {
	asDate := goqu.Cast(col(ref), "DATE")
	switch res.Shape {
	case dates.ShapeExact:
		return asDate.Eq(res.Start.Format(dateLayout))
	case dates.ShapeRange:
		return goqu.And(
			asDate.Gte(res.Start.Format(dateLayout)),
			asDate.Lte(res.End.Format(dateLayout)),
		)
	case dates.ShapeTemplate:
		if res.Template.IsMonths() {
			return monthIn(ref, res.Template.Months)
		}
		return goqu.L("(CAST(? AS DATE) = CURRENT_DATE + CAST(? AS INTEGER))", col(ref), res.Template.DayOffset)
	}
	return nil
}

// birthdayMatch compares month and day only, ignoring the birth year.
func birthdayMatch(ref string, res dates.BirthdayResolution) exp.Expression {
	if res.Template != nil {
		if res.Template.IsMonths() {
			return monthIn(ref, res.Template.Months)
		}
		return goqu.L(
			"(TO_CHAR(?, 'MM-DD') = TO_CHAR(CURRENT_DATE + CAST(? AS INTEGER), 'MM-DD'))",
			col(ref), res.Template.DayOffset,
		)
	}
	if res.Month == 0 {
		return nil
	}
	month := goqu.L("EXTRACT(MONTH FROM ?)", col(ref)).Eq(res.Month)
	if res.Day == 0 {
		return month
	}
	return goqu.And(month, goqu.L("EXTRACT(DAY FROM ?)", col(ref)).Eq(res.Day))
}

func monthIn(ref string, months []int) exp.Expression {
	vals := make([]interface{}, len(months))
	for i, m := range months {
		vals[i] = m
	}
	return goqu.L("EXTRACT(MONTH FROM ?)", col(ref)).In(vals...)
}

func ageOver(ref string, years int) exp.Expression {
	return goqu.L("DATE_PART('year', AGE(?))", col(ref)).Gt(years)
}

func ageUnder(ref string, years int) exp.Expression {
	return goqu.L("DATE_PART('year', AGE(?))", col(ref)).Lt(years)
}
