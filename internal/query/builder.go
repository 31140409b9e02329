// internal/query/builder.go
package query

import (
	"fmt"
	"strconv"

	"staff-assistant/internal/models"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
)

var dialect = goqu.Dialect("postgres")

// Compiled is a parameterized statement ready for the database gateway.
type Compiled struct {
	Kind models.ResultKind
	SQL  string
	Args []interface{}
}

type joinKey string

const (
	joinLanguage   joinKey = "language"
	joinRank       joinKey = "rank"
	joinProject    joinKey = "project"
	joinDepartment joinKey = "department"
	joinCategory   joinKey = "category"
	joinOrganizer  joinKey = "organizer"
	joinAssignee   joinKey = "assignee"
)

type join struct {
	table exp.AliasedExpression
	on    exp.JoinCondition
}

// Builder assembles one SELECT. User values only enter through goqu expressions
// rendered in prepared mode, so every value becomes a positional placeholder
// and Args follows placeholder order.
type Builder struct {
	kind    models.ResultKind
	from    exp.AliasedExpression
	columns []interface{}
	joins   []join
	joined  map[joinKey]bool
	where   []exp.Expression
	order   []exp.OrderedExpression
	limit   int
}

func newBuilder(kind models.ResultKind, table, alias string) *Builder {
	// The tag is a code constant, never user input.
	tag := goqu.L("'" + string(kind) + "'")
	return &Builder{
		kind:    kind,
		from:    goqu.T(table).As(alias),
		columns: []interface{}{tag},
		joined:  make(map[joinKey]bool),
	}
}

func (b *Builder) Columns(cols ...interface{}) *Builder {
	b.columns = append(b.columns, cols...)
	return b
}

// LeftJoin adds a join once per key and reports whether it was added.
func (b *Builder) LeftJoin(key joinKey, table, alias string, on exp.Expression) bool {
	if b.joined[key] {
		return false
	}
	b.joined[key] = true
	b.joins = append(b.joins, join{table: goqu.T(table).As(alias), on: goqu.On(on)})
	return true
}

func (b *Builder) HasJoin(key joinKey) bool { return b.joined[key] }

func (b *Builder) Where(e exp.Expression) *Builder {
	if e != nil {
		b.where = append(b.where, e)
	}
	return b
}

func (b *Builder) FilterCount() int { return len(b.where) }

func (b *Builder) OrderBy(order ...exp.OrderedExpression) *Builder {
	b.order = append(b.order, order...)
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

func (b *Builder) Build() (*Compiled, error) {
	ds := dialect.From(b.from).Prepared(true).Select(b.columns...)
	for _, j := range b.joins {
		ds = ds.LeftJoin(j.table, j.on)
	}
	if len(b.where) > 0 {
		ds = ds.Where(b.where...)
	}
	if len(b.order) > 0 {
		ds = ds.Order(b.order...)
	}

	sql, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", b.kind, err)
	}
	// goqu would bind LIMIT as a parameter; the limit is fixed per query family.
	if b.limit > 0 {
		sql += " LIMIT " + strconv.Itoa(b.limit)
	}
	if args == nil {
		args = []interface{}{}
	}

	return &Compiled{Kind: b.kind, SQL: sql, Args: args}, nil
}
