package query

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"staff-assistant/internal/common/errors"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 12 June 2024, a Wednesday.
var fixedNow = time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)

func newTestCompiler(t *testing.T, opts Options) *Compiler {
	t.Helper()
	return NewCompiler(opts, logger.NewTestLogger(t)).WithClock(func() time.Time { return fixedNow })
}

func entities(pairs ...string) models.EntityDictionary {
	var list []models.Entity
	for i := 0; i+1 < len(pairs); i += 2 {
		list = append(list, models.Entity{Entity: pairs[i], Value: pairs[i+1]})
	}
	return models.NewEntityDictionary(list)
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// assertPlaceholders checks that placeholders are numbered 1..n in order of
// appearance and that n equals the number of args.
func assertPlaceholders(t *testing.T, q *Compiled) {
	t.Helper()
	matches := placeholderRe.FindAllStringSubmatch(q.SQL, -1)
	require.Len(t, matches, len(q.Args), q.SQL)
	for i, m := range matches {
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.Equal(t, i+1, n, q.SQL)
	}
}

func assertBadRequest(t *testing.T, err error, code errors.ErrorCode, reason string) {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, code, stdErr.Code)
	assert.True(t, errors.IsBadRequest(err))
	if reason != "" {
		assert.Contains(t, errors.Reason(err), reason)
	}
}

// ==========================
// Common behaviour
// ==========================

func TestCompile_PlaceholdersMatchArgs(t *testing.T) {
	c := newTestCompiler(t, Options{TaskDescription: true, TaskStatus: true, TaskPriority: true, TaskTags: true})

	tests := []struct {
		intent   models.Intent
		entities models.EntityDictionary
	}{
		{models.IntentSearchPerson, entities("name", "Иван")},
		{models.IntentSearchPerson, entities("name", "Петров Иван")},
		{models.IntentSearchEvent, entities()},
		{models.IntentSearchEvent, entities("event_name", "хакатон", "event_category", "спорт", "organizer", "Анна Смирнова", "date", "на следующей неделе")},
		{models.IntentFindBirthday, entities("department", "IT")},
		{models.IntentFindBirthday, entities("birthday_specifier", "летом", "name", "Олег", "age_older_than", "30", "age_younger_than", "50")},
		{models.IntentCheckTask, entities("project", "Альфа")},
		{models.IntentCheckTask, entities("assignee", "Иванов", "project", "Альфа", "deadline", "завтра", "task_name", "отчет",
			"task_status", "в работе", "task_priority", "высокий", "task_tag", "backend")},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			q, err := c.Compile(string(tt.intent), tt.entities)
			require.NoError(t, err)
			assertPlaceholders(t, q)
			assert.NotContains(t, q.SQL, "INNER JOIN")
		})
	}
}

func TestCompile_UnsupportedIntent(t *testing.T) {
	c := newTestCompiler(t, DefaultOptions())

	for _, intent := range []string{"greet", "", "SEARCH_PERSON"} {
		q, err := c.Compile(intent, entities("name", "Иван"))
		assert.Nil(t, q)
		assertBadRequest(t, err, errors.ErrCodeUnsupportedIntent, "Неизвестный интент")
	}
}

func TestCompile_ValuesNeverInlined(t *testing.T) {
	c := newTestCompiler(t, DefaultOptions())
	injection := "x'||pg_sleep(10)--"

	q, err := c.Compile(string(models.IntentSearchPerson), entities("name", injection))
	require.NoError(t, err)
	assert.NotContains(t, q.SQL, "pg_sleep")
	assert.Equal(t, []interface{}{"%" + injection + "%", "%" + injection + "%"}, q.Args)
}

func TestSupportedIntents(t *testing.T) {
	assert.ElementsMatch(t, models.KnownIntents, SupportedIntents())
}

// ==========================
// search_person
// ==========================

func TestSearchPerson(t *testing.T) {
	c := newTestCompiler(t, DefaultOptions())

	t.Run("two tokens match both orders", func(t *testing.T) {
		q, err := c.Compile("search_person", entities("name", "Петров Иван"))
		require.NoError(t, err)

		assert.Equal(t, models.ResultPersonInfo, q.Kind)
		assert.True(t, strings.HasPrefix(q.SQL, `SELECT 'PersonInfo', "emp"."Surname", "emp"."Name", "emp"."Father"`), q.SQL)
		assert.Contains(t, q.SQL, `FROM "Employees" AS "emp"`)
		assert.Contains(t, q.SQL, `LEFT JOIN "Languages" AS "lng" ON ("lng"."Language_Id" = "emp"."LanguageId")`)
		assert.Contains(t, q.SQL, `LEFT JOIN "Rank" AS "rnk" ON ("rnk"."Rank_Id" = "emp"."RankId")`)
		assert.Contains(t, q.SQL, `LEFT JOIN "Project" AS "prj" ON ("prj"."Project_Id" = "emp"."ProjectId")`)
		assert.Contains(t, q.SQL, `LEFT JOIN "Department" AS "dprt" ON ("dprt"."Department_Id" = "emp"."DepartmentId")`)
		assert.Contains(t, q.SQL, `(("emp"."Name" ILIKE $1) AND ("emp"."Surname" ILIKE $2)) OR (("emp"."Name" ILIKE $3) AND ("emp"."Surname" ILIKE $4))`)
		assert.True(t, strings.HasSuffix(q.SQL, " LIMIT 1"), q.SQL)
		assert.Equal(t, []interface{}{"%Петров%", "%Иван%", "%Иван%", "%Петров%"}, q.Args)
	})

	t.Run("single token matches name or surname", func(t *testing.T) {
		q, err := c.Compile("search_person", entities("name", "Иван"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `WHERE (("emp"."Name" ILIKE $1) OR ("emp"."Surname" ILIKE $2))`)
		assert.Equal(t, []interface{}{"%Иван%", "%Иван%"}, q.Args)
	})

	t.Run("first name entity wins", func(t *testing.T) {
		q, err := c.Compile("search_person", entities("name", "Анна", "name", "Олег"))
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"%Анна%", "%Анна%"}, q.Args)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := c.Compile("search_person", entities("department", "IT"))
		assertBadRequest(t, err, errors.ErrCodeMissingEntity, "Сущность 'name' не найдена для search_person")
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := c.Compile("search_person", entities("name", "   "))
		assertBadRequest(t, err, errors.ErrCodeMissingEntity, "")
	})
}

// ==========================
// search_event
// ==========================

func TestSearchEvent(t *testing.T) {
	c := newTestCompiler(t, DefaultOptions())

	tests := []struct {
		name     string
		entities models.EntityDictionary
		validate func(t *testing.T, q *Compiled)
	}{
		{
			name:     "no filters lists upcoming events",
			entities: entities(),
			validate: func(t *testing.T, q *Compiled) {
				assert.Contains(t, q.SQL, `WHERE (CAST("ev"."Begin" AS DATE) >= CURRENT_DATE)`)
				assert.True(t, strings.HasSuffix(q.SQL, `ORDER BY "ev"."Begin" ASC LIMIT 10`), q.SQL)
				assert.Empty(t, q.Args)
			},
		},
		{
			name:     "unrecognized date is ignored",
			entities: entities("date", "когда-нибудь"),
			validate: func(t *testing.T, q *Compiled) {
				assert.Contains(t, q.SQL, `>= CURRENT_DATE`)
				assert.Empty(t, q.Args)
			},
		},
		{
			name:     "tomorrow",
			entities: entities("date", "завтра"),
			validate: func(t *testing.T, q *Compiled) {
				assert.Contains(t, q.SQL, `(CAST("ev"."Begin" AS DATE) = CURRENT_DATE + CAST($1 AS INTEGER))`)
				assert.Equal(t, []interface{}{int64(1)}, q.Args)
			},
		},
		{
			name:     "today",
			entities: entities("date", "сегодня"),
			validate: func(t *testing.T, q *Compiled) {
				assert.Equal(t, []interface{}{int64(0)}, q.Args)
			},
		},
		{
			name:     "this week",
			entities: entities("date", "на этой неделе"),
			validate: func(t *testing.T, q *Compiled) {
				assert.Contains(t, q.SQL, `(CAST("ev"."Begin" AS DATE) >= $1) AND (CAST("ev"."Begin" AS DATE) <= $2)`)
				assert.Equal(t, []interface{}{"2024-06-10", "2024-06-16"}, q.Args)
			},
		},
		{
			name:     "exact date",
			entities: entities("date", "15 июня"),
			validate: func(t *testing.T, q *Compiled) {
				assert.Contains(t, q.SQL, `(CAST("ev"."Begin" AS DATE) = $1)`)
				assert.Equal(t, []interface{}{"2024-06-15"}, q.Args)
			},
		},
		{
			name:     "season",
			entities: entities("date", "зимой"),
			validate: func(t *testing.T, q *Compiled) {
				assert.Contains(t, q.SQL, `(EXTRACT(MONTH FROM "ev"."Begin") IN ($1, $2, $3))`)
				assert.Equal(t, []interface{}{int64(12), int64(1), int64(2)}, q.Args)
			},
		},
		{
			name:     "name category and organizer",
			entities: entities("organizer", "Смирнова", "event_category", "спорт", "event_name", "турнир"),
			validate: func(t *testing.T, q *Compiled) {
				assert.Contains(t, q.SQL, `LEFT JOIN "Categories" AS "cat" ON ("cat"."Category_Id" = "ev"."CategoryId")`)
				assert.Contains(t, q.SQL, `LEFT JOIN "Employees" AS "emp" ON ("emp"."Employee_Id" = "ev"."EmployeeId")`)
				assert.Contains(t, q.SQL, `("ev"."Name" ILIKE $1)`)
				assert.Contains(t, q.SQL, `("cat"."Name" ILIKE $2)`)
				assert.NotContains(t, q.SQL, "CURRENT_DATE")
				assert.Equal(t, []interface{}{"%турнир%", "%спорт%", "%Смирнова%", "%Смирнова%"}, q.Args)
			},
		},
		{
			name:     "location only is acknowledged but not filtered",
			entities: entities("location", "переговорная"),
			validate: func(t *testing.T, q *Compiled) {
				assert.NotContains(t, q.SQL, "переговорная")
				assert.Empty(t, q.Args)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := c.Compile("search_event", tt.entities)
			require.NoError(t, err)
			assert.Equal(t, models.ResultEventList, q.Kind)
			assert.True(t, strings.HasPrefix(q.SQL, `SELECT 'EventList', "ev"."Name", "ev"."Begin", "ev"."End"`), q.SQL)
			assertPlaceholders(t, q)
			tt.validate(t, q)
		})
	}
}

// ==========================
// find_birthday
// ==========================

func TestFindBirthday(t *testing.T) {
	c := newTestCompiler(t, DefaultOptions())

	t.Run("no criteria", func(t *testing.T) {
		_, err := c.Compile("find_birthday", entities())
		assertBadRequest(t, err, errors.ErrCodeInsufficientCriteria, "Недостаточно критериев для поиска дней рождения.")
	})

	t.Run("department only", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("department", "IT"))
		require.NoError(t, err)
		assert.Equal(t, models.ResultBirthdayList, q.Kind)
		assert.Contains(t, q.SQL, `WHERE ("dprt"."Name" ILIKE $1)`)
		assert.Equal(t, []interface{}{"%IT%"}, q.Args)
		assert.True(t, strings.HasSuffix(q.SQL,
			`ORDER BY EXTRACT(MONTH FROM "emp"."Birthday") ASC, EXTRACT(DAY FROM "emp"."Birthday") ASC, "emp"."Surname" ASC, "emp"."Name" ASC LIMIT 10`), q.SQL)
	})

	t.Run("specifier preferred over date", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("date", "завтра", "birthday_specifier", "в этом месяце"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `(EXTRACT(MONTH FROM "emp"."Birthday") = $1)`)
		assert.NotContains(t, q.SQL, "TO_CHAR")
		assert.Equal(t, []interface{}{int64(6)}, q.Args)
	})

	t.Run("today compares month and day", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("birthday_specifier", "сегодня"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `(TO_CHAR("emp"."Birthday", 'MM-DD') = TO_CHAR(CURRENT_DATE + CAST($1 AS INTEGER), 'MM-DD'))`)
		assert.Equal(t, []interface{}{int64(0)}, q.Args)
	})

	t.Run("date entity with month and day", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("date", "15 июня"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `(EXTRACT(MONTH FROM "emp"."Birthday") = $1) AND (EXTRACT(DAY FROM "emp"."Birthday") = $2)`)
		assert.Equal(t, []interface{}{int64(6), int64(15)}, q.Args)
	})

	t.Run("season", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("birthday_specifier", "летом"))
		require.NoError(t, err)
		assert.Equal(t, []interface{}{int64(6), int64(7), int64(8)}, q.Args)
	})

	t.Run("age filters", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("age_older_than", "30", "age_younger_than", " 40 "))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `(DATE_PART('year', AGE("emp"."Birthday")) > $1)`)
		assert.Contains(t, q.SQL, `(DATE_PART('year', AGE("emp"."Birthday")) < $2)`)
		assert.Equal(t, []interface{}{int64(30), int64(40)}, q.Args)
	})

	t.Run("age alone is enough", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("age_older_than", "30"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `(DATE_PART('year', AGE("emp"."Birthday")) > $1)`)
		assert.Equal(t, []interface{}{int64(30)}, q.Args)
	})

	t.Run("age bound kept next to department", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("age_younger_than", "25", "department", "IT"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `("dprt"."Name" ILIKE $1)`)
		assert.Contains(t, q.SQL, `(DATE_PART('year', AGE("emp"."Birthday")) < $2)`)
		assert.Equal(t, []interface{}{"%IT%", int64(25)}, q.Args)
	})

	t.Run("invalid day of month alone is insufficient", func(t *testing.T) {
		_, err := c.Compile("find_birthday", entities("birthday_specifier", "31 июня"))
		assertBadRequest(t, err, errors.ErrCodeInsufficientCriteria, "")
	})

	t.Run("malformed age is dropped", func(t *testing.T) {
		q, err := c.Compile("find_birthday", entities("age_older_than", "тридцать", "department", "HR"))
		require.NoError(t, err)
		assert.NotContains(t, q.SQL, "DATE_PART")
		assert.Equal(t, []interface{}{"%HR%"}, q.Args)
	})

	t.Run("malformed age alone is insufficient", func(t *testing.T) {
		_, err := c.Compile("find_birthday", entities("age_younger_than", "abc"))
		assertBadRequest(t, err, errors.ErrCodeInsufficientCriteria, "")
	})

	t.Run("unrecognized specifier alone is insufficient", func(t *testing.T) {
		_, err := c.Compile("find_birthday", entities("birthday_specifier", "скоро"))
		assertBadRequest(t, err, errors.ErrCodeInsufficientCriteria, "")
	})
}

// ==========================
// check_task
// ==========================

func TestCheckTask(t *testing.T) {
	t.Run("no criteria", func(t *testing.T) {
		c := newTestCompiler(t, DefaultOptions())
		_, err := c.Compile("check_task", entities())
		assertBadRequest(t, err, errors.ErrCodeInsufficientCriteria, "Недостаточно критериев для поиска задач.")
	})

	t.Run("self reference is skipped", func(t *testing.T) {
		c := newTestCompiler(t, DefaultOptions())
		_, err := c.Compile("check_task", entities("assignee", "мои"))
		assertBadRequest(t, err, errors.ErrCodeInsufficientCriteria, "")

		q, err := c.Compile("check_task", entities("assignee", "Мне", "project", "Альфа"))
		require.NoError(t, err)
		assert.NotContains(t, q.SQL, `"emp_assignee"."Name" ILIKE`)
		assert.Equal(t, []interface{}{"%Альфа%"}, q.Args)
	})

	t.Run("project joins once through the assignee", func(t *testing.T) {
		c := newTestCompiler(t, DefaultOptions())
		q, err := c.Compile("check_task", entities("project", "Альфа"))
		require.NoError(t, err)

		assert.Equal(t, models.ResultTaskList, q.Kind)
		assert.True(t, strings.HasPrefix(q.SQL, `SELECT 'TaskList', "tsk"."Name", "tsk"."Description", "tsk"."Begin" AS "Deadline"`), q.SQL)
		assert.Contains(t, q.SQL, `FROM "Task" AS "tsk"`)
		assert.Contains(t, q.SQL, `LEFT JOIN "Employees" AS "emp_assignee" ON ("emp_assignee"."Employee_Id" = "tsk"."EmployeeId")`)
		assert.Contains(t, q.SQL, `LEFT JOIN "Project" AS "prj" ON ("prj"."Project_Id" = "emp_assignee"."ProjectId")`)
		assert.Equal(t, 1, strings.Count(q.SQL, `JOIN "Project"`))
		assert.Contains(t, q.SQL, `WHERE ("prj"."Name" ILIKE $1)`)
		assert.True(t, strings.HasSuffix(q.SQL, `ORDER BY "tsk"."Begin" ASC NULLS LAST LIMIT 10`), q.SQL)
	})

	t.Run("assignee deadline and name", func(t *testing.T) {
		c := newTestCompiler(t, DefaultOptions())
		q, err := c.Compile("check_task", entities("assignee", "Иванов", "deadline", "15.06", "task_name", "отчет"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `(("emp_assignee"."Name" ILIKE $1) OR ("emp_assignee"."Surname" ILIKE $2))`)
		assert.Contains(t, q.SQL, `(CAST("tsk"."Begin" AS DATE) = $3)`)
		assert.Contains(t, q.SQL, `("tsk"."Name" ILIKE $4)`)
		assert.Equal(t, []interface{}{"%Иванов%", "%Иванов%", "2024-06-15", "%отчет%"}, q.Args)
	})

	t.Run("optional columns disabled", func(t *testing.T) {
		c := newTestCompiler(t, DefaultOptions())
		_, err := c.Compile("check_task", entities("task_status", "в работе", "task_priority", "высокий", "task_tag", "api"))
		assertBadRequest(t, err, errors.ErrCodeInsufficientCriteria, "")
	})

	t.Run("optional columns enabled", func(t *testing.T) {
		c := newTestCompiler(t, Options{TaskDescription: true, TaskStatus: true, TaskPriority: true, TaskTags: true})
		q, err := c.Compile("check_task", entities("task_status", "в работе", "task_priority", "высокий", "task_tag", "api"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `("tsk"."Status" ILIKE $1)`)
		assert.Contains(t, q.SQL, `("tsk"."Priority" ILIKE $2)`)
		assert.Contains(t, q.SQL, `("tsk"."Tags" ILIKE $3)`)
	})

	t.Run("description column disabled", func(t *testing.T) {
		c := newTestCompiler(t, Options{})
		q, err := c.Compile("check_task", entities("project", "Альфа"))
		require.NoError(t, err)
		assert.Contains(t, q.SQL, `NULL AS "Description"`)
		assert.NotContains(t, q.SQL, `"tsk"."Description"`)
	})
}
