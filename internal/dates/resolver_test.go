package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 12 June 2024 is a Wednesday.
var wednesday = time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)

// ==========================
// Resolve
// ==========================

func TestResolve_RelativeDays(t *testing.T) {
	tests := []struct {
		phrase string
		offset int
	}{
		{"сегодня", 0},
		{"Завтра", 1},
		{"послезавтра", 2},
		{"вчера", -1},
		{"позавчера", -2},
		{"завтра вечером", 1},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			res := Resolve(tt.phrase, wednesday)
			require.Equal(t, ShapeTemplate, res.Shape)
			assert.False(t, res.Template.IsMonths())
			assert.Equal(t, tt.offset, res.Template.DayOffset)
		})
	}
}

func TestResolve_Seasons(t *testing.T) {
	tests := []struct {
		phrase string
		months []int
	}{
		{"зимой", []int{12, 1, 2}},
		{"этой весной", []int{3, 4, 5}},
		{"летом", []int{6, 7, 8}},
		{"осенние мероприятия", []int{9, 10, 11}},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			res := Resolve(tt.phrase, wednesday)
			require.Equal(t, ShapeTemplate, res.Shape)
			assert.Equal(t, tt.months, res.Template.Months)
		})
	}
}

func TestResolve_Periods(t *testing.T) {
	tests := []struct {
		name   string
		phrase string
		today  time.Time
		start  time.Time
		end    time.Time
	}{
		{"this week", "на этой неделе", wednesday, day(2024, 6, 10), day(2024, 6, 16)},
		{"next week", "на следующей неделе", wednesday, day(2024, 6, 17), day(2024, 6, 23)},
		{"last week", "на прошлой неделе", wednesday, day(2024, 6, 3), day(2024, 6, 9)},
		{"week from sunday", "на этой неделе", day(2024, 6, 16), day(2024, 6, 10), day(2024, 6, 16)},
		{"this month", "в этом месяце", wednesday, day(2024, 6, 1), day(2024, 6, 30)},
		{"next month rolls over year", "в следующем месяце", day(2024, 12, 5), day(2025, 1, 1), day(2025, 1, 31)},
		{"last month rolls back year", "в прошлом месяце", day(2025, 1, 20), day(2024, 12, 1), day(2024, 12, 31)},
		{"february in leap year", "в следующем месяце", day(2024, 1, 31), day(2024, 2, 1), day(2024, 2, 29)},
		{"this quarter", "в этом квартале", wednesday, day(2024, 4, 1), day(2024, 6, 30)},
		{"next quarter wraps", "в следующем квартале", day(2024, 11, 20), day(2025, 1, 1), day(2025, 3, 31)},
		{"last quarter wraps", "в прошлом квартале", day(2024, 2, 10), day(2023, 10, 1), day(2023, 12, 31)},
		{"this year", "в этом году", wednesday, day(2024, 1, 1), day(2024, 12, 31)},
		{"last year", "в прошлом году", wednesday, day(2023, 1, 1), day(2023, 12, 31)},
		{"named month", "в июне", wednesday, day(2024, 6, 1), day(2024, 6, 30)},
		{"prepositional month", "в марте", wednesday, day(2024, 3, 1), day(2024, 3, 31)},
		{"month of this year", "в мае этого года", wednesday, day(2024, 5, 1), day(2024, 5, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.phrase, tt.today)
			require.Equal(t, ShapeRange, res.Shape)
			assert.Equal(t, tt.start, res.Start)
			assert.Equal(t, tt.end, res.End)
		})
	}
}

func TestResolve_ExactDates(t *testing.T) {
	tests := []struct {
		phrase string
		want   time.Time
	}{
		{"15 марта", day(2024, 3, 15)},
		{"1 сентября", day(2024, 9, 1)},
		{"15 июня 2025 года", day(2025, 6, 15)},
		{"05.07", day(2024, 7, 5)},
		{"5.7.2023", day(2023, 7, 5)},
		{"01.06.25", day(2025, 6, 1)},
		{"до 29.02.2024", day(2024, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			res := Resolve(tt.phrase, wednesday)
			require.Equal(t, ShapeExact, res.Shape)
			assert.Equal(t, tt.want, res.Start)
		})
	}
}

func TestResolve_Unresolved(t *testing.T) {
	phrases := []string{
		"",
		"   ",
		"когда-нибудь",
		"в понедельник",
		"31 июня",
		"31.02",
		"29.02.2023",
		"29.02.23",
		"12.13",
	}

	for _, phrase := range phrases {
		t.Run(phrase, func(t *testing.T) {
			res := Resolve(phrase, wednesday)
			assert.Equal(t, ShapeNone, res.Shape)
			assert.False(t, res.Resolved())
		})
	}
}

// ==========================
// ResolveBirthday
// ==========================

func TestResolveBirthday(t *testing.T) {
	tests := []struct {
		name     string
		phrase   string
		today    time.Time
		validate func(t *testing.T, res BirthdayResolution)
	}{
		{
			name:   "today is a month-day template",
			phrase: "сегодня",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				require.NotNil(t, res.Template)
				assert.Equal(t, 0, res.Template.DayOffset)
				assert.Zero(t, res.Month)
			},
		},
		{
			name:   "tomorrow",
			phrase: "завтра",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				require.NotNil(t, res.Template)
				assert.Equal(t, 1, res.Template.DayOffset)
			},
		},
		{
			name:   "season",
			phrase: "зимой",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				require.NotNil(t, res.Template)
				assert.Equal(t, []int{12, 1, 2}, res.Template.Months)
			},
		},
		{
			name:   "this month",
			phrase: "в этом месяце",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				assert.Nil(t, res.Template)
				assert.Equal(t, 6, res.Month)
				assert.Zero(t, res.Day)
			},
		},
		{
			name:   "next month in december",
			phrase: "в следующем месяце",
			today:  day(2024, 12, 3),
			validate: func(t *testing.T, res BirthdayResolution) {
				assert.Equal(t, 1, res.Month)
			},
		},
		{
			name:   "named month with day",
			phrase: "15 июня",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				assert.Equal(t, 6, res.Month)
				assert.Equal(t, 15, res.Day)
			},
		},
		{
			name:   "leap day is accepted",
			phrase: "29 февраля",
			today:  day(2023, 1, 1),
			validate: func(t *testing.T, res BirthdayResolution) {
				assert.Equal(t, 2, res.Month)
				assert.Equal(t, 29, res.Day)
			},
		},
		{
			name:   "invalid day is not understood",
			phrase: "31 апреля",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				assert.False(t, res.Resolved())
			},
		},
		{
			name:   "month form inside another word still matches",
			phrase: "самая важная",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				assert.Equal(t, 5, res.Month)
				assert.Zero(t, res.Day)
			},
		},
		{
			name:   "numeric day and month",
			phrase: "07.11",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				assert.Equal(t, 11, res.Month)
				assert.Equal(t, 7, res.Day)
			},
		},
		{
			name:   "unknown phrase",
			phrase: "скоро",
			today:  wednesday,
			validate: func(t *testing.T, res BirthdayResolution) {
				assert.False(t, res.Resolved())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, ResolveBirthday(tt.phrase, tt.today))
		})
	}
}
