// internal/dates/periods.go
package dates

import "time"

// quarterBounds lists the first and last month of each quarter.
var quarterBounds = [4][2]time.Month{
	{time.January, time.March},
	{time.April, time.June},
	{time.July, time.September},
	{time.October, time.December},
}

// weekRange returns Monday..Sunday of the week containing today, shifted by offset weeks.
func weekRange(today time.Time, offset int) (time.Time, time.Time) {
	sinceMonday := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -sinceMonday+7*offset)
	return monday, monday.AddDate(0, 0, 6)
}

func monthRange(today time.Time, offset int) (time.Time, time.Time) {
	// time.Date normalises month overflow, which covers December -> January.
	start := time.Date(today.Year(), today.Month()+time.Month(offset), 1, 0, 0, 0, 0, today.Location())
	return start, start.AddDate(0, 1, -1)
}

func quarterRange(today time.Time, offset int) (time.Time, time.Time) {
	index := today.Year()*4 + (int(today.Month())-1)/3 + offset
	year, q := index/4, index%4
	bounds := quarterBounds[q]
	start := time.Date(year, bounds[0], 1, 0, 0, 0, 0, today.Location())
	end := time.Date(year, bounds[1]+1, 1, 0, 0, 0, 0, today.Location()).AddDate(0, 0, -1)
	return start, end
}

func yearRange(today time.Time, offset int) (time.Time, time.Time) {
	year := today.Year() + offset
	return time.Date(year, time.January, 1, 0, 0, 0, 0, today.Location()),
		time.Date(year, time.December, 31, 0, 0, 0, 0, today.Location())
}
