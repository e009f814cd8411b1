package stats

import "time"

// dayKey normalizes a timestamp to midnight UTC so map lookups ignore the
// time-of-day and zone of the source data.
func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FromDailyCounts builds a calendar from flat per-day counts, covering the
// inclusive range [from, to]. Weeks are aligned so that day index 0 is
// Sunday: the first week is zero-filled back to its Sunday, the last week
// ends at to with any later weekdays missing. Days absent from counts
// render as zero.
func FromDailyCounts(counts map[time.Time]int, from, to time.Time) Calendar {
	from = dayKey(from)
	to = dayKey(to)
	if to.Before(from) {
		return nil
	}

	// Rewind to the Sunday on or before the range start.
	start := from.AddDate(0, 0, -int(from.Weekday()))

	normalized := make(map[time.Time]int, len(counts))
	for t, c := range counts {
		if c < 0 {
			c = 0
		}
		normalized[dayKey(t)] += c
	}

	var cal Calendar
	for ws := start; !ws.After(to); ws = ws.AddDate(0, 0, 7) {
		week := Week{}
		for i := 0; i < 7; i++ {
			day := ws.AddDate(0, 0, i)
			if day.After(to) {
				break
			}
			week.Days = append(week.Days, Day{Date: day, Count: normalized[day]})
		}
		cal = append(cal, week)
	}
	return cal
}
