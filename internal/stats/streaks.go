package stats

// flatten returns every day count of the calendar in chronological order.
// Negative counts coerce to zero.
func flatten(cal Calendar) []int {
	var counts []int
	for _, week := range cal {
		for _, day := range week.Days {
			c := day.Count
			if c < 0 {
				c = 0
			}
			counts = append(counts, c)
		}
	}
	return counts
}

// Total sums every day count in the calendar. An empty calendar totals 0.
func Total(cal Calendar) int {
	total := 0
	for _, c := range flatten(cal) {
		total += c
	}
	return total
}

// CurrentStreak counts consecutive positive days ending at the most recent
// day. The scan runs most-recent-first and stops at the first zero.
func CurrentStreak(cal Calendar) int {
	counts := flatten(cal)
	streak := 0
	for i := len(counts) - 1; i >= 0; i-- {
		if counts[i] == 0 {
			break
		}
		streak++
	}
	return streak
}

// MaxStreak returns the longest run of consecutive positive days anywhere
// in the calendar, including a run that reaches the most recent day.
func MaxStreak(cal Calendar) int {
	max := 0
	run := 0
	for _, c := range flatten(cal) {
		if c > 0 {
			run++
			if run > max {
				max = run
			}
		} else {
			run = 0
		}
	}
	return max
}

// Streaks computes the current and max streak in one call.
func Streaks(cal Calendar) (current, max int) {
	return CurrentStreak(cal), MaxStreak(cal)
}
