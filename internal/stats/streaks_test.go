package stats

import (
	"testing"
	"time"
)

// calFromCounts builds a calendar of 7-day weeks from a flat chronological
// count sequence, padding the final week as a partial one.
func calFromCounts(counts []int) Calendar {
	base := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC) // a Sunday
	var cal Calendar
	for i, c := range counts {
		if i%7 == 0 {
			cal = append(cal, Week{})
		}
		w := &cal[len(cal)-1]
		w.Days = append(w.Days, Day{Date: base.AddDate(0, 0, i), Count: c})
	}
	return cal
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   int
	}{
		{"Empty calendar", nil, 0},
		{"Single day", []int{4}, 4},
		{"Across weeks", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, 45},
		{"All zeros", []int{0, 0, 0}, 0},
		{"Negative counts coerced", []int{5, -3, 2}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Total(calFromCounts(tt.counts))
			if got != tt.want {
				t.Errorf("Total(%v) = %d; want %d", tt.counts, got, tt.want)
			}
		})
	}
}

func TestTotal_OrderIndependent(t *testing.T) {
	a := calFromCounts([]int{3, 0, 7, 1, 0, 9, 2, 5})
	b := calFromCounts([]int{5, 2, 9, 0, 1, 7, 0, 3})

	if Total(a) != Total(b) {
		t.Errorf("Total changed under permutation: %d vs %d", Total(a), Total(b))
	}
}

func TestStreaks(t *testing.T) {
	tests := []struct {
		name        string
		counts      []int
		wantCurrent int
		wantMax     int
	}{
		{"Empty calendar", nil, 0, 0},
		{"Zero then run", []int{0, 3, 5}, 2, 2},
		{"Run broken mid-sequence", []int{5, 3, 0, 7, 4, 2}, 3, 3},
		{"All positive", []int{1, 1, 1, 1, 1}, 5, 5},
		{"Ends on zero", []int{4, 4, 4, 0}, 0, 3},
		{"Single zero", []int{0}, 0, 0},
		{"Older run is longer", []int{1, 1, 1, 1, 0, 1, 1}, 2, 4},
		{"Recent run is longer", []int{1, 0, 1, 1, 1}, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := calFromCounts(tt.counts)

			if got := CurrentStreak(cal); got != tt.wantCurrent {
				t.Errorf("CurrentStreak(%v) = %d; want %d", tt.counts, got, tt.wantCurrent)
			}
			if got := MaxStreak(cal); got != tt.wantMax {
				t.Errorf("MaxStreak(%v) = %d; want %d", tt.counts, got, tt.wantMax)
			}
		})
	}
}

func TestStreaks_CurrentNeverExceedsMax(t *testing.T) {
	sequences := [][]int{
		nil,
		{0},
		{1},
		{9, 9, 9},
		{0, 1, 0, 1, 1, 0, 1, 1, 1},
		{1, 2, 3, 0, 0, 4, 5, 6, 7, 8},
		{-1, 3, 3},
	}

	for _, seq := range sequences {
		current, max := Streaks(calFromCounts(seq))
		if current > max {
			t.Errorf("Streaks(%v): current %d > max %d", seq, current, max)
		}
	}
}

func TestStreaks_PartialWeeks(t *testing.T) {
	// Two positive days in a 2-day partial week following a full zero week.
	cal := Calendar{
		{Days: []Day{{Count: 0}, {Count: 0}, {Count: 0}, {Count: 0}, {Count: 0}, {Count: 0}, {Count: 0}}},
		{Days: []Day{{Count: 2}, {Count: 6}}},
	}

	if got := CurrentStreak(cal); got != 2 {
		t.Errorf("CurrentStreak = %d; want 2", got)
	}
	if got := MaxStreak(cal); got != 2 {
		t.Errorf("MaxStreak = %d; want 2", got)
	}
	if got := Total(cal); got != 8 {
		t.Errorf("Total = %d; want 8", got)
	}
}

func BenchmarkStreaks(b *testing.B) {
	counts := make([]int, 365)
	for i := range counts {
		counts[i] = i % 4
	}
	cal := calFromCounts(counts)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Streaks(cal)
	}
}
