package analysis

import "time"

// CountByYear tallies timestamps per calendar year.
// Zero timestamps are skipped.
func CountByYear(timestamps []time.Time) map[int]int {
	counts := make(map[int]int)
	for _, ts := range timestamps {
		if ts.IsZero() {
			continue
		}
		counts[ts.Year()]++
	}
	return counts
}

// PeakYear returns the year with the maximum count and that count.
// Ties break toward the lowest year. Returns (0, 0) for empty input.
func PeakYear(counts map[int]int) (int, int) {
	peakYear, peakCount := 0, 0
	for year, count := range counts {
		if count > peakCount || (count == peakCount && (peakYear == 0 || year < peakYear)) {
			peakYear = year
			peakCount = count
		}
	}
	return peakYear, peakCount
}
