package analysis

import (
	"sort"

	"github.com/soundctl/rewind/internal/models"
)

// msPerHour converts accumulated track durations to listening hours.
const msPerHour = 3_600_000

// hoursPerBook approximates one 300-page book at 50 pages per hour of reading.
const hoursPerBook = 6.0

// TopN returns the first n items sorted descending by key.
// The sort is stable: ties retain their original relative order.
// Applying TopN to its own output returns the same slice.
func TopN[T any](items []T, key func(T) int64, n int) []T {
	if n < 0 {
		n = 0
	}

	ranked := make([]T, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return key(ranked[i]) > key(ranked[j])
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// TotalListeningHours sums track durations and converts to hours.
func TotalListeningHours(tracks []models.Track) float64 {
	var totalMS int64
	for _, track := range tracks {
		totalMS += track.DurationMS
	}
	return float64(totalMS) / msPerHour
}

// HoursFromMS converts a millisecond total to hours.
func HoursFromMS(ms int64) float64 {
	return float64(ms) / msPerHour
}

// BooksEquivalent converts listening hours to the number of books the user
// could have read in the same time.
func BooksEquivalent(hours float64) float64 {
	return hours / hoursPerBook
}

// SumPlaybacks totals the upstream playback counters across tracks.
func SumPlaybacks(tracks []models.Track) int64 {
	var total int64
	for _, track := range tracks {
		total += track.PlaybackCount
	}
	return total
}

// SumLikes totals the upstream like counters across tracks.
func SumLikes(tracks []models.Track) int64 {
	var total int64
	for _, track := range tracks {
		total += track.LikesCount
	}
	return total
}

// SumReposts totals the upstream repost counters across tracks.
func SumReposts(tracks []models.Track) int64 {
	var total int64
	for _, track := range tracks {
		total += track.RepostsCount
	}
	return total
}

// CountNames tallies occurrences of each non-empty name produced by fn
// and returns the tallies ranked descending. Names tied on count are
// ordered by first appearance in the input.
func CountNames[T any](items []T, fn func(T) []string) []models.NameCount {
	counts := make(map[string]int64)
	order := make(map[string]int)

	for _, item := range items {
		for _, name := range fn(item) {
			if name == "" {
				continue
			}
			if _, seen := counts[name]; !seen {
				order[name] = len(order)
			}
			counts[name]++
		}
	}

	ranked := make([]models.NameCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, models.NameCount{Name: name, Count: count})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return order[ranked[i].Name] < order[ranked[j].Name]
	})

	return ranked
}
