// Package analysis implements the pure aggregation and similarity functions behind the report.
//
// Everything here operates on already-fetched collections and is deterministic:
// ranked lists use a stable descending sort, and peak-bucket selection breaks
// ties toward the lowest bucket index so repeated runs over the same data
// always produce the same report.
//
// Key pieces:
//   - [TopN] : stable top-N ranking by an arbitrary numeric key
//   - [HourBuckets] / [DayBuckets] : time-of-day and day-of-week play histograms
//   - [Persona] : categorical listener label derived from the peak hour
//   - [CountByYear] / [PeakYear] : calendar-year aggregation
//   - [Jaccard] / [BestMatch] : taste-similarity scoring against followed users
package analysis
