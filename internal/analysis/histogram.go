package analysis

import (
	"time"

	"github.com/soundctl/rewind/internal/models"
)

// Buckets holds a play-count histogram with accumulated durations per bucket.
type Buckets struct {
	Counts      []int64
	DurationsMS []int64
}

// NewBuckets creates an empty histogram with the given number of buckets.
func NewBuckets(size int) Buckets {
	return Buckets{
		Counts:      make([]int64, size),
		DurationsMS: make([]int64, size),
	}
}

// Peak returns the bucket index with the maximum count.
// Ties break toward the lowest index so repeated runs are deterministic.
func (b Buckets) Peak() int {
	peak := 0
	for i, count := range b.Counts {
		if count > b.Counts[peak] {
			peak = i
		}
	}
	return peak
}

// Empty reports whether no plays were recorded in any bucket.
func (b Buckets) Empty() bool {
	for _, count := range b.Counts {
		if count > 0 {
			return false
		}
	}
	return true
}

// HourBuckets builds a 24-bucket histogram of PLAY activities by hour of day.
func HourBuckets(activities []*models.Activity) Buckets {
	buckets := NewBuckets(24)
	for _, activity := range activities {
		if activity.Type() != models.ActivityPlay {
			continue
		}
		hour := activity.CreatedAt().Hour()
		buckets.Counts[hour]++
		buckets.DurationsMS[hour] += activity.PlayDurationMS()
	}
	return buckets
}

// DayBuckets builds a 7-bucket histogram of PLAY activities by day of week, Sunday first.
func DayBuckets(activities []*models.Activity) Buckets {
	buckets := NewBuckets(7)
	for _, activity := range activities {
		if activity.Type() != models.ActivityPlay {
			continue
		}
		day := int(activity.CreatedAt().Weekday())
		buckets.Counts[day]++
		buckets.DurationsMS[day] += activity.PlayDurationMS()
	}
	return buckets
}

// DayName returns the display name for a day-of-week bucket index.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return time.Weekday(day).String()
}
