package analysis

import (
	"math"
	"testing"

	"github.com/soundctl/rewind/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTopN(t *testing.T) {
	tracks := []models.Track{
		{ID: "a", PlaybackCount: 10},
		{ID: "b", PlaybackCount: 50},
		{ID: "c", PlaybackCount: 30},
		{ID: "d", PlaybackCount: 50},
		{ID: "e", PlaybackCount: 5},
		{ID: "f", PlaybackCount: 40},
	}
	key := func(tr models.Track) int64 { return tr.PlaybackCount }

	t.Run("Sorted Descending", func(t *testing.T) {
		top := TopN(tracks, key, 5)
		if len(top) != 5 {
			t.Fatalf("expected 5 items, got %d", len(top))
		}
		for i := 1; i < len(top); i++ {
			if top[i-1].PlaybackCount < top[i].PlaybackCount {
				t.Errorf("expected descending order at index %d", i)
			}
		}
	})

	t.Run("Ties Retain Input Order", func(t *testing.T) {
		top := TopN(tracks, key, 2)
		if top[0].ID != "b" || top[1].ID != "d" {
			t.Errorf("expected tied items in input order [b d], got [%s %s]", top[0].ID, top[1].ID)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		once := TopN(tracks, key, 5)
		twice := TopN(once, key, 5)
		if len(once) != len(twice) {
			t.Fatalf("expected same length, got %d and %d", len(once), len(twice))
		}
		for i := range once {
			if once[i].ID != twice[i].ID {
				t.Errorf("expected identical ordering at index %d", i)
			}
		}
	})

	t.Run("N Larger Than Input", func(t *testing.T) {
		if got := TopN(tracks, key, 100); len(got) != len(tracks) {
			t.Errorf("expected all %d items, got %d", len(tracks), len(got))
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		if got := TopN(nil, key, 5); len(got) != 0 {
			t.Errorf("expected empty result, got %d items", len(got))
		}
	})

	t.Run("Does Not Mutate Input", func(t *testing.T) {
		TopN(tracks, key, 5)
		if tracks[0].ID != "a" {
			t.Error("expected input slice to be untouched")
		}
	})
}

func TestTotalListeningHours(t *testing.T) {
	tracks := []models.Track{
		{DurationMS: 180000},
		{DurationMS: 300000},
	}

	hours := TotalListeningHours(tracks)
	if !almostEqual(hours, 480000.0/3600000.0) {
		t.Errorf("expected 0.1333..., got %v", hours)
	}

	if got := TotalListeningHours(nil); got != 0 {
		t.Errorf("expected 0 hours for empty input, got %v", got)
	}
}

func TestBooksEquivalent(t *testing.T) {
	if got := BooksEquivalent(6.0); !almostEqual(got, 1.0) {
		t.Errorf("expected 1 book for 6 hours, got %v", got)
	}
	if got := BooksEquivalent(0); got != 0 {
		t.Errorf("expected 0 books for 0 hours, got %v", got)
	}
}

func TestSums(t *testing.T) {
	tracks := []models.Track{
		{PlaybackCount: 10, LikesCount: 2, RepostsCount: 1},
		{PlaybackCount: 5, LikesCount: 3, RepostsCount: 0},
	}

	if got := SumPlaybacks(tracks); got != 15 {
		t.Errorf("expected 15 playbacks, got %d", got)
	}
	if got := SumLikes(tracks); got != 5 {
		t.Errorf("expected 5 likes, got %d", got)
	}
	if got := SumReposts(tracks); got != 1 {
		t.Errorf("expected 1 repost, got %d", got)
	}
}

func TestCountNames(t *testing.T) {
	tracks := []models.Track{
		{Genres: []string{"techno", "house"}},
		{Genres: []string{"techno"}},
		{Genres: []string{"ambient", ""}},
		{Genres: []string{"house"}},
	}

	ranked := CountNames(tracks, func(tr models.Track) []string { return tr.Genres })

	if len(ranked) != 3 {
		t.Fatalf("expected 3 genres, got %d", len(ranked))
	}
	if ranked[0].Name != "techno" || ranked[0].Count != 2 {
		t.Errorf("expected techno first with count 2, got %s/%d", ranked[0].Name, ranked[0].Count)
	}
	if ranked[1].Name != "house" || ranked[1].Count != 2 {
		t.Errorf("expected house second with count 2, got %s/%d", ranked[1].Name, ranked[1].Count)
	}
	if ranked[2].Name != "ambient" {
		t.Errorf("expected ambient last, got %s", ranked[2].Name)
	}
}
