package analysis

import (
	"testing"

	"github.com/soundctl/rewind/internal/models"
)

func TestJaccard(t *testing.T) {
	t.Run("Identical Sets", func(t *testing.T) {
		a := NewSet("x", "y", "z")
		if got := Jaccard(a, a); !almostEqual(got, 1.0) {
			t.Errorf("expected 1.0, got %v", got)
		}
	})

	t.Run("Both Empty", func(t *testing.T) {
		if got := Jaccard(NewSet(), NewSet()); !almostEqual(got, 1.0) {
			t.Errorf("expected 1.0 for two empty sets, got %v", got)
		}
	})

	t.Run("One Empty", func(t *testing.T) {
		a := NewSet("x")
		if got := Jaccard(a, NewSet()); got != 0.0 {
			t.Errorf("expected 0.0, got %v", got)
		}
		if got := Jaccard(NewSet(), a); got != 0.0 {
			t.Errorf("expected 0.0, got %v", got)
		}
	})

	t.Run("Partial Overlap", func(t *testing.T) {
		a := NewSet("x", "y")
		b := NewSet("y", "z")
		if got := Jaccard(a, b); !almostEqual(got, 1.0/3.0) {
			t.Errorf("expected 1/3, got %v", got)
		}
	})
}

func TestNewTasteProfile(t *testing.T) {
	tracks := []models.Track{
		{ID: "t1", Artist: "Burial", Genres: []string{"Garage", "ambient"}},
		{ID: "t2", Artist: "burial", Genres: []string{"garage"}},
		{ID: "", Artist: ""},
	}

	profile := NewTasteProfile(tracks)
	if len(profile.Tracks) != 2 {
		t.Errorf("expected 2 track ids, got %d", len(profile.Tracks))
	}
	if len(profile.Artists) != 1 {
		t.Errorf("expected case-insensitive artist set of 1, got %d", len(profile.Artists))
	}
	if len(profile.Genres) != 2 {
		t.Errorf("expected 2 genres, got %d", len(profile.Genres))
	}
}

func TestScoreCandidate(t *testing.T) {
	subject := TasteProfile{
		Tracks:  NewSet("t1", "t2"),
		Artists: NewSet("burial"),
		Genres:  NewSet(),
	}

	t.Run("Renormalizes Over Subject Dimensions", func(t *testing.T) {
		candidate := Candidate{
			UserID: "u1",
			Profile: TasteProfile{
				Tracks:  NewSet("t1", "t2"),
				Artists: NewSet("burial"),
				Genres:  NewSet("dubstep"),
			},
		}

		score := ScoreCandidate(subject, candidate)
		// genres excluded: composite = (1.0*0.5 + 1.0*0.3) / 0.8
		if !almostEqual(score.Composite, 1.0) {
			t.Errorf("expected composite 1.0, got %v", score.Composite)
		}
	})

	t.Run("Empty Subject Scores Zero", func(t *testing.T) {
		score := ScoreCandidate(TasteProfile{}, Candidate{
			Profile: TasteProfile{Tracks: NewSet("t1")},
		})
		if score.Composite != 0 {
			t.Errorf("expected 0 composite for empty subject, got %v", score.Composite)
		}
	})
}

func TestBestMatch(t *testing.T) {
	subject := TasteProfile{
		Tracks:  NewSet("t1", "t2", "t3"),
		Artists: NewSet("burial", "aphex twin"),
		Genres:  NewSet("garage", "idm"),
	}

	t.Run("Selects Highest Composite", func(t *testing.T) {
		candidates := []Candidate{
			{
				UserID:   "weak",
				Username: "weak",
				Profile:  TasteProfile{Tracks: NewSet("t1", "x", "y", "z")},
			},
			{
				UserID:   "strong",
				Username: "strong",
				Profile: TasteProfile{
					Tracks:  NewSet("t1", "t2", "t3"),
					Artists: NewSet("burial", "aphex twin"),
					Genres:  NewSet("garage", "idm"),
				},
			},
		}

		best, found, reason := BestMatch(subject, candidates)
		if !found {
			t.Fatalf("expected a match, got reason %q", reason)
		}
		if best.UserID != "strong" {
			t.Errorf("expected strong candidate, got %s", best.UserID)
		}
		if !almostEqual(best.Composite, 1.0) {
			t.Errorf("expected composite 1.0, got %v", best.Composite)
		}
	})

	t.Run("No Candidates", func(t *testing.T) {
		_, found, reason := BestMatch(subject, nil)
		if found {
			t.Error("expected no match")
		}
		if reason == "" {
			t.Error("expected a reason string")
		}
	})

	t.Run("All Candidates Inaccessible", func(t *testing.T) {
		candidates := []Candidate{
			{UserID: "private-1"},
			{UserID: "private-2"},
		}

		_, found, reason := BestMatch(subject, candidates)
		if found {
			t.Error("expected no match when all candidate data is inaccessible")
		}
		if reason == "" {
			t.Error("expected a reason string")
		}
	})
}
