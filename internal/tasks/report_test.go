package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/repositories"
	"github.com/soundctl/rewind/internal/shared"
	mocks "github.com/soundctl/rewind/internal/testing"
)

// fakeStore is an in-memory ActivityStore for engine tests.
type fakeStore struct {
	counts     map[models.ActivityType]int64
	durationMS int64
	top        []repositories.TrackPlays
	activities []*models.Activity
	err        error
}

func (s *fakeStore) CountByTypeInRange(activityType models.ActivityType, from, to time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.counts[activityType], nil
}

func (s *fakeStore) SumDurationInRange(from, to time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.durationMS, nil
}

func (s *fakeStore) MostPlayedInRange(from, to time.Time, limit int) ([]repositories.TrackPlays, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.top) {
		return s.top[:limit], nil
	}
	return s.top, nil
}

func (s *fakeStore) ListInRange(from, to time.Time) ([]*models.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.activities, nil
}

func playAt(ts time.Time, durationMS int64) *models.Activity {
	activity := models.NewActivity("user-1", "track-1", models.ActivityPlay, durationMS)
	activity.SetCreatedAt(ts)
	return activity
}

func hasNote(notes []string, substr string) bool {
	for _, note := range notes {
		if strings.Contains(note, substr) {
			return true
		}
	}
	return false
}

func TestReviewEngineLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialFailure", func(t *testing.T) {
		svc := &mocks.MockService{
			TracksFunc: func(ctx context.Context) ([]models.Track, error) {
				return []models.Track{{ID: "t1", Title: "Intact"}}, nil
			},
			FollowingsFunc: func(ctx context.Context) ([]models.User, error) {
				return nil, shared.ErrAPIRequest
			},
		}
		engine := NewReviewEngine(svc, &fakeStore{}, 10000)

		library, notes, err := engine.Library(ctx, nil)
		if err != nil {
			t.Fatalf("Library failed: %v", err)
		}
		if len(library.Tracks) != 1 || library.Tracks[0].Title != "Intact" {
			t.Errorf("expected tracks to survive the followings failure, got %v", library.Tracks)
		}
		if len(library.Followers) != 0 {
			t.Errorf("expected empty followers, got %v", library.Followers)
		}
		if !hasNote(notes, "followings unavailable") {
			t.Errorf("expected a followings note, got %v", notes)
		}
	})

	t.Run("NotAuthenticated", func(t *testing.T) {
		svc := &mocks.MockService{
			ProfileFunc: func(ctx context.Context) (*models.User, error) {
				return nil, shared.ErrNotAuthenticated
			},
		}
		engine := NewReviewEngine(svc, &fakeStore{}, 10000)

		if _, _, err := engine.Library(ctx, nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("NilService", func(t *testing.T) {
		engine := NewReviewEngine(nil, &fakeStore{}, 10000)
		if _, _, err := engine.Library(ctx, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("ProgressUpdates", func(t *testing.T) {
		engine := NewReviewEngine(&mocks.MockService{}, &fakeStore{}, 10000)
		progress := make(chan ProgressUpdate, 16)

		if _, _, err := engine.Library(ctx, progress); err != nil {
			t.Fatalf("Library failed: %v", err)
		}
		close(progress)

		phases := make(map[Phase]bool)
		for update := range progress {
			phases[update.Phase] = true
		}
		for _, phase := range []Phase{FetchProfile, FetchTracks, FetchLikes, FetchPlaylists, FetchFollowings} {
			if !phases[phase] {
				t.Errorf("missing progress update for phase %s", phase)
			}
		}
	})
}

func TestReviewEngineBuild(t *testing.T) {
	ctx := context.Background()

	tracks := []models.Track{
		{ID: "t1", Title: "Alpha", Artist: "Luma", PlaybackCount: 300, LikesCount: 12, RepostsCount: 2, DurationMS: 3_600_000, Genres: []string{"techno"}, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "t2", Title: "Beta", Artist: "Luma", PlaybackCount: 100, LikesCount: 4, RepostsCount: 1, DurationMS: 1_800_000, Genres: []string{"ambient"}, CreatedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	likes := []models.Track{
		{ID: "t2", Title: "Beta", Artist: "Luma", PlaybackCount: 100, DurationMS: 1_800_000},
		{ID: "t3", Title: "Gamma", Artist: "Orbit", PlaybackCount: 500, LikesCount: 9, DurationMS: 1_800_000, Genres: []string{"techno"}, CreatedAt: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	svc := &mocks.MockService{
		ProfileFunc: func(ctx context.Context) (*models.User, error) {
			return &models.User{ID: "u1", Username: "listener", FollowersCount: 42, FollowingCount: 7, CreatedAt: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
		},
		TracksFunc: func(ctx context.Context) ([]models.Track, error) { return tracks, nil },
		LikesFunc:  func(ctx context.Context) ([]models.Track, error) { return likes, nil },
		FollowingsFunc: func(ctx context.Context) ([]models.User, error) {
			return []models.User{
				{ID: "u2", Username: "stranger"},
				{ID: "u3", Username: "twin"},
			}, nil
		},
		UserTracksFunc: func(ctx context.Context, userID string) ([]models.Track, error) {
			if userID == "u3" {
				return []models.Track{{ID: "t3", Artist: "Orbit", Genres: []string{"techno"}}}, nil
			}
			return []models.Track{{ID: "x1", Artist: "Nobody", Genres: []string{"polka"}}}, nil
		},
	}

	monday := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	store := &fakeStore{
		counts:     map[models.ActivityType]int64{models.ActivityPlay: 4, models.ActivityLike: 2},
		durationMS: 7_200_000,
		top:        []repositories.TrackPlays{{TrackID: "t1", Plays: 3}},
		activities: []*models.Activity{
			playAt(monday, 200_000),
			playAt(monday.Add(time.Minute), 200_000),
			playAt(monday.Add(2*time.Minute), 200_000),
			playAt(time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC), 200_000),
		},
	}

	t.Run("FullReport", func(t *testing.T) {
		engine := NewReviewEngine(svc, store, 10000)

		report, err := engine.Build(ctx, 2024, nil)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		if report.Profile.Username != "listener" || report.Profile.JoinedYear != 2015 {
			t.Errorf("unexpected profile section: %+v", report.Profile)
		}

		// t2 appears in both uploads and likes; counted once.
		if report.APIStats.TrackCount != 3 {
			t.Errorf("expected 3 unique tracks, got %d", report.APIStats.TrackCount)
		}
		if report.APIStats.TotalPlaybacks != 900 {
			t.Errorf("expected 900 playbacks, got %d", report.APIStats.TotalPlaybacks)
		}
		if report.APIStats.TotalListeningHours != 2.0 {
			t.Errorf("expected 2.0 listening hours, got %f", report.APIStats.TotalListeningHours)
		}
		if report.APIStats.PeakYear != 2024 || report.APIStats.TracksInPeakYear != 2 {
			t.Errorf("unexpected peak year: %+v", report.APIStats)
		}

		if len(report.TopTracks) == 0 || report.TopTracks[0].ID != "t3" {
			t.Errorf("expected t3 to top the playback ranking, got %v", report.TopTracks)
		}
		if len(report.TopArtists) == 0 || report.TopArtists[0].Name != "Luma" || report.TopArtists[0].Count != 2 {
			t.Errorf("unexpected top artists: %v", report.TopArtists)
		}
		if len(report.GenreAnalysis.TopGenres) == 0 || report.GenreAnalysis.TopGenres[0].Name != "techno" {
			t.Errorf("unexpected top genres: %v", report.GenreAnalysis.TopGenres)
		}

		if report.TrackedStats.Plays != 4 || report.TrackedStats.Likes != 2 {
			t.Errorf("unexpected tracked counts: %+v", report.TrackedStats)
		}
		if report.TrackedStats.ListeningHours != 2.0 {
			t.Errorf("expected 2.0 tracked hours, got %f", report.TrackedStats.ListeningHours)
		}
		if len(report.TrackedStats.TopTrackIDs) != 1 || report.TrackedStats.TopTrackIDs[0] != "t1" {
			t.Errorf("unexpected top track ids: %v", report.TrackedStats.TopTrackIDs)
		}

		if report.ListeningPatterns.PeakHour != 7 {
			t.Errorf("expected peak hour 7, got %d", report.ListeningPatterns.PeakHour)
		}
		if report.ListeningPatterns.Persona != "Early Bird" {
			t.Errorf("expected Early Bird, got %s", report.ListeningPatterns.Persona)
		}
		if report.ListeningPatterns.PeakDay != "Monday" {
			t.Errorf("expected Monday, got %s", report.ListeningPatterns.PeakDay)
		}

		if !report.Doppelganger.Found || report.Doppelganger.Username != "twin" {
			t.Errorf("expected twin as doppelganger, got %+v", report.Doppelganger)
		}

		if len(report.Stories) == 0 {
			t.Error("expected at least one story")
		}
		if len(report.Notes) != 0 {
			t.Errorf("expected no notes on a clean run, got %v", report.Notes)
		}
	})

	t.Run("EmptyData", func(t *testing.T) {
		engine := NewReviewEngine(&mocks.MockService{}, &fakeStore{}, 10000)

		report, err := engine.Build(ctx, 2024, nil)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		if report.ListeningPatterns.PeakHour != -1 {
			t.Errorf("expected peak hour -1 with no plays, got %d", report.ListeningPatterns.PeakHour)
		}
		if report.ListeningPatterns.Persona != "" {
			t.Errorf("expected no persona, got %s", report.ListeningPatterns.Persona)
		}
		if len(report.ListeningPatterns.HourCounts) != 24 || len(report.ListeningPatterns.DayCounts) != 7 {
			t.Errorf("expected fixed-size histograms, got %d/%d", len(report.ListeningPatterns.HourCounts), len(report.ListeningPatterns.DayCounts))
		}
		if report.Doppelganger.Found {
			t.Errorf("expected no doppelganger, got %+v", report.Doppelganger)
		}
		if report.Doppelganger.Reason == "" {
			t.Error("expected a reason when no doppelganger is found")
		}
	})

	t.Run("ActivityStoreFailure", func(t *testing.T) {
		store := &fakeStore{err: errors.New("disk gone")}
		engine := NewReviewEngine(&mocks.MockService{}, store, 10000)

		report, err := engine.Build(ctx, 2024, nil)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if !hasNote(report.Notes, "unavailable") {
			t.Errorf("expected activity notes, got %v", report.Notes)
		}
	})

	t.Run("CandidateFetchFailure", func(t *testing.T) {
		svc := &mocks.MockService{
			TracksFunc: func(ctx context.Context) ([]models.Track, error) {
				return []models.Track{{ID: "t1", Artist: "Luma", Genres: []string{"techno"}}}, nil
			},
			FollowingsFunc: func(ctx context.Context) ([]models.User, error) {
				return []models.User{{ID: "u2", Username: "hidden"}}, nil
			},
			UserTracksFunc: func(ctx context.Context, userID string) ([]models.Track, error) {
				return nil, shared.ErrAPIRequest
			},
		}
		engine := NewReviewEngine(svc, &fakeStore{}, 10000)

		report, err := engine.Build(ctx, 2024, nil)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if report.Doppelganger.Found {
			t.Errorf("expected no match when candidate tracks are unavailable, got %+v", report.Doppelganger)
		}
		if !hasNote(report.Notes, "tracks for hidden unavailable") {
			t.Errorf("expected a candidate note, got %v", report.Notes)
		}
	})
}

func TestMergeTracks(t *testing.T) {
	merged := mergeTracks(
		[]models.Track{{ID: "a"}, {ID: "b"}},
		[]models.Track{{ID: "b"}, {ID: "c"}},
	)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged tracks, got %d", len(merged))
	}
	if merged[0].ID != "a" || merged[1].ID != "b" || merged[2].ID != "c" {
		t.Errorf("unexpected merge order: %v", merged)
	}
}
