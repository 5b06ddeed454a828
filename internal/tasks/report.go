// package tasks implements the year-in-review report pipeline.
//
// The core abstraction is ReportEngine, which orchestrates the upstream music
// service, the local activity log, and the analysis package into a single
// assembled report. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soundctl/rewind/internal/analysis"
	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/repositories"
	"github.com/soundctl/rewind/internal/services"
	"github.com/soundctl/rewind/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultTopN          = 5
	defaultTopGenres     = 10
	defaultMaxCandidates = 25
	defaultRequestRate   = 2.0 // upstream requests per second
)

// ActivityStore defines the activity-log reads the engine needs.
// Implemented by repositories.ActivityRepository; abstracted for testing.
type ActivityStore interface {
	CountByTypeInRange(activityType models.ActivityType, from, to time.Time) (int64, error)
	SumDurationInRange(from, to time.Time) (int64, error)
	MostPlayedInRange(from, to time.Time, limit int) ([]repositories.TrackPlays, error)
	ListInRange(from, to time.Time) ([]*models.Activity, error)
}

// ReportEngine defines the report pipeline operations.
type ReportEngine interface {
	// Library fetches everything the report needs from the upstream service.
	// Individual source failures become notes rather than errors; only a
	// missing credential aborts the run.
	Library(ctx context.Context, progress chan<- ProgressUpdate) (*models.Library, []string, error)

	// Build computes the full year-in-review report for the given calendar year.
	Build(ctx context.Context, year int, progress chan<- ProgressUpdate) (*models.Report, error)
}

// ReviewEngine implements ReportEngine against a single music service and
// the local activity log. Sequential upstream fetches are spaced by a rate
// limiter so report runs stay inside the provider's request budget.
type ReviewEngine struct {
	service       services.Service
	activities    ActivityStore
	limiter       *rate.Limiter
	topN          int
	maxCandidates int
}

// NewReviewEngine creates a ReviewEngine. requestsPerSecond bounds upstream
// request pacing; zero or negative selects the default.
func NewReviewEngine(service services.Service, activities ActivityStore, requestsPerSecond float64) *ReviewEngine {
	if requestsPerSecond <= 0 {
		requestsPerSecond = defaultRequestRate
	}
	return &ReviewEngine{
		service:       service,
		activities:    activities,
		limiter:       rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		topN:          defaultTopN,
		maxCandidates: defaultMaxCandidates,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReviewEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// wait spaces sequential upstream requests.
func (e *ReviewEngine) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

// Library fetches the profile, tracks, likes, playlists, and followings.
//
// Each source is independent: a failed fetch leaves its field empty and adds
// a note naming what is missing, so one bad endpoint never costs the whole
// report. Only an unusable credential aborts.
func (e *ReviewEngine) Library(ctx context.Context, progress chan<- ProgressUpdate) (*models.Library, []string, error) {
	if e.service == nil {
		return nil, nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	library := &models.Library{}
	var notes []string

	e.sendProgress(progress, fetchUpdate(FetchProfile, "Fetching your profile..."))
	if err := e.wait(ctx); err != nil {
		return nil, nil, err
	}
	profile, err := e.service.Profile(ctx)
	switch {
	case err == nil:
		library.Profile = profile
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrNoRefreshToken):
		return nil, nil, err
	default:
		notes = append(notes, fmt.Sprintf("profile unavailable: %v", err))
	}

	e.sendProgress(progress, fetchUpdate(FetchTracks, "Fetching your uploads..."))
	if err := e.wait(ctx); err != nil {
		return nil, nil, err
	}
	if tracks, err := e.service.Tracks(ctx); err != nil {
		notes = append(notes, fmt.Sprintf("uploads unavailable: %v", err))
	} else {
		library.Tracks = tracks
	}

	e.sendProgress(progress, fetchUpdate(FetchLikes, "Fetching your likes..."))
	if err := e.wait(ctx); err != nil {
		return nil, nil, err
	}
	if likes, err := e.service.Likes(ctx); err != nil {
		notes = append(notes, fmt.Sprintf("likes unavailable: %v", err))
	} else {
		library.Likes = likes
	}

	e.sendProgress(progress, fetchUpdate(FetchPlaylists, "Fetching your playlists..."))
	if err := e.wait(ctx); err != nil {
		return nil, nil, err
	}
	if playlists, err := e.service.Playlists(ctx); err != nil {
		notes = append(notes, fmt.Sprintf("playlists unavailable: %v", err))
	} else {
		library.Playlists = playlists
	}

	e.sendProgress(progress, fetchUpdate(FetchFollowings, "Fetching who you follow..."))
	if err := e.wait(ctx); err != nil {
		return nil, nil, err
	}
	if followings, err := e.service.Followings(ctx); err != nil {
		notes = append(notes, fmt.Sprintf("followings unavailable: %v", err))
	} else {
		library.Followers = followings
	}

	return library, notes, nil
}

// Build computes the year-in-review report for the given calendar year.
// The report is recomputed from scratch on every call; nothing is cached.
func (e *ReviewEngine) Build(ctx context.Context, year int, progress chan<- ProgressUpdate) (*models.Report, error) {
	library, notes, err := e.Library(ctx, progress)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, statsUpdate(year))

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	collection := mergeTracks(library.Tracks, library.Likes)

	report := &models.Report{
		Profile:       profileSection(library.Profile),
		APIStats:      apiStatsSection(collection),
		GenreAnalysis: models.GenreSection{TopGenres: topGenres(collection)},
		TopTracks:     analysis.TopN(collection, func(t models.Track) int64 { return t.PlaybackCount }, e.topN),
		TopArtists:    topArtists(collection, e.topN),
	}

	tracked, patterns, trackedNotes := e.trackedSections(from, to)
	report.TrackedStats = tracked
	report.ListeningPatterns = patterns
	notes = append(notes, trackedNotes...)

	match, matchNotes := e.doppelganger(ctx, progress, collection, library.Followers)
	report.Doppelganger = match
	notes = append(notes, matchNotes...)

	e.sendProgress(progress, assembleUpdate())
	report.Stories = buildStories(report)
	report.Notes = notes

	return report, nil
}

// trackedSections derives the activity-log sections for the report window.
func (e *ReviewEngine) trackedSections(from, to time.Time) (models.TrackedSection, models.PatternsSection, []string) {
	patterns := models.PatternsSection{
		PeakHour:   -1,
		HourCounts: make([]int64, 24),
		DayCounts:  make([]int64, 7),
	}

	var tracked models.TrackedSection
	var notes []string

	if e.activities == nil {
		return tracked, patterns, []string{"activity log unavailable"}
	}

	counts := map[models.ActivityType]*int64{
		models.ActivityPlay:   &tracked.Plays,
		models.ActivityLike:   &tracked.Likes,
		models.ActivityRepost: &tracked.Reposts,
		models.ActivityShare:  &tracked.Shares,
	}
	for activityType, target := range counts {
		count, err := e.activities.CountByTypeInRange(activityType, from, to)
		if err != nil {
			notes = append(notes, fmt.Sprintf("activity counts unavailable: %v", err))
			break
		}
		*target = count
	}

	if durationMS, err := e.activities.SumDurationInRange(from, to); err != nil {
		notes = append(notes, fmt.Sprintf("tracked listening time unavailable: %v", err))
	} else {
		tracked.ListeningHours = analysis.HoursFromMS(durationMS)
	}

	if top, err := e.activities.MostPlayedInRange(from, to, e.topN); err != nil {
		notes = append(notes, fmt.Sprintf("most played tracks unavailable: %v", err))
	} else {
		for _, tp := range top {
			tracked.TopTrackIDs = append(tracked.TopTrackIDs, tp.TrackID)
		}
	}

	plays, err := e.activities.ListInRange(from, to)
	if err != nil {
		notes = append(notes, fmt.Sprintf("listening patterns unavailable: %v", err))
		return tracked, patterns, notes
	}

	hours := analysis.HourBuckets(plays)
	days := analysis.DayBuckets(plays)
	patterns.HourCounts = hours.Counts
	patterns.DayCounts = days.Counts
	if !hours.Empty() {
		patterns.PeakHour = hours.Peak()
		patterns.PeakDay = analysis.DayName(days.Peak())
		patterns.Persona = analysis.Persona(patterns.PeakHour)
	}

	return tracked, patterns, notes
}

// doppelganger fetches each followed user's tracks and finds the closest
// taste match. Candidates whose tracks cannot be fetched are compared with
// an empty profile, which can never win.
func (e *ReviewEngine) doppelganger(ctx context.Context, progress chan<- ProgressUpdate, collection []models.Track, followings []models.User) (models.DoppelgangerMatch, []string) {
	subject := analysis.NewTasteProfile(collection)

	if len(followings) > e.maxCandidates {
		followings = followings[:e.maxCandidates]
	}

	var notes []string
	candidates := make([]analysis.Candidate, 0, len(followings))
	for i, user := range followings {
		e.sendProgress(progress, candidateUpdate(i+1, len(followings), user.Username))

		candidate := analysis.Candidate{UserID: user.ID, Username: user.Username}
		if err := e.wait(ctx); err != nil {
			notes = append(notes, fmt.Sprintf("candidate scan aborted: %v", err))
			candidates = append(candidates, candidate)
			break
		}
		if tracks, err := e.service.UserTracks(ctx, user.ID); err != nil {
			notes = append(notes, fmt.Sprintf("tracks for %s unavailable: %v", user.Username, err))
		} else {
			candidate.Profile = analysis.NewTasteProfile(tracks)
		}
		candidates = append(candidates, candidate)
	}

	score, found, reason := analysis.BestMatch(subject, candidates)
	if !found {
		return models.DoppelgangerMatch{Found: false, Reason: reason}, notes
	}

	return models.DoppelgangerMatch{
		Found:            true,
		UserID:           score.UserID,
		Username:         score.Username,
		CompositeScore:   score.Composite,
		TrackSimilarity:  score.TrackSimilarity,
		ArtistSimilarity: score.ArtistSimilarity,
		GenreSimilarity:  score.GenreSimilarity,
	}, notes
}

func profileSection(profile *models.User) models.ProfileSection {
	if profile == nil {
		return models.ProfileSection{}
	}
	section := models.ProfileSection{
		UserID:         profile.ID,
		Username:       profile.Username,
		FollowersCount: profile.FollowersCount,
		FollowingCount: profile.FollowingCount,
	}
	if !profile.CreatedAt.IsZero() {
		section.JoinedYear = profile.CreatedAt.Year()
	}
	return section
}

func apiStatsSection(collection []models.Track) models.APIStatsSection {
	hours := analysis.TotalListeningHours(collection)
	section := models.APIStatsSection{
		TrackCount:          len(collection),
		TotalPlaybacks:      analysis.SumPlaybacks(collection),
		TotalLikes:          analysis.SumLikes(collection),
		TotalReposts:        analysis.SumReposts(collection),
		TotalListeningHours: hours,
		BooksEquivalent:     analysis.BooksEquivalent(hours),
	}

	timestamps := make([]time.Time, 0, len(collection))
	for _, track := range collection {
		timestamps = append(timestamps, track.CreatedAt)
	}
	section.PeakYear, section.TracksInPeakYear = analysis.PeakYear(analysis.CountByYear(timestamps))

	return section
}

// mergeTracks combines the uploads and likes collections, dropping duplicate
// track IDs so a liked upload is only counted once.
func mergeTracks(tracks, likes []models.Track) []models.Track {
	merged := make([]models.Track, 0, len(tracks)+len(likes))
	seen := make(map[string]struct{}, len(tracks)+len(likes))

	for _, list := range [][]models.Track{tracks, likes} {
		for _, track := range list {
			if _, ok := seen[track.ID]; ok {
				continue
			}
			seen[track.ID] = struct{}{}
			merged = append(merged, track)
		}
	}
	return merged
}

func topGenres(collection []models.Track) []models.NameCount {
	ranked := analysis.CountNames(collection, func(t models.Track) []string { return t.Genres })
	if len(ranked) > defaultTopGenres {
		ranked = ranked[:defaultTopGenres]
	}
	return ranked
}

func topArtists(collection []models.Track, n int) []models.NameCount {
	ranked := analysis.CountNames(collection, func(t models.Track) []string {
		if t.Artist == "" {
			return nil
		}
		return []string{t.Artist}
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// buildStories turns the report's numbers into the shareable one-liners shown
// at the top of the rendered report. Sections without data produce no story.
func buildStories(report *models.Report) []string {
	var stories []string

	if hours := report.APIStats.TotalListeningHours; hours > 0 {
		stories = append(stories, fmt.Sprintf(
			"Your library holds %.1f hours of sound. In that time you could have read %.1f books.",
			hours, report.APIStats.BooksEquivalent))
	}

	if report.APIStats.PeakYear != 0 {
		stories = append(stories, fmt.Sprintf(
			"%d tracks in your collection date from %d, your biggest year.",
			report.APIStats.TracksInPeakYear, report.APIStats.PeakYear))
	}

	if report.TrackedStats.Plays > 0 {
		stories = append(stories, fmt.Sprintf(
			"You pressed play %d times this year, %.1f hours of tracked listening.",
			report.TrackedStats.Plays, report.TrackedStats.ListeningHours))
	}

	if report.ListeningPatterns.Persona != "" {
		stories = append(stories, fmt.Sprintf(
			"Your peak listening hour is %02d:00. That makes you a certified %s.",
			report.ListeningPatterns.PeakHour, report.ListeningPatterns.Persona))
	}

	if len(report.TopTracks) > 0 {
		top := report.TopTracks[0]
		stories = append(stories, fmt.Sprintf(
			"Nothing got more plays than %q by %s.", top.Title, top.Artist))
	}

	if len(report.GenreAnalysis.TopGenres) > 0 {
		stories = append(stories, fmt.Sprintf(
			"Your defining genre: %s.", report.GenreAnalysis.TopGenres[0].Name))
	}

	if report.Doppelganger.Found {
		stories = append(stories, fmt.Sprintf(
			"Your taste twin is %s with a %.0f%% match.",
			report.Doppelganger.Username, report.Doppelganger.CompositeScore*100))
	}

	return stories
}
