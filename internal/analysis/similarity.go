package analysis

import (
	"strings"

	"github.com/soundctl/rewind/internal/models"
)

// Composite-score weights per similarity dimension.
// Renormalized over the dimensions where the subject's set is non-empty.
const (
	trackWeight  = 0.5
	artistWeight = 0.3
	genreWeight  = 0.2
)

// Set is a string set used for similarity comparisons.
type Set map[string]struct{}

// NewSet builds a Set from the given values, ignoring empty strings.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// TasteProfile holds the three comparison sets derived from a track collection.
type TasteProfile struct {
	Tracks  Set
	Artists Set
	Genres  Set
}

// NewTasteProfile derives track-id, artist-name, and genre-tag sets from tracks.
// Artist and genre names are lowercased so comparisons ignore casing.
func NewTasteProfile(tracks []models.Track) TasteProfile {
	profile := TasteProfile{
		Tracks:  make(Set),
		Artists: make(Set),
		Genres:  make(Set),
	}

	for _, track := range tracks {
		if track.ID != "" {
			profile.Tracks[track.ID] = struct{}{}
		}
		if track.Artist != "" {
			profile.Artists[strings.ToLower(track.Artist)] = struct{}{}
		}
		for _, genre := range track.Genres {
			if genre != "" {
				profile.Genres[strings.ToLower(genre)] = struct{}{}
			}
		}
	}

	return profile
}

// Jaccard computes intersection-over-union between two sets.
// Both sets empty yields 1.0; exactly one empty yields 0.0.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for v := range a {
		if _, ok := b[v]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Score is the transient per-candidate similarity result.
type Score struct {
	UserID           string
	Username         string
	TrackSimilarity  float64
	ArtistSimilarity float64
	GenreSimilarity  float64
	Composite        float64
}

// Candidate pairs a followed user with their taste profile.
// The profile may be empty when the user's tracks are inaccessible.
type Candidate struct {
	UserID   string
	Username string
	Profile  TasteProfile
}

// ScoreCandidate computes per-dimension Jaccard similarities and the weighted
// composite for one candidate against the subject.
//
// Dimensions where the subject's own set is empty carry no signal, so the
// weights are renormalized over the remaining dimensions. A subject with no
// data at all scores 0 against everyone.
func ScoreCandidate(subject TasteProfile, candidate Candidate) Score {
	score := Score{
		UserID:           candidate.UserID,
		Username:         candidate.Username,
		TrackSimilarity:  Jaccard(subject.Tracks, candidate.Profile.Tracks),
		ArtistSimilarity: Jaccard(subject.Artists, candidate.Profile.Artists),
		GenreSimilarity:  Jaccard(subject.Genres, candidate.Profile.Genres),
	}

	weightedSum, totalWeight := 0.0, 0.0
	if len(subject.Tracks) > 0 {
		weightedSum += score.TrackSimilarity * trackWeight
		totalWeight += trackWeight
	}
	if len(subject.Artists) > 0 {
		weightedSum += score.ArtistSimilarity * artistWeight
		totalWeight += artistWeight
	}
	if len(subject.Genres) > 0 {
		weightedSum += score.GenreSimilarity * genreWeight
		totalWeight += genreWeight
	}

	if totalWeight > 0 {
		score.Composite = weightedSum / totalWeight
	}
	return score
}

// nonZero reports whether the score carries at least one non-zero dimension
// backed by actual subject data.
func (s Score) nonZero(subject TasteProfile) bool {
	if len(subject.Tracks) > 0 && s.TrackSimilarity > 0 {
		return true
	}
	if len(subject.Artists) > 0 && s.ArtistSimilarity > 0 {
		return true
	}
	if len(subject.Genres) > 0 && s.GenreSimilarity > 0 {
		return true
	}
	return false
}

// BestMatch scores every candidate and returns the one with the maximum
// composite score among those with at least one non-zero dimension.
//
// When no candidate qualifies the second return value is false and the
// reason string explains why.
func BestMatch(subject TasteProfile, candidates []Candidate) (Score, bool, string) {
	if len(candidates) == 0 {
		return Score{}, false, "no followed users to compare against"
	}

	var best Score
	found := false

	for _, candidate := range candidates {
		score := ScoreCandidate(subject, candidate)
		if !score.nonZero(subject) {
			continue
		}
		if !found || score.Composite > best.Composite {
			best = score
			found = true
		}
	}

	if !found {
		return Score{}, false, "no followed user shares any tracks, artists, or genres"
	}
	return best, true, ""
}
