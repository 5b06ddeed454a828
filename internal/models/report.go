package models

// Report is the assembled year-in-review structure.
// It is recomputed from scratch on every request and never persisted.
type Report struct {
	Profile           ProfileSection    `json:"profile"`
	APIStats          APIStatsSection   `json:"apiStats"`
	TrackedStats      TrackedSection    `json:"trackedStats"`
	GenreAnalysis     GenreSection      `json:"genreAnalysis"`
	ListeningPatterns PatternsSection   `json:"listeningPatterns"`
	Doppelganger      DoppelgangerMatch `json:"doppelganger"`
	TopTracks         []Track           `json:"topTracks"`
	TopArtists        []NameCount       `json:"topArtists"`
	Stories           []string          `json:"stories"`
	Notes             []string          `json:"notes,omitempty"`
}

// ProfileSection holds pass-through counts from the profile snapshot.
type ProfileSection struct {
	UserID         string `json:"userId,omitempty"`
	Username       string `json:"username,omitempty"`
	FollowersCount int64  `json:"followersCount"`
	FollowingCount int64  `json:"followingCount"`
	JoinedYear     int    `json:"joinedYear,omitempty"`
}

// APIStatsSection aggregates the upstream track collection.
type APIStatsSection struct {
	TrackCount          int     `json:"trackCount"`
	TotalPlaybacks      int64   `json:"totalPlaybacks"`
	TotalLikes          int64   `json:"totalLikes"`
	TotalReposts        int64   `json:"totalReposts"`
	TotalListeningHours float64 `json:"totalListeningHours"`
	BooksEquivalent     float64 `json:"booksEquivalent"`
	PeakYear            int     `json:"peakYear,omitempty"`
	TracksInPeakYear    int     `json:"tracksInPeakYear,omitempty"`
}

// TrackedSection aggregates the first-party activity log.
type TrackedSection struct {
	Plays          int64   `json:"plays"`
	Likes          int64   `json:"likes"`
	Reposts        int64   `json:"reposts"`
	Shares         int64   `json:"shares"`
	ListeningHours float64 `json:"listeningHours"`
	TopTrackIDs    []string `json:"topTrackIds,omitempty"`
}

// GenreSection ranks genre tags across the fetched track collection.
type GenreSection struct {
	TopGenres []NameCount `json:"topGenres"`
}

// PatternsSection describes when the user listens.
type PatternsSection struct {
	PeakHour   int     `json:"peakHour"`
	PeakDay    string  `json:"peakDay"`
	Persona    string  `json:"persona"`
	HourCounts []int64 `json:"hourCounts"` // 24 buckets
	DayCounts  []int64 `json:"dayCounts"`  // 7 buckets, Sunday first
}

// DoppelgangerMatch is the taste-similarity result among followed users.
type DoppelgangerMatch struct {
	Found            bool    `json:"found"`
	UserID           string  `json:"userId,omitempty"`
	Username         string  `json:"username,omitempty"`
	CompositeScore   float64 `json:"compositeScore,omitempty"`
	TrackSimilarity  float64 `json:"trackSimilarity,omitempty"`
	ArtistSimilarity float64 `json:"artistSimilarity,omitempty"`
	GenreSimilarity  float64 `json:"genreSimilarity,omitempty"`
	Reason           string  `json:"reason,omitempty"`
}

// NameCount pairs a label with an occurrence count, used for ranked lists.
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
