// package models defines the data model for the rewind listening-report service
package models

import (
	"time"
)

// Model defines the base interface for persistent models in the rewind service.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Track is an immutable snapshot of an upstream SoundCloud track at fetch time.
type Track struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	DurationMS    int64     `json:"duration_ms"`
	PlaybackCount int64     `json:"playback_count"`
	LikesCount    int64     `json:"likes_count"`
	RepostsCount  int64     `json:"reposts_count"`
	Genres        []string  `json:"genres,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// User is an immutable snapshot of an upstream SoundCloud user at fetch time.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Playlist is an immutable snapshot of an upstream SoundCloud playlist at fetch time.
type Playlist struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	TrackCount int       `json:"track_count"`
	Genre      string    `json:"genre,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Library is everything fetched from the upstream API for one report run.
// Any field may be empty when its source fetch failed (partial-result policy).
type Library struct {
	Profile   *User
	Tracks    []Track
	Likes     []Track
	Playlists []Playlist
	Followers []User
}
