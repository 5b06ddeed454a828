package models

import (
	"fmt"
	"time"
)

// ActivityType enumerates the tracked first-party event kinds.
type ActivityType string

const (
	ActivityPlay   ActivityType = "PLAY"
	ActivityLike   ActivityType = "LIKE"
	ActivityRepost ActivityType = "REPOST"
	ActivityShare  ActivityType = "SHARE"
)

// Valid reports whether the activity type is one of the known kinds.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityPlay, ActivityLike, ActivityRepost, ActivityShare:
		return true
	}
	return false
}

// Activity is an append-only record of an in-app listening event.
// Created once by the tracking intake; never updated or deleted.
type Activity struct {
	id             string
	sequence       int
	userID         string
	trackID        string
	activityType   ActivityType
	playDurationMS int64 // meaningful only for PLAY
	createdAt      time.Time
}

// NewActivity creates an Activity for the given user, track, and type.
// playDurationMS is ignored for non-PLAY types.
func NewActivity(userID, trackID string, activityType ActivityType, playDurationMS int64) *Activity {
	if activityType != ActivityPlay {
		playDurationMS = 0
	}
	return &Activity{
		userID:         userID,
		trackID:        trackID,
		activityType:   activityType,
		playDurationMS: playDurationMS,
		createdAt:      time.Now(),
	}
}

func (a *Activity) ID() string                 { return a.id }
func (a *Activity) Sequence() int              { return a.sequence }
func (a *Activity) UserID() string             { return a.userID }
func (a *Activity) TrackID() string            { return a.trackID }
func (a *Activity) Type() ActivityType         { return a.activityType }
func (a *Activity) PlayDurationMS() int64      { return a.playDurationMS }
func (a *Activity) CreatedAt() time.Time       { return a.createdAt }
func (a *Activity) SetID(id string)            { a.id = id }
func (a *Activity) SetSequence(seq int)        { a.sequence = seq }
func (a *Activity) SetCreatedAt(ts time.Time)  { a.createdAt = ts }
func (a *Activity) SetPlayDuration(ms int64)   { a.playDurationMS = ms }

// Validate checks if the activity's data is valid.
func (a *Activity) Validate() error {
	if a.userID == "" {
		return fmt.Errorf("activity user_id is required")
	}
	if a.trackID == "" {
		return fmt.Errorf("activity track_id is required")
	}
	if !a.activityType.Valid() {
		return fmt.Errorf("unknown activity type: %s", a.activityType)
	}
	if a.activityType == ActivityPlay && a.playDurationMS < 0 {
		return fmt.Errorf("play duration must be non-negative")
	}
	if a.activityType != ActivityPlay && a.playDurationMS != 0 {
		return fmt.Errorf("play duration is only valid for PLAY activities")
	}
	return nil
}
