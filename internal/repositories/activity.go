package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/shared"
)

// TrackPlays pairs a track ID with its play count within a range.
type TrackPlays struct {
	TrackID string
	Plays   int64
}

// ActivityRepository implements append-only persistence for [models.Activity].
//
// There are deliberately no update or delete operations: the activity log is
// the durable historical record the upstream API cannot provide.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new [ActivityRepository] with the given database connection
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record inserts a new activity with generated ID and sequence.
func (r *ActivityRepository) Record(activity *models.Activity) error {
	sequence, err := NextSequence(r.db, "activities")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	activity.SetID(id)
	activity.SetSequence(sequence)

	if err := activity.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO activities (id, sequence, user_id, track_id, activity_type, play_duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var playDuration any
	if activity.Type() == models.ActivityPlay {
		playDuration = activity.PlayDurationMS()
	}

	_, err = r.db.Exec(query, id, sequence, activity.UserID(), activity.TrackID(), string(activity.Type()), playDuration, activity.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	return nil
}

// RecordPlay appends a PLAY activity with its listening duration.
func (r *ActivityRepository) RecordPlay(userID, trackID string, durationMS int64) (*models.Activity, error) {
	activity := models.NewActivity(userID, trackID, models.ActivityPlay, durationMS)
	if err := r.Record(activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// RecordLike appends a LIKE activity.
func (r *ActivityRepository) RecordLike(userID, trackID string) (*models.Activity, error) {
	activity := models.NewActivity(userID, trackID, models.ActivityLike, 0)
	if err := r.Record(activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// RecordRepost appends a REPOST activity.
func (r *ActivityRepository) RecordRepost(userID, trackID string) (*models.Activity, error) {
	activity := models.NewActivity(userID, trackID, models.ActivityRepost, 0)
	if err := r.Record(activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// RecordShare appends a SHARE activity.
func (r *ActivityRepository) RecordShare(userID, trackID string) (*models.Activity, error) {
	activity := models.NewActivity(userID, trackID, models.ActivityShare, 0)
	if err := r.Record(activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// CountByTypeInRange counts activities of the given type in [from, to).
func (r *ActivityRepository) CountByTypeInRange(activityType models.ActivityType, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM activities
		WHERE activity_type = ? AND created_at >= ? AND created_at < ?
	`

	var count int64
	if err := r.db.QueryRow(query, string(activityType), from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}

	return count, nil
}

// SumDurationInRange totals PLAY durations (milliseconds) in [from, to).
func (r *ActivityRepository) SumDurationInRange(from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(play_duration_ms), 0) FROM activities
		WHERE activity_type = ? AND created_at >= ? AND created_at < ?
	`

	var total int64
	if err := r.db.QueryRow(query, string(models.ActivityPlay), from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum play durations: %w", err)
	}

	return total, nil
}

// MostPlayedInRange returns track IDs grouped and sorted descending by play count in [from, to).
func (r *ActivityRepository) MostPlayedInRange(from, to time.Time, limit int) ([]TrackPlays, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT track_id, COUNT(*) AS plays FROM activities
		WHERE activity_type = ? AND created_at >= ? AND created_at < ?
		GROUP BY track_id
		ORDER BY plays DESC, MIN(sequence) ASC
		LIMIT ?
	`

	rows, err := r.db.Query(query, string(models.ActivityPlay), from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most played tracks: %w", err)
	}
	defer rows.Close()

	var ranked []TrackPlays
	for rows.Next() {
		var tp TrackPlays
		if err := rows.Scan(&tp.TrackID, &tp.Plays); err != nil {
			return nil, fmt.Errorf("failed to scan track plays: %w", err)
		}
		ranked = append(ranked, tp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ranked, nil
}

// ListInRange retrieves activities in [from, to) ordered by sequence.
func (r *ActivityRepository) ListInRange(from, to time.Time) ([]*models.Activity, error) {
	query := `
		SELECT id, sequence, user_id, track_id, activity_type, play_duration_ms, created_at
		FROM activities
		WHERE created_at >= ? AND created_at < ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var (
			id           string
			sequence     int
			userID       string
			trackID      string
			activityType string
			playDuration sql.NullInt64
			createdAt    time.Time
		)

		if err := rows.Scan(&id, &sequence, &userID, &trackID, &activityType, &playDuration, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		activity := models.NewActivity(userID, trackID, models.ActivityType(activityType), 0)
		activity.SetID(id)
		activity.SetSequence(sequence)
		activity.SetCreatedAt(createdAt)
		if playDuration.Valid {
			activity.SetPlayDuration(playDuration.Int64)
		}

		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return activities, nil
}
