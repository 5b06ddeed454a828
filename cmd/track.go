package main

import (
	"context"
	"fmt"
	"time"

	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/shared"
	"github.com/urfave/cli/v3"
)

// TrackPlay records a play in the local activity log.
func (r *Runner) TrackPlay(ctx context.Context, cmd *cli.Command) error {
	trackID, userID, err := r.activityArgs(cmd)
	if err != nil {
		return err
	}

	repo, err := r.activityRepo()
	if err != nil {
		return err
	}

	activity, err := repo.RecordPlay(userID, trackID, cmd.Int64("duration"))
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}

	r.writePlain("✓ Recorded play #%d for track %s\n", activity.Sequence(), trackID)
	if ms := activity.PlayDurationMS(); ms > 0 {
		r.writePlain("  Duration: %s\n", shared.FormatDurationMS(ms))
	}
	return nil
}

// TrackLike records a like in the local activity log.
func (r *Runner) TrackLike(ctx context.Context, cmd *cli.Command) error {
	return r.recordSimple(cmd, models.ActivityLike)
}

// TrackRepost records a repost in the local activity log.
func (r *Runner) TrackRepost(ctx context.Context, cmd *cli.Command) error {
	return r.recordSimple(cmd, models.ActivityRepost)
}

// TrackShare records a share in the local activity log.
func (r *Runner) TrackShare(ctx context.Context, cmd *cli.Command) error {
	return r.recordSimple(cmd, models.ActivityShare)
}

// TrackHistory lists recorded activities for a calendar year.
func (r *Runner) TrackHistory(ctx context.Context, cmd *cli.Command) error {
	year := cmd.Int("year")
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	repo, err := r.activityRepo()
	if err != nil {
		return err
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	activities, err := repo.ListInRange(from, from.AddDate(1, 0, 0))
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	if cmd.Bool("json") {
		entries := make([]map[string]any, 0, len(activities))
		for _, a := range activities {
			entry := map[string]any{
				"id":        a.ID(),
				"sequence":  a.Sequence(),
				"userId":    a.UserID(),
				"trackId":   a.TrackID(),
				"type":      a.Type(),
				"createdAt": a.CreatedAt().Format(time.RFC3339),
			}
			if a.Type() == models.ActivityPlay {
				entry["playDurationMs"] = a.PlayDurationMS()
			}
			entries = append(entries, entry)
		}
		return r.writeJSON(entries, true)
	}

	if len(activities) == 0 {
		r.writePlain("No activity recorded in %d\n", year)
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Activity in %d (%d events)", year, len(activities)))
	for _, a := range activities {
		line := fmt.Sprintf("#%-4d %-6s track %s", a.Sequence(), a.Type(), a.TrackID())
		if a.Type() == models.ActivityPlay && a.PlayDurationMS() > 0 {
			line += fmt.Sprintf(" (%s)", shared.FormatDurationMS(a.PlayDurationMS()))
		}
		r.writePlain("%s  %s\n", a.CreatedAt().Format("2006-01-02 15:04"), line)
	}
	return nil
}

// recordSimple handles the like/repost/share variants that carry no duration.
func (r *Runner) recordSimple(cmd *cli.Command, activityType models.ActivityType) error {
	trackID, userID, err := r.activityArgs(cmd)
	if err != nil {
		return err
	}

	repo, err := r.activityRepo()
	if err != nil {
		return err
	}

	var activity *models.Activity
	switch activityType {
	case models.ActivityLike:
		activity, err = repo.RecordLike(userID, trackID)
	case models.ActivityRepost:
		activity, err = repo.RecordRepost(userID, trackID)
	case models.ActivityShare:
		activity, err = repo.RecordShare(userID, trackID)
	default:
		return fmt.Errorf("%w: unsupported activity type %s", shared.ErrInvalidArgument, activityType)
	}
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", activityType, err)
	}

	r.writePlain("✓ Recorded %s #%d for track %s\n", activityType, activity.Sequence(), trackID)
	return nil
}

// activityArgs extracts the track argument and user flag shared by the
// recording commands.
func (r *Runner) activityArgs(cmd *cli.Command) (trackID, userID string, err error) {
	trackID = cmd.StringArg("track")
	if trackID == "" {
		return "", "", fmt.Errorf("%w: track ID is required", shared.ErrMissingArgument)
	}

	userID = cmd.String("user")
	if userID == "" {
		userID = "local"
	}

	return trackID, userID, nil
}
