package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soundctl/rewind/internal/formatter"
	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Report builds the year-in-review report and renders or exports it.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	year := cmd.Int("year")
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	engine, err := r.reportEngine()
	if err != nil {
		return err
	}

	report, err := r.buildReport(ctx, engine, year)
	if err != nil {
		retried, authErr := r.handleAuthError(ctx, err, cmd)
		if !retried || authErr != nil {
			if authErr != nil {
				return authErr
			}
			return err
		}
		report, err = r.buildReport(ctx, engine, year)
		if err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	if format := cmd.String("format"); format != "" {
		return r.exportReport(report, format, cmd.String("output"))
	}

	r.renderReport(report, year)
	return nil
}

// buildReport runs the engine with progress updates forwarded to the logger.
func (r *Runner) buildReport(ctx context.Context, engine tasks.ReportEngine, year int) (*models.Report, error) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			if update.Total > 0 {
				r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
			} else {
				r.logger.Info(update.Message, "phase", update.Phase.String())
			}
		}
	}()

	report, err := engine.Build(ctx, year, progress)
	close(progress)
	<-done

	return report, err
}

// exportReport writes the report to disk in the requested format.
func (r *Runner) exportReport(report *models.Report, format, output string) error {
	switch strings.ToLower(format) {
	case "markdown", "md":
		path, err := formatter.WriteMarkdownExport(report, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", path)
	case "csv":
		result, err := formatter.WriteCSVExport(report, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", result.TracksFile)
		r.writePlain("✓ Wrote %s\n", result.ArtistsFile)
		r.writePlain("✓ Wrote %s\n", result.ReportFile)
	case "text", "txt":
		path, err := formatter.WriteTextExport(report, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", path)
	default:
		return fmt.Errorf("unknown format %q (expected markdown, csv, or text)", format)
	}

	return nil
}

// renderReport prints the report in a human-readable layout.
func (r *Runner) renderReport(report *models.Report, year int) {
	title := fmt.Sprintf("Your %d Rewind", year)
	if report.Profile.Username != "" {
		title = fmt.Sprintf("%s's %d Rewind", report.Profile.Username, year)
	}
	r.writePlainHeader(title)

	for _, story := range report.Stories {
		r.writePlain("  %s\n", story)
	}

	r.writePlainln("Library")
	r.writePlain("  Tracks: %d\n", report.APIStats.TrackCount)
	r.writePlain("  Playbacks: %d  Likes: %d  Reposts: %d\n",
		report.APIStats.TotalPlaybacks, report.APIStats.TotalLikes, report.APIStats.TotalReposts)
	r.writePlain("  Listening hours: %.1f (about %.1f audiobooks)\n",
		report.APIStats.TotalListeningHours, report.APIStats.BooksEquivalent)
	if report.APIStats.PeakYear != 0 {
		r.writePlain("  Peak year: %d (%d tracks)\n", report.APIStats.PeakYear, report.APIStats.TracksInPeakYear)
	}

	if len(report.TopTracks) > 0 {
		r.writePlainln("Top Tracks")
		for i, track := range report.TopTracks {
			r.writePlain("  %d. %s by %s (%d plays)\n", i+1, track.Title, track.Artist, track.PlaybackCount)
		}
	}

	if len(report.TopArtists) > 0 {
		r.writePlainln("Top Artists")
		for i, artist := range report.TopArtists {
			r.writePlain("  %d. %s (%d tracks)\n", i+1, artist.Name, artist.Count)
		}
	}

	if len(report.GenreAnalysis.TopGenres) > 0 {
		r.writePlainln("Genres")
		for _, genre := range report.GenreAnalysis.TopGenres {
			r.writePlain("  %s (%d)\n", genre.Name, genre.Count)
		}
	}

	r.writePlainln("Your Activity")
	r.writePlain("  Plays: %d  Likes: %d  Reposts: %d  Shares: %d\n",
		report.TrackedStats.Plays, report.TrackedStats.Likes,
		report.TrackedStats.Reposts, report.TrackedStats.Shares)
	r.writePlain("  Tracked listening hours: %.1f\n", report.TrackedStats.ListeningHours)

	if report.ListeningPatterns.PeakHour >= 0 {
		r.writePlainln("Listening Patterns")
		r.writePlain("  Peak hour: %02d:00\n", report.ListeningPatterns.PeakHour)
		r.writePlain("  Peak day: %s\n", report.ListeningPatterns.PeakDay)
		r.writePlain("  Persona: %s\n", report.ListeningPatterns.Persona)
	}

	if report.Doppelganger.Found {
		r.writePlainln("Taste Twin")
		r.writePlain("  %s (%.0f%% match)\n", report.Doppelganger.Username, report.Doppelganger.CompositeScore*100)
	}

	if len(report.Notes) > 0 {
		r.writePlainln("Notes")
		for _, note := range report.Notes {
			r.writePlain("  ⚠ %s\n", note)
		}
	}
}
