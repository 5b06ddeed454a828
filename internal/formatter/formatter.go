// package formatter provides functions to export a year-in-review report to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/shared"
)

// ExportTopTracksCSV converts the report's top tracks to CSV with columns: Rank, ID, Title, Artist, Playbacks, Duration
func ExportTopTracksCSV(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "ID", "Title", "Artist", "Playbacks", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range report.TopTracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Title,
			track.Artist,
			strconv.FormatInt(track.PlaybackCount, 10),
			shared.FormatDurationMS(track.DurationMS),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportTopArtistsCSV converts the report's top artists to CSV with columns: Rank, Artist, Tracks
func ExportTopArtistsCSV(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Artist", "Tracks"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, artist := range report.TopArtists {
		record := []string{
			strconv.Itoa(i + 1),
			artist.Name,
			strconv.FormatInt(artist.Count, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a report to a readable Markdown document
func ExportToMarkdown(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer

	title := "Your Year in Review"
	if report.Profile.Username != "" {
		title = fmt.Sprintf("%s's Year in Review", report.Profile.Username)
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, story := range report.Stories {
		buf.WriteString(fmt.Sprintf("> %s\n\n", story))
	}

	buf.WriteString("## Profile\n\n")
	buf.WriteString(fmt.Sprintf("**Followers**: %d\n", report.Profile.FollowersCount))
	buf.WriteString(fmt.Sprintf("**Following**: %d\n", report.Profile.FollowingCount))
	if report.Profile.JoinedYear != 0 {
		buf.WriteString(fmt.Sprintf("**Member since**: %d\n", report.Profile.JoinedYear))
	}
	buf.WriteString("\n")

	buf.WriteString("## Library\n\n")
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", report.APIStats.TrackCount))
	buf.WriteString(fmt.Sprintf("**Playbacks**: %d\n", report.APIStats.TotalPlaybacks))
	buf.WriteString(fmt.Sprintf("**Likes**: %d\n", report.APIStats.TotalLikes))
	buf.WriteString(fmt.Sprintf("**Reposts**: %d\n", report.APIStats.TotalReposts))
	buf.WriteString(fmt.Sprintf("**Listening time**: %.1f hours (%.1f books)\n\n", report.APIStats.TotalListeningHours, report.APIStats.BooksEquivalent))

	if len(report.TopTracks) > 0 {
		buf.WriteString("## Top Tracks\n\n")
		for i, track := range report.TopTracks {
			buf.WriteString(fmt.Sprintf("%d. %s - %s (%d plays) [%s]\n", i+1, track.Artist, track.Title, track.PlaybackCount, shared.FormatDurationMS(track.DurationMS)))
		}
		buf.WriteString("\n")
	}

	if len(report.TopArtists) > 0 {
		buf.WriteString("## Top Artists\n\n")
		for i, artist := range report.TopArtists {
			buf.WriteString(fmt.Sprintf("%d. %s (%d tracks)\n", i+1, artist.Name, artist.Count))
		}
		buf.WriteString("\n")
	}

	if len(report.GenreAnalysis.TopGenres) > 0 {
		buf.WriteString("## Genres\n\n")
		for i, genre := range report.GenreAnalysis.TopGenres {
			buf.WriteString(fmt.Sprintf("%d. %s (%d tracks)\n", i+1, genre.Name, genre.Count))
		}
		buf.WriteString("\n")
	}

	if report.ListeningPatterns.Persona != "" {
		buf.WriteString("## Listening Patterns\n\n")
		buf.WriteString(fmt.Sprintf("**Persona**: %s\n", report.ListeningPatterns.Persona))
		buf.WriteString(fmt.Sprintf("**Peak hour**: %02d:00\n", report.ListeningPatterns.PeakHour))
		buf.WriteString(fmt.Sprintf("**Peak day**: %s\n\n", report.ListeningPatterns.PeakDay))
	}

	if report.Doppelganger.Found {
		buf.WriteString("## Taste Twin\n\n")
		buf.WriteString(fmt.Sprintf("**%s** (%.0f%% match)\n\n", report.Doppelganger.Username, report.Doppelganger.CompositeScore*100))
	}

	if len(report.Notes) > 0 {
		buf.WriteString("## Notes\n\n")
		for _, note := range report.Notes {
			buf.WriteString(fmt.Sprintf("- %s\n", note))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a report to plain text format
func ExportToText(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer

	if report.Profile.Username != "" {
		buf.WriteString(fmt.Sprintf("Year in review for %s\n\n", report.Profile.Username))
	} else {
		buf.WriteString("Year in review\n\n")
	}

	for _, story := range report.Stories {
		buf.WriteString(fmt.Sprintf("* %s\n", story))
	}
	if len(report.Stories) > 0 {
		buf.WriteString("\n")
	}

	for i, track := range report.TopTracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ToReportJSON generates a pretty-printed JSON representation of a report
func ToReportJSON(report *models.Report) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile  string
	ArtistsFile string
	ReportFile  string
}

// WriteCSVExport exports a report's rankings to CSV with an accompanying full-report JSON file.
//
// Creates {base}_top_tracks.csv, {base}_top_artists.csv, and {base}_report.json
func WriteCSVExport(report *models.Report, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "rewind"
	}

	tracksData, err := ExportTopTracksCSV(report)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tracks CSV: %w", err)
	}

	tracksFile := baseFilepath + "_top_tracks.csv"
	if err := os.WriteFile(tracksFile, tracksData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write tracks CSV: %w", err)
	}

	artistsData, err := ExportTopArtistsCSV(report)
	if err != nil {
		return nil, fmt.Errorf("failed to generate artists CSV: %w", err)
	}

	artistsFile := baseFilepath + "_top_artists.csv"
	if err := os.WriteFile(artistsFile, artistsData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write artists CSV: %w", err)
	}

	reportJSON, err := ToReportJSON(report)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report JSON: %w", err)
	}

	reportFile := baseFilepath + "_report.json"
	if err := os.WriteFile(reportFile, reportJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report JSON: %w", err)
	}

	return &CSVExportResult{
		TracksFile:  tracksFile,
		ArtistsFile: artistsFile,
		ReportFile:  reportFile,
	}, nil
}

// WriteMarkdownExport exports a report to a Markdown file.
//
// Defaults to rewind.md as the filename.
func WriteMarkdownExport(report *models.Report, filepath string) (string, error) {
	if filepath == "" {
		filepath = "rewind.md"
	}

	mdData, err := ExportToMarkdown(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a report to plain text format.
//
// Defaults to rewind.txt as the filename.
func WriteTextExport(report *models.Report, filepath string) (string, error) {
	if filepath == "" {
		filepath = "rewind.txt"
	}

	textData, err := ExportToText(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
