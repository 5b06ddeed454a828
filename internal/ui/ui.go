package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/shared"
	"github.com/soundctl/rewind/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	SectionListView
	DetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.ReportEngine
	year         int
	width        int
	height       int
	sectionList  list.Model
	selected     *sectionItem
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	report       *models.Report
	err          error
	help         help.Model
	keys         keyMap
}

type reportBuiltMsg struct {
	report *models.Report
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.ReportEngine, year int) *Model {
	return &Model{
		ctx:    ctx,
		view:   LoadingView,
		engine: engine,
		year:   year,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init kicks off the report build.
func (m *Model) Init() tea.Cmd {
	return m.startBuild()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.sectionList.Width() == 0 {
			m.sectionList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case SectionListView:
			return m.handleSectionListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case reportBuiltMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.report = msg.report
		items := make([]list.Item, 0, 8)
		for _, section := range buildSections(msg.report) {
			items = append(items, section)
		}
		m.sectionList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.sectionList.Title = fmt.Sprintf("Your %d Rewind", m.year)
		m.sectionList.SetSize(m.width-4, m.height-8)
		m.view = SectionListView
		return m, nil
	}

	if m.view == SectionListView {
		var cmd tea.Cmd
		m.sectionList, cmd = m.sectionList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case SectionListView:
		return m.renderSectionList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleSectionListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.sectionList.SelectedItem()
		if selected != nil {
			if section, ok := selected.(sectionItem); ok {
				m.selected = &section
				m.view = DetailView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.sectionList, cmd = m.sectionList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SectionListView
		m.selected = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) startBuild() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		report, err := m.engine.Build(m.ctx, m.year, m.progressChan)
		m.report = report
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return reportBuiltMsg{report: m.report, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return reportBuiltMsg{report: m.report, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render(fmt.Sprintf("Building your %d rewind", m.year))

	message := m.progress.Message
	if message == "" {
		message = "Warming up..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, message, helpView)
}

func (m *Model) renderSectionList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.sectionList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	title := styles.title.Render(m.selected.title)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.selected.body, helpView)
}

// buildSections turns the report into browsable list entries.
// Sections without data are dropped rather than rendered empty.
func buildSections(report *models.Report) []sectionItem {
	var sections []sectionItem

	if len(report.Stories) > 0 {
		var body strings.Builder
		for _, story := range report.Stories {
			body.WriteString(fmt.Sprintf("• %s\n", story))
		}
		sections = append(sections, sectionItem{
			title: "Highlights",
			desc:  fmt.Sprintf("%d stories from your year", len(report.Stories)),
			body:  body.String(),
		})
	}

	profile := report.Profile
	if profile.Username != "" {
		body := fmt.Sprintf("Username: %s\nFollowers: %d\nFollowing: %d\n", profile.Username, profile.FollowersCount, profile.FollowingCount)
		if profile.JoinedYear != 0 {
			body += fmt.Sprintf("Member since: %d\n", profile.JoinedYear)
		}
		sections = append(sections, sectionItem{
			title: "Profile",
			desc:  fmt.Sprintf("%d followers", profile.FollowersCount),
			body:  body,
		})
	}

	stats := report.APIStats
	if stats.TrackCount > 0 {
		body := fmt.Sprintf(
			"Tracks: %d\nPlaybacks: %d\nLikes: %d\nReposts: %d\nListening time: %.1f hours\nThat's %.1f books' worth of reading time.\n",
			stats.TrackCount, stats.TotalPlaybacks, stats.TotalLikes, stats.TotalReposts,
			stats.TotalListeningHours, stats.BooksEquivalent)
		if stats.PeakYear != 0 {
			body += fmt.Sprintf("Biggest year: %d (%d tracks)\n", stats.PeakYear, stats.TracksInPeakYear)
		}
		sections = append(sections, sectionItem{
			title: "Library",
			desc:  fmt.Sprintf("%d tracks, %.1f hours", stats.TrackCount, stats.TotalListeningHours),
			body:  body,
		})
	}

	tracked := report.TrackedStats
	if tracked.Plays+tracked.Likes+tracked.Reposts+tracked.Shares > 0 {
		body := fmt.Sprintf("Plays: %d\nLikes: %d\nReposts: %d\nShares: %d\nTracked listening: %.1f hours\n",
			tracked.Plays, tracked.Likes, tracked.Reposts, tracked.Shares, tracked.ListeningHours)
		sections = append(sections, sectionItem{
			title: "Your Activity",
			desc:  fmt.Sprintf("%d plays tracked", tracked.Plays),
			body:  body,
		})
	}

	if len(report.TopTracks) > 0 {
		var body strings.Builder
		for i, track := range report.TopTracks {
			body.WriteString(fmt.Sprintf("%d. %s - %s (%d plays) [%s]\n",
				i+1, track.Artist, track.Title, track.PlaybackCount, shared.FormatDurationMS(track.DurationMS)))
		}
		sections = append(sections, sectionItem{
			title: "Top Tracks",
			desc:  fmt.Sprintf("%s leads the pack", report.TopTracks[0].Title),
			body:  body.String(),
		})
	}

	if len(report.TopArtists) > 0 {
		var body strings.Builder
		for i, artist := range report.TopArtists {
			body.WriteString(fmt.Sprintf("%d. %s (%d tracks)\n", i+1, artist.Name, artist.Count))
		}
		sections = append(sections, sectionItem{
			title: "Top Artists",
			desc:  report.TopArtists[0].Name,
			body:  body.String(),
		})
	}

	if len(report.GenreAnalysis.TopGenres) > 0 {
		var body strings.Builder
		for i, genre := range report.GenreAnalysis.TopGenres {
			body.WriteString(fmt.Sprintf("%d. %s (%d tracks)\n", i+1, genre.Name, genre.Count))
		}
		sections = append(sections, sectionItem{
			title: "Genres",
			desc:  fmt.Sprintf("Mostly %s", report.GenreAnalysis.TopGenres[0].Name),
			body:  body.String(),
		})
	}

	patterns := report.ListeningPatterns
	if patterns.Persona != "" {
		body := fmt.Sprintf("Persona: %s\nPeak hour: %02d:00\nPeak day: %s\n",
			patterns.Persona, patterns.PeakHour, patterns.PeakDay)
		sections = append(sections, sectionItem{
			title: "Listening Patterns",
			desc:  patterns.Persona,
			body:  body,
		})
	}

	doppel := report.Doppelganger
	if doppel.Found {
		body := fmt.Sprintf(
			"Closest match: %s\nComposite score: %.0f%%\nShared tracks: %.0f%%\nShared artists: %.0f%%\nShared genres: %.0f%%\n",
			doppel.Username, doppel.CompositeScore*100,
			doppel.TrackSimilarity*100, doppel.ArtistSimilarity*100, doppel.GenreSimilarity*100)
		sections = append(sections, sectionItem{
			title: "Taste Twin",
			desc:  doppel.Username,
			body:  body,
		})
	} else if doppel.Reason != "" {
		sections = append(sections, sectionItem{
			title: "Taste Twin",
			desc:  "No match found",
			body:  doppel.Reason + "\n",
		})
	}

	if len(report.Notes) > 0 {
		var body strings.Builder
		for _, note := range report.Notes {
			body.WriteString(fmt.Sprintf("• %s\n", note))
		}
		sections = append(sections, sectionItem{
			title: "Notes",
			desc:  fmt.Sprintf("%d data caveats", len(report.Notes)),
			body:  body.String(),
		})
	}

	return sections
}
