package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/services"
	"github.com/desertthunder/plbridge/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	MigrateView
	ResultView
)

const recentLines = 8

// Model is the main application model for the TUI.
type Model struct {
	ctx    context.Context
	source services.Source
	engine tasks.SyncEngine

	view    ViewState
	loading bool
	err     error

	width, height int

	playlistList list.Model
	trackList    list.Model
	selected     *models.PlaylistExport

	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	recent       []string

	result *tasks.MigrationResult

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates the TUI model.
//
// Playlists are enumerated through engine so its name filter and limit apply; source is used
// only to preview a playlist's tracks before migrating.
func NewModel(ctx context.Context, source services.Source, engine tasks.SyncEngine) Model {
	playlists := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "Spotify Playlists"
	playlists.SetShowHelp(false)

	tracks := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	tracks.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return Model{
		ctx:          ctx,
		source:       source,
		engine:       engine,
		view:         PlaylistListView,
		loading:      true,
		playlistList: playlists,
		trackList:    tracks,
		spinner:      s,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init loads the playlists.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchPlaylists())
}

func (m Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.engine.Playlists(m.ctx, nil)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m Model) fetchTracks(p models.Playlist) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.source.Tracks(m.ctx, p)
		if err != nil {
			return tracksFetchedMsg(nil, err)
		}
		return tracksFetchedMsg(&models.PlaylistExport{Playlist: p, Tracks: tracks}, nil)
	}
}

// startMigration runs the migration in the background. The result arrives on doneChan so the
// goroutine never touches the model.
func (m *Model) startMigration() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 64)
	m.doneChan = make(chan Msg, 1)
	m.recent = nil
	m.progress = tasks.ProgressUpdate{}

	engine, ctx, playlist := m.engine, m.ctx, m.selected.Playlist
	progress, done := m.progressChan, m.doneChan
	go func() {
		res, err := engine.MigratePlaylist(ctx, progress, playlist)
		done <- transferCompleteMsg(res, err)
	}()

	return tea.Batch(m.spinner.Tick, waitForProgress(progress, done))
}

// waitForProgress delivers the next progress update, or the completion message once the
// migration returns.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

// Update handles incoming messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.playlistList.SetSize(msg.Width, max(msg.Height-4, 1))
		m.trackList.SetSize(msg.Width, max(msg.Height-4, 1))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if !m.loading && m.view != MigrateView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsPayload)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.playlistList.SetItems(playlistItems(data.playlists))
		return m, nil
	case MsgTracksFetched:
		data := msg.data.(tracksPayload)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		m.err = nil
		m.selected = data.export
		m.trackList.Title = fmt.Sprintf("%s (%d tracks)", data.export.Playlist.Name, len(data.export.Tracks))
		m.trackList.SetItems(trackItems(data.export.Tracks))
		m.trackList.ResetSelected()
		m.view = TrackListView
		return m, nil
	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		if _, ok := update.Data.(models.Attachment); ok || update.Phase != tasks.AddTracks {
			m.recent = append(m.recent, update.Message)
			if len(m.recent) > recentLines {
				m.recent = m.recent[len(m.recent)-recentLines:]
			}
		}
		return m, waitForProgress(m.progressChan, m.doneChan)
	case MsgTransferComplete:
		data := msg.data.(transferPayload)
		m.result, m.err = data.result, data.err
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case PlaylistListView:
		if m.playlistList.FilterState() == list.Filtering || m.loading {
			return m.updateList(msg)
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.preview):
			item, ok := m.playlistList.SelectedItem().(playlistItem)
			if !ok {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetchTracks(item.playlist))
		}
	case TrackListView:
		if m.trackList.FilterState() == list.Filtering {
			return m.updateList(msg)
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.view = PlaylistListView
			return m, nil
		case key.Matches(msg, m.keys.migrate):
			m.view = ConfirmView
			return m, nil
		}
	case ConfirmView:
		switch {
		case key.Matches(msg, m.keys.confirm):
			m.view = MigrateView
			return m, m.startMigration()
		case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.back):
			m.view = TrackListView
			return m, nil
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		}
		return m, nil
	case MigrateView:
		return m, nil
	case ResultView:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.again), key.Matches(msg, m.keys.back):
			m.view = PlaylistListView
			m.selected, m.result, m.err = nil, nil, nil
			return m, nil
		}
		return m, nil
	}

	return m.updateList(msg)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// View renders the current view.
func (m Model) View() string {
	switch m.view {
	case TrackListView:
		return m.trackList.View() + "\n" + m.helpLine(m.keys.bindings(TrackListView)...)
	case ConfirmView:
		return m.renderConfirm()
	case MigrateView:
		return m.renderMigrate()
	case ResultView:
		return m.renderResult()
	default:
		return m.renderPlaylists()
	}
}

func (m Model) helpLine(bindings ...key.Binding) string {
	return m.help.ShortHelpView(bindings)
}

func (m Model) renderPlaylists() string {
	if m.loading {
		return fmt.Sprintf("\n %s Loading from %s...\n", m.spinner.View(), m.source.Name())
	}
	if m.err != nil {
		return fmt.Sprintf("\n %s\n\n%s", styles.err.Render("Error: "+m.err.Error()), m.helpLine(m.keys.quit))
	}
	return m.playlistList.View() + "\n" + m.helpLine(m.keys.bindings(PlaylistListView)...)
}

func (m Model) renderConfirm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Migrate playlist?"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Playlist: %s\n", m.selected.Playlist.Name)
	fmt.Fprintf(&b, "Tracks:   %d\n\n", len(m.selected.Tracks))
	b.WriteString(styles.warn.Render("Tracks are searched and saved one by one through the browser."))
	b.WriteString("\n\n")
	b.WriteString(m.helpLine(m.keys.bindings(ConfirmView)...))
	return styles.frame.Render(b.String())
}

func (m Model) renderMigrate() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Migrating " + m.selected.Playlist.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.progress.Phase)
	if m.progress.Total > 0 {
		fmt.Fprintf(&b, "Step %d of %d\n", m.progress.Step, m.progress.Total)
	}
	b.WriteString("\n")
	for _, line := range m.recent {
		b.WriteString(styles.help.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderResult() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(styles.err.Render("Migration failed: " + m.err.Error()))
		b.WriteString("\n\n")
	} else {
		b.WriteString(styles.ok.Render("Migration complete"))
		b.WriteString("\n\n")
	}

	if res := m.result; res != nil {
		fmt.Fprintf(&b, "Playlist:    %s\n", res.Playlist.Name)
		if res.Sentinel {
			b.WriteString(styles.warn.Render("Destination playlist was not resolved, tracks were only searched"))
			b.WriteString("\n")
		} else if res.DestinationID != "" {
			fmt.Fprintf(&b, "Destination: %s\n", res.DestinationID)
		}
		fmt.Fprintf(&b, "Added:       %d\n", res.Added)
		fmt.Fprintf(&b, "Search only: %d\n", res.SearchOnly)
		fmt.Fprintf(&b, "Failed:      %d\n", res.Failed)

		if res.Failed > 0 {
			b.WriteString("\nFailed tracks:\n")
			for _, att := range res.Attachments {
				if att.Success {
					continue
				}
				fmt.Fprintf(&b, "  %s\n", styles.Status(att).Render(fmt.Sprintf("%s (%s)", att.Track.Query(), att.Status)))
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(m.helpLine(m.keys.bindings(ResultView)...))
	return b.String()
}
