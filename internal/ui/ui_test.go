package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/shared"
	"github.com/desertthunder/plbridge/internal/tasks"
	th "github.com/desertthunder/plbridge/internal/testing"
)

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(source *th.MockSource, dest *th.MockDestination) Model {
	engine := tasks.NewPlaylistEngine(source, dest, log.New(io.Discard), tasks.Options{})
	m := NewModel(context.Background(), source, engine)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func testSource() *th.MockSource {
	return &th.MockSource{
		PlaylistList: []models.Playlist{{Name: "Road Trip", SourceURL: "https://x/playlist/1"}},
		TrackLists: map[string][]models.Track{
			"https://x/playlist/1": {{Name: "Song A", Artists: "Artist X"}, {Name: "Song B"}},
		},
	}
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

// send applies msg and returns the updated model.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = send(t, m, m.fetchPlaylists()())
	return m
}

func TestModel(t *testing.T) {
	t.Run("loads playlists", func(t *testing.T) {
		m := newTestModel(testSource(), &th.MockDestination{})
		if !m.loading || !strings.Contains(m.View(), "Loading from mock source") {
			t.Errorf("expected loading view, got %q", m.View())
		}

		m = loaded(t, m)
		if m.loading || m.err != nil {
			t.Fatalf("expected playlists to load, err = %v", m.err)
		}
		if len(m.playlistList.Items()) != 1 {
			t.Errorf("expected 1 playlist, got %d", len(m.playlistList.Items()))
		}
		if !strings.Contains(m.View(), "Road Trip") {
			t.Errorf("expected playlist in view, got %q", m.View())
		}
	})

	t.Run("shows playlist errors", func(t *testing.T) {
		source := testSource()
		source.PlaylistsErr = shared.ErrSessionUnavailable
		m := loaded(t, newTestModel(source, &th.MockDestination{}))

		if !errors.Is(m.err, shared.ErrSessionUnavailable) {
			t.Errorf("expected session error, got %v", m.err)
		}
		if !strings.Contains(m.View(), "Error:") {
			t.Errorf("expected error view, got %q", m.View())
		}
	})

	t.Run("selects a playlist and previews tracks", func(t *testing.T) {
		source := testSource()
		m := loaded(t, newTestModel(source, &th.MockDestination{}))

		m, cmd := send(t, m, enterKey)
		if !m.loading || cmd == nil {
			t.Fatal("expected a track fetch")
		}

		m, _ = send(t, m, m.fetchTracks(source.PlaylistList[0])())
		if m.view != TrackListView {
			t.Fatalf("expected track list view, got %v", m.view)
		}
		if m.selected == nil || len(m.selected.Tracks) != 2 {
			t.Errorf("expected selected playlist with 2 tracks, got %+v", m.selected)
		}
		if !strings.Contains(m.View(), "Road Trip (2 tracks)") {
			t.Errorf("unexpected view %q", m.View())
		}

		m, _ = send(t, m, escKey)
		if m.view != PlaylistListView {
			t.Errorf("expected esc to go back, got %v", m.view)
		}
	})

	t.Run("track errors return to the playlist list", func(t *testing.T) {
		source := testSource()
		m := loaded(t, newTestModel(source, &th.MockDestination{}))
		source.TracksErr = shared.ErrTimeout

		m, _ = send(t, m, m.fetchTracks(source.PlaylistList[0])())
		if m.view != PlaylistListView || !errors.Is(m.err, shared.ErrTimeout) {
			t.Errorf("expected error on playlist view, got view %v err %v", m.view, m.err)
		}
	})

	t.Run("confirm and cancel", func(t *testing.T) {
		source := testSource()
		m := loaded(t, newTestModel(source, &th.MockDestination{}))
		m, _ = send(t, m, m.fetchTracks(source.PlaylistList[0])())

		m, _ = send(t, m, enterKey)
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Migrate playlist?") {
			t.Errorf("unexpected confirm view %q", m.View())
		}

		m, _ = send(t, m, runes("n"))
		if m.view != TrackListView {
			t.Errorf("expected n to cancel, got %v", m.view)
		}
	})

	t.Run("m also opens the confirmation", func(t *testing.T) {
		source := testSource()
		m := loaded(t, newTestModel(source, &th.MockDestination{}))
		if !strings.Contains(m.View(), "preview tracks") {
			t.Errorf("expected playlist help, got %q", m.View())
		}
		m, _ = send(t, m, m.fetchTracks(source.PlaylistList[0])())

		m, _ = send(t, m, runes("m"))
		if m.view != ConfirmView {
			t.Errorf("expected confirm view, got %v", m.view)
		}
	})

	t.Run("migrates the selected playlist", func(t *testing.T) {
		source := testSource()
		dest := &th.MockDestination{Fallback: "PL1"}
		m := loaded(t, newTestModel(source, dest))
		m, _ = send(t, m, m.fetchTracks(source.PlaylistList[0])())
		m, _ = send(t, m, enterKey)

		m, _ = send(t, m, runes("y"))
		if m.view != MigrateView {
			t.Fatalf("expected migrate view, got %v", m.view)
		}

		// Drain progress until the completion message arrives.
		for range 50 {
			msg := waitForProgress(m.progressChan, m.doneChan)()
			m, _ = send(t, m, msg)
			if m.view == ResultView {
				break
			}
		}

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		if m.err != nil || m.result == nil || m.result.Added != 2 {
			t.Errorf("unexpected result %+v err %v", m.result, m.err)
		}
		view := m.View()
		if !strings.Contains(view, "Migration complete") || !strings.Contains(view, "Destination: PL1") {
			t.Errorf("unexpected result view %q", view)
		}

		m, _ = send(t, m, runes("r"))
		if m.view != PlaylistListView || m.result != nil {
			t.Errorf("expected restart to reset, got view %v", m.view)
		}
	})

	t.Run("result lists failed tracks", func(t *testing.T) {
		m := newTestModel(testSource(), &th.MockDestination{})
		res := &tasks.MigrationResult{
			Playlist:      models.Playlist{Name: "Road Trip"},
			DestinationID: "mock_playlist_id",
			Sentinel:      true,
			Failed:        1,
			SearchOnly:    1,
			Attachments: []models.Attachment{
				{Track: models.Track{Name: "Song A"}, Success: true, Status: models.StatusSearchOnly},
				{Track: models.Track{Name: "Song B", Artists: "Artist Y"}, Status: models.StatusNoDialog},
			},
		}

		m, _ = send(t, m, transferCompleteMsg(res, shared.ErrSessionUnavailable))
		view := m.View()
		for _, want := range []string{"Migration failed", "tracks were only searched", "Song B Artist Y (no_dialog)"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view %q", want, view)
			}
		}
		if strings.Contains(view, "Song A Artist") {
			t.Error("successful tracks should not be listed as failed")
		}
	})

	t.Run("progress keeps recent lines", func(t *testing.T) {
		m := newTestModel(testSource(), &th.MockDestination{})
		m.selected = &models.PlaylistExport{Playlist: models.Playlist{Name: "Road Trip"}}
		m.view = MigrateView
		m.progressChan = make(chan tasks.ProgressUpdate, 1)
		m.doneChan = make(chan Msg, 1)

		for i := range recentLines + 3 {
			update := tasks.ProgressUpdate{Phase: tasks.FetchTracks, Step: i, Total: 20, Message: "line"}
			var cmd tea.Cmd
			m, cmd = send(t, m, progressUpdateMsg(update))
			if cmd == nil {
				t.Fatal("expected the next wait command")
			}
		}
		if len(m.recent) != recentLines {
			t.Errorf("expected %d recent lines, got %d", recentLines, len(m.recent))
		}
		if !strings.Contains(m.View(), "fetch_tracks") {
			t.Errorf("expected phase in view, got %q", m.View())
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := loaded(t, newTestModel(testSource(), &th.MockDestination{}))
		if _, cmd := send(t, m, runes("q")); !isQuit(t, cmd) {
			t.Error("expected q to quit from the playlist list")
		}
		if _, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuit(t, cmd) {
			t.Error("expected ctrl+c to quit")
		}
	})
}

func TestKeyMapBindings(t *testing.T) {
	keys := newKeyMap()
	tests := []struct {
		view ViewState
		want []string
	}{
		{PlaylistListView, []string{"preview tracks", "quit"}},
		{TrackListView, []string{"migrate", "back", "quit"}},
		{ConfirmView, []string{"start", "cancel"}},
		{MigrateView, nil},
		{ResultView, []string{"pick another playlist", "back", "quit"}},
	}

	for _, tt := range tests {
		var got []string
		for _, b := range keys.bindings(tt.view) {
			got = append(got, b.Help().Desc)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("view %v: expected %v, got %v", tt.view, tt.want, got)
		}
	}
}

func TestWaitForProgress(t *testing.T) {
	progress := make(chan tasks.ProgressUpdate, 1)
	done := make(chan Msg, 1)

	progress <- tasks.ProgressUpdate{Message: "hello"}
	msg := waitForProgress(progress, done)().(Msg)
	if msg.kind != MsgProgressUpdate {
		t.Errorf("expected progress message, got %v", msg.kind)
	}

	done <- transferCompleteMsg(nil, nil)
	msg = waitForProgress(progress, done)().(Msg)
	if msg.kind != MsgTransferComplete {
		t.Errorf("expected completion message, got %v", msg.kind)
	}
}
