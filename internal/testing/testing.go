// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/plbridge/internal/models"
)

// MockSource is a test double for services.Source
type MockSource struct {
	PlaylistList []models.Playlist
	TrackLists   map[string][]models.Track // keyed by source URL
	PlaylistsErr error
	TracksErr    error
	TrackCalls   []string
}

func (m *MockSource) Name() string { return "mock source" }

func (m *MockSource) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return m.PlaylistList, nil
}

func (m *MockSource) Tracks(ctx context.Context, p models.Playlist) ([]models.Track, error) {
	m.TrackCalls = append(m.TrackCalls, p.SourceURL)
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return m.TrackLists[p.SourceURL], nil
}

// MockDestination is a test double for services.Destination
type MockDestination struct {
	IDs       map[string]string // playlist name to returned ID; missing names get the fallback
	Fallback  string
	CreateErr error
	Results   map[string]models.Attachment // keyed by track name; missing tracks are added
	Created   []string
	Added     []models.Track
	AddedTo   []string
}

func (m *MockDestination) Name() string { return "mock destination" }

func (m *MockDestination) CreatePlaylist(ctx context.Context, name string) (string, error) {
	m.Created = append(m.Created, name)
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if id, ok := m.IDs[name]; ok {
		return id, nil
	}
	return m.Fallback, nil
}

func (m *MockDestination) AddTrack(ctx context.Context, playlistID, playlistName string, track models.Track) models.Attachment {
	m.Added = append(m.Added, track)
	m.AddedTo = append(m.AddedTo, playlistID)
	if res, ok := m.Results[track.Name]; ok {
		res.Track = track
		return res
	}
	return models.Attachment{Track: track, Success: true, Attached: true, Status: models.StatusAdded, Entry: playlistName}
}

// MockPrompter answers prompts from canned values and records every question
type MockPrompter struct {
	Answers  []string
	Confirms []bool
	Err      error
	Asked    []string
}

func (m *MockPrompter) Ask(ctx context.Context, question, fallback string) (string, error) {
	m.Asked = append(m.Asked, question)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Answers) == 0 {
		return fallback, nil
	}
	answer := m.Answers[0]
	m.Answers = m.Answers[1:]
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

func (m *MockPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	m.Asked = append(m.Asked, question)
	if m.Err != nil {
		return false, m.Err
	}
	if len(m.Confirms) == 0 {
		return false, nil
	}
	answer := m.Confirms[0]
	m.Confirms = m.Confirms[1:]
	return answer, nil
}

func (m *MockPrompter) Wait(ctx context.Context, message string) error {
	m.Asked = append(m.Asked, message)
	return m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
