// package formatter provides functions to export scraped playlists and tracks to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, s)
	}
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// PlaylistsToCSV converts scraped playlists to CSV with columns: Name, URL
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	rows := make([][]string, 0, len(playlists))
	for _, p := range playlists {
		rows = append(rows, []string{p.Name, p.SourceURL})
	}
	return writeCSV([]string{"Name", "URL"}, rows)
}

// PlaylistsToMarkdown renders scraped playlists as a numbered list of links
func PlaylistsToMarkdown(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Playlists\n\n")
	fmt.Fprintf(&buf, "**Count**: %d\n\n", len(playlists))
	for i, p := range playlists {
		fmt.Fprintf(&buf, "%d. [%s](%s)\n", i+1, p.Name, p.SourceURL)
	}
	return buf.Bytes(), nil
}

// PlaylistsToText renders scraped playlists one per line
func PlaylistsToText(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	for i, p := range playlists {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, p.Name, p.SourceURL)
	}
	return buf.Bytes(), nil
}

// RenderPlaylists converts scraped playlists to format.
func RenderPlaylists(playlists []models.Playlist, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return PlaylistsToCSV(playlists)
	case FormatMarkdown:
		return PlaylistsToMarkdown(playlists)
	case FormatText:
		return PlaylistsToText(playlists)
	case FormatJSON:
		return shared.MarshalJSON(playlists, true)
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, format)
	}
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: Position, Name, Artists
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	rows := make([][]string, 0, len(export.Tracks))
	for i, track := range export.Tracks {
		rows = append(rows, []string{fmt.Sprint(i + 1), track.Name, track.Artists})
	}
	return writeCSV([]string{"Position", "Name", "Artists"}, rows)
}

// ExportToMarkdown converts a PlaylistExport to Markdown format
func ExportToMarkdown(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Playlist.Name)
	if export.Playlist.SourceURL != "" {
		fmt.Fprintf(&buf, "**Source**: %s\n", export.Playlist.SourceURL)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Tracks))
	if !export.ExportedAt.IsZero() {
		fmt.Fprintf(&buf, "**Exported**: %s\n", export.ExportedAt.Format(time.RFC3339))
	}

	buf.WriteString("\n## Tracks\n\n")
	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, trackLine(track))
	}
	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.SourceURL != "" {
		fmt.Fprintf(&buf, "Source: %s\n", export.Playlist.SourceURL)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, trackLine(track))
	}
	return buf.Bytes(), nil
}

// trackLine renders "Artists - Name", or just the name when no artist was scraped.
func trackLine(t models.Track) string {
	if t.Artists == "" {
		return t.Name
	}
	return t.Artists + " - " + t.Name
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(export *models.PlaylistExport) ([]byte, error) {
	return shared.MarshalJSON(struct {
		models.Playlist
		TrackCount int       `json:"track_count"`
		ExportedAt time.Time `json:"exported_at"`
	}{export.Playlist, len(export.Tracks), export.ExportedAt}, true)
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slug turns a playlist name into a file name stem.
//
// Runs of anything but letters and digits collapse to a single underscore. Empty names become "playlist".
func Slug(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if s == "" {
		return "playlist"
	}
	return s
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to the playlist slug as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *models.PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(export.Playlist.Name)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a playlist to {outputDir}/README.md.
//
// Directory name defaults to the playlist slug.
func WriteMarkdownExport(export *models.PlaylistExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = Slug(export.Playlist.Name)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {slug}_tracks.txt as the filename.
func WriteTextExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = Slug(export.Playlist.Name) + "_tracks.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes the whole export, tracks included, to path.
func WriteJSONExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = Slug(export.Playlist.Name) + ".json"
	}

	data, err := shared.MarshalJSON(export, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// WriteExport writes export into dir in format and returns the files it created.
//
// File names derive from stem, which defaults to the playlist slug.
func WriteExport(export *models.PlaylistExport, format Format, dir, stem string) ([]string, error) {
	if stem == "" {
		stem = Slug(export.Playlist.Name)
	}
	base := filepath.Join(dir, stem)

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(export, base)
		if err != nil {
			return nil, err
		}
		return []string{res.TracksFile, res.MetadataFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(export, base)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(export, base+"_tracks.txt")
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatJSON:
		file, err := WriteJSONExport(export, base+".json")
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, format)
	}
}

// ManifestEntry records the outcome of exporting one playlist.
type ManifestEntry struct {
	Playlist models.Playlist `json:"playlist"`
	Tracks   int             `json:"tracks"`
	Files    []string        `json:"files,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	RunID      string          `json:"run_id"`
	Format     Format          `json:"format"`
	OutputDir  string          `json:"output_dir"`
	CreatedAt  time.Time       `json:"created_at"`
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Entries    []ManifestEntry `json:"entries"`
}

// WriteManifest writes the manifest as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
