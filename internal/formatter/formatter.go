// package formatter exports generated playlist records to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

// CSVExportResult contains the paths produced by a CSV export.
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// playlistView is the serializable shape of a playlist record.
type playlistView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	UserID      string    `json:"user_id"`
	SpotifyID   string    `json:"spotify_id,omitempty"`
	URI         string    `json:"uri,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	Moods       []string  `json:"moods"`
	TrackIDs    []string  `json:"track_ids"`
	TrackCount  int       `json:"track_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func viewOf(record *models.PlaylistRecord) playlistView {
	return playlistView{
		ID:          record.ID(),
		Name:        record.Name(),
		UserID:      record.UserID(),
		SpotifyID:   record.SpotifyID(),
		URI:         record.URI(),
		ExternalURL: record.ExternalURL(),
		Moods:       record.Moods(),
		TrackIDs:    record.TrackIDs(),
		TrackCount:  record.TrackCount(),
		CreatedAt:   record.CreatedAt(),
	}
}

// ExportToCSV converts a playlist record to CSV with columns: Position, Track ID, URI
func ExportToCSV(record *models.PlaylistRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Track ID", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, id := range record.TrackIDs() {
		row := []string{
			strconv.Itoa(i + 1),
			id,
			fmt.Sprintf("spotify:track:%s", id),
		}
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

// ExportMetadataToCSV converts the record's metadata to key/value CSV rows.
func ExportMetadataToCSV(record *models.PlaylistRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	rows := [][]string{
		{"Name", record.Name()},
		{"Owner", record.UserID()},
		{"Spotify ID", record.SpotifyID()},
		{"External URL", record.ExternalURL()},
		{"Moods", strings.Join(record.Moods(), "; ")},
		{"Tracks", strconv.Itoa(record.TrackCount())},
		{"Created", record.CreatedAt().Format(time.RFC3339)},
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

// ExportToMarkdown converts a playlist record to Markdown
func ExportToMarkdown(record *models.PlaylistRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", record.Name()))

	if record.ExternalURL() != "" {
		buf.WriteString(fmt.Sprintf("[Open on Spotify](%s)\n\n", record.ExternalURL()))
	}

	buf.WriteString(fmt.Sprintf("**Moods**: %s\n", strings.Join(record.Moods(), ", ")))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", record.TrackCount()))
	buf.WriteString(fmt.Sprintf("**Created**: %s\n\n", record.CreatedAt().Format("2006-01-02 15:04")))

	buf.WriteString("## Tracks\n\n")
	for i, id := range record.TrackIDs() {
		buf.WriteString(fmt.Sprintf("%d. [%s](https://open.spotify.com/track/%s)\n", i+1, id, id))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist record to plain text
func ExportToText(record *models.PlaylistRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", record.Name()))
	buf.WriteString(fmt.Sprintf("Moods: %s\n", strings.Join(record.Moods(), ", ")))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", record.TrackCount()))

	for i, id := range record.TrackIDs() {
		buf.WriteString(fmt.Sprintf("%d. spotify:track:%s\n", i+1, id))
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes tracks and metadata CSV files using basePath as the
// filename prefix.
func WriteCSVExport(record *models.PlaylistRecord, basePath string) (*CSVExportResult, error) {
	tracksData, err := ExportToCSV(record)
	if err != nil {
		return nil, err
	}
	metaData, err := ExportMetadataToCSV(record)
	if err != nil {
		return nil, err
	}

	result := &CSVExportResult{
		TracksFile:   fmt.Sprintf("%s_tracks.csv", basePath),
		MetadataFile: fmt.Sprintf("%s_metadata.csv", basePath),
	}
	if err := os.WriteFile(result.TracksFile, tracksData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write tracks CSV: %w", err)
	}
	if err := os.WriteFile(result.MetadataFile, metaData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata CSV: %w", err)
	}
	return result, nil
}

// WriteMarkdownExport writes a Markdown file for the record.
func WriteMarkdownExport(record *models.PlaylistRecord, path string) (string, error) {
	data, err := ExportToMarkdown(record)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write markdown file: %w", err)
	}
	return path, nil
}

// WriteTextExport writes a plain text file for the record.
func WriteTextExport(record *models.PlaylistRecord, path string) (string, error) {
	data, err := ExportToText(record)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes the record as indented JSON.
func WriteJSONExport(record *models.PlaylistRecord, path string) (string, error) {
	data, err := shared.MarshalJSON(viewOf(record), true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// WriteExportManifest writes the run summary as indented JSON.
func WriteExportManifest(manifest any, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
