package formatter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/moodify/internal/models"
)

func sampleRecord() *models.PlaylistRecord {
	record := models.NewPlaylistRecord(1, "spotify-user", "Happy + Party Mix", []string{"happy", "party"}, []string{"track1", "track2"})
	record.SetID("pl-1")
	record.SetSpotify("sp-1", "spotify:playlist:sp-1", "https://open.spotify.com/playlist/sp-1")
	return record
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleRecord())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus two tracks, got %d rows", len(rows))
	}
	if rows[0][0] != "Position" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != "track1" || rows[1][2] != "spotify:track:track1" {
		t.Errorf("unexpected first track row: %v", rows[1])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(sampleRecord())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := string(data)
	for _, want := range []string{
		"# Happy + Party Mix",
		"**Moods**: happy, party",
		"**Tracks**: 2",
		"https://open.spotify.com/track/track1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(sampleRecord())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Playlist: Happy + Party Mix") {
		t.Error("text export missing playlist name")
	}
	if !strings.Contains(out, "2. spotify:track:track2") {
		t.Error("text export missing numbered track lines")
	}
}

func TestWriteExports(t *testing.T) {
	t.Run("CSV Pair", func(t *testing.T) {
		dir := t.TempDir()
		result, err := WriteCSVExport(sampleRecord(), filepath.Join(dir, "pl-1"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, file := range []string{result.TracksFile, result.MetadataFile} {
			if _, err := os.Stat(file); err != nil {
				t.Errorf("expected file %s: %v", file, err)
			}
		}
	})

	t.Run("JSON Round Trip", func(t *testing.T) {
		dir := t.TempDir()
		path, err := WriteJSONExport(sampleRecord(), filepath.Join(dir, "pl-1.json"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		var view map[string]any
		if err := json.Unmarshal(data, &view); err != nil {
			t.Fatalf("export is not valid JSON: %v", err)
		}
		if view["name"] != "Happy + Party Mix" {
			t.Errorf("unexpected name %v", view["name"])
		}
		if view["spotify_id"] != "sp-1" {
			t.Errorf("unexpected spotify id %v", view["spotify_id"])
		}
	})
}
