package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/moodify/internal/formatter"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

// ExportOpts contains configuration for exporting stored playlists.
type ExportOpts struct {
	Format     string   // Export format: json, csv, markdown, txt
	OutputDir  string   // Base output directory (default: moodify_export_{epoch})
	NumWorkers int      // Concurrent workers (default: 4)
	Moods      []string // Only export playlists generated from these moods (empty = all)
	UserID     string   // Only export playlists owned by this user (empty = all)
}

// PlaylistExportResult describes one exported playlist.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
}

// ExportResult summarizes an export run.
type ExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"manifest_path,omitempty"`
	Results           []PlaylistExportResult `json:"results"`
}

// Export writes stored playlist records to files concurrently with progress
// tracking, then writes a manifest summarizing the run.
func (e *PlaylistEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("moodify_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}

	records, err := e.playlists.List(exportCriteria(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	records = filterByMoods(records, opts.Moods)

	result := &ExportResult{
		TotalPlaylists:  len(records),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(records)),
	}
	if len(records) == 0 {
		return result, nil
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs := make(chan *models.PlaylistRecord, len(records))
	results := make(chan PlaylistExportResult, len(records))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	for i, record := range records {
		e.sendProgress(progress, exportingPlaylistUpdate(i+1, len(records), record.Name()))
		jobs <- record
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(progress, exportCompletedUpdate(completed, len(records), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(progress, exportFailedUpdate(completed, len(records), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func exportCriteria(opts ExportOpts) map[string]any {
	criteria := map[string]any{}
	if opts.UserID != "" {
		criteria["user_id"] = opts.UserID
	}
	return criteria
}

// filterByMoods keeps records whose mood list contains every requested mood.
func filterByMoods(records []*models.PlaylistRecord, wanted []string) []*models.PlaylistRecord {
	if len(wanted) == 0 {
		return records
	}

	out := make([]*models.PlaylistRecord, 0, len(records))
	for _, record := range records {
		have := make(map[string]bool, len(record.Moods()))
		for _, m := range record.Moods() {
			have[m] = true
		}
		all := true
		for _, w := range normalizedMoods(wanted) {
			if !have[w] {
				all = false
				break
			}
		}
		if all {
			out = append(out, record)
		}
	}
	return out
}

// exportWorker drains the jobs channel, formatting one playlist at a time.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan *models.PlaylistRecord,
	results chan<- PlaylistExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for record := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSinglePlaylist(record, opts)
	}
}

// exportSinglePlaylist writes a single playlist in the requested format.
func exportSinglePlaylist(record *models.PlaylistRecord, opts ExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   record.ID(),
		PlaylistName: record.Name(),
		Files:        []string{},
	}

	switch opts.Format {
	case "csv":
		basePath := filepath.Join(opts.OutputDir, record.ID())
		csvRes, err := formatter.WriteCSVExport(record, basePath)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.TracksFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		mdPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.md", record.ID()))
		path, err := formatter.WriteMarkdownExport(record, mdPath)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = []string{path}
		result.Success = true

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_tracks.txt", record.ID()))
		path, err := formatter.WriteTextExport(record, txtPath)
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
		result.Success = true

	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", record.ID()))
		path, err := formatter.WriteJSONExport(record, jsonPath)
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
		result.Success = true
	}
	return result
}
