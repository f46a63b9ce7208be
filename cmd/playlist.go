package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/tasks"
	"github.com/urfave/cli/v3"
)

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Generate, list, and export mood playlists",
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Generate a Spotify playlist from one or more moods",
				ArgsUsage: "<mood> [mood...]",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "moods", Min: 0, Max: -1},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Playlist name (default derived from moods)",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
					&cli.IntFlag{
						Name:    "seeds",
						Aliases: []string{"s"},
						Usage:   "Max library tracks used as seeds",
						Value:   tasks.DefaultSeedLimit,
					},
				},
				Action: r.PlaylistGenerate,
			},
			{
				Name:  "list",
				Usage: "List locally recorded playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Include playlists owned by other users",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "export",
				Usage: "Export recorded playlists to files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent export workers",
						Value:   4,
					},
					&cli.StringSliceFlag{
						Name:    "mood",
						Aliases: []string{"m"},
						Usage:   "Only export playlists generated from this mood (repeatable)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// PlaylistGenerate runs the full mood mix pipeline and prints progress.
func (r *Runner) PlaylistGenerate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	moodNames := cmd.StringArgs("moods")
	if len(moodNames) == 0 {
		return fmt.Errorf("%w: at least one mood is required, see 'moodify moods list'", shared.ErrMissingArgument)
	}

	r.writePlain("Generating mood mix...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.ComposeFilters:
				r.writePlain("🎚  %s\n", update.Message)
			case tasks.FetchSeeds:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Recommend:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.AddTracks:
				r.writePlain("➕ %s\n", update.Message)
			case tasks.Persist:
				r.writePlain("💾 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Generate(ctx, progressCh, r.cliSession(), tasks.GenerateOpts{
		Moods:       moodNames,
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		SeedLimit:   int(cmd.Int("seeds")),
	})
	close(progressCh)

	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Mix Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Playlist: %s\n", result.Playlist.Name)
	r.writePlain("Tracks: %d (from %d library seeds)\n", result.TrackCount, result.SeedCount)
	if result.Playlist.ExternalURL != "" {
		r.writePlain("Open: %s\n", result.Playlist.ExternalURL)
	}
	if result.Record == nil {
		r.writePlain("⚠ Local record was not saved; export will not include this playlist\n")
	}

	return nil
}

// PlaylistList prints the locally recorded playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if r.playlists == nil {
		return fmt.Errorf("%w: database not initialized, run 'moodify setup' first", shared.ErrServiceUnavailable)
	}

	criteria := map[string]any{}
	if !cmd.Bool("all") {
		if userID := r.config.Credentials.Spotify.UserID; userID != "" {
			criteria["user_id"] = userID
		}
	}

	records, err := r.playlists.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, map[string]any{
				"id":           rec.ID(),
				"name":         rec.Name(),
				"spotify_id":   rec.SpotifyID(),
				"external_url": rec.ExternalURL(),
				"moods":        rec.Moods(),
				"track_count":  rec.TrackCount(),
				"created_at":   rec.CreatedAt(),
			})
		}
		return r.writeJSON(map[string]any{"playlists": items, "count": len(items)}, true)
	}

	if len(records) == 0 {
		r.writePlain("No playlists recorded yet. Run 'moodify playlist generate <mood>' to create one.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(records)))
	for i, rec := range records {
		r.writePlain("%d. %s\n", i+1, rec.Name())
		r.writePlain("   Moods: %v  Tracks: %d  Created: %s\n",
			rec.Moods(), rec.TrackCount(), rec.CreatedAt().Format("2006-01-02"))
		if rec.ExternalURL() != "" {
			r.writePlain("   %s\n", rec.ExternalURL())
		}
	}
	return nil
}

// PlaylistExport writes recorded playlists to disk in the chosen format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	format := cmd.String("format")
	switch format {
	case "json", "csv", "markdown", "txt":
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("📦 %s\n", update.Message)
		}
	}()

	result, err := r.engine.Export(ctx, progressCh, tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		Moods:      cmd.StringSlice("mood"),
		UserID:     r.config.Credentials.Spotify.UserID,
	})
	close(progressCh)

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if result.TotalPlaylists == 0 {
		r.writePlain("No playlists matched the export criteria.\n")
		return nil
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Export Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Exported: %d/%d playlists\n", result.SuccessfulExports, result.TotalPlaylists)
	if result.FailedExports > 0 {
		r.writePlain("Failed: %d\n", result.FailedExports)
	}
	r.writePlain("Output: %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return nil
}
