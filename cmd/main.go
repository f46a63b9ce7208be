package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/repositories"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/tasks"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" {
		if svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     config.Credentials.Spotify.ClientID,
			"client_secret": config.Credentials.Spotify.ClientSecret,
			"redirect_uri":  config.Credentials.Spotify.RedirectURI,
		}); err == nil {
			spotifyService = svc
		} else {
			logger.Warnf("spotify service unavailable: %v", err)
		}
	}

	var recommenderService *services.RecommenderService
	if config.Recommender.BaseURL != "" {
		recommenderService = services.NewRecommenderService(config.Recommender.BaseURL, nil)
	}

	var db *sql.DB
	var manager *auth.Manager
	var playlists tasks.PlaylistStore
	if _, err := os.Stat(config.Database.Path); err == nil {
		if opened, err := shared.NewDatabase(config.Database.Path); err == nil {
			db = opened
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			playlists = repositories.NewPlaylistRepository(db)
			if spotifyService != nil {
				manager = auth.NewManager(auth.ManagerOpts{
					Authorizer:  spotifyService,
					Music:       spotifyService,
					Store:       repositories.NewCredentialRepository(db),
					Logger:      logger,
					RefreshSkew: config.Session.RefreshSkew(),
				})
			}
		} else {
			logger.Warnf("database unavailable: %v", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  configPath,
		Spotify:     spotifyService,
		Recommender: recommenderService,
		DB:          db,
		Manager:     manager,
		Playlists:   playlists,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:     "moodify",
		Usage:    "Generate mood-based Spotify playlists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
