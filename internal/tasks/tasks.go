// package tasks implements mood playlist generation on top of the auth,
// moods, and services layers.
//
// The core abstraction is MixEngine, which orchestrates token acquisition,
// seed collection, filter composition, recommendation, and playlist creation.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/web layers.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/moods"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
)

// DefaultSeedLimit is how many saved tracks seed the recommender when the
// caller doesn't say otherwise.
const DefaultSeedLimit = 20

// TokenSource yields access tokens that are valid for immediate use.
// Satisfied by [auth.Manager].
type TokenSource interface {
	GetValidAccessToken(ctx context.Context, sess *auth.Session) (string, error)
}

// PlaylistStore persists generated playlist records locally.
// Satisfied by repositories.PlaylistRepository.
type PlaylistStore interface {
	Create(record *models.PlaylistRecord) error
	List(criteria map[string]any) ([]*models.PlaylistRecord, error)
}

// GenerateOpts configures a single mix generation.
type GenerateOpts struct {
	Moods       []string // Mood names to blend; unknown names are ignored
	Name        string   // Playlist name (default derived from moods)
	Description string   // Playlist description (default derived from moods)
	SeedLimit   int      // Max seed tracks from the library (default DefaultSeedLimit)
}

// GenerateResult contains all data from a full generation run.
type GenerateResult struct {
	Playlist   *services.Playlist     // Created Spotify playlist
	Record     *models.PlaylistRecord // Persisted local record (nil when persistence failed)
	Filters    moods.Filters          // Composite filters sent to the recommender
	SeedCount  int                    // Seed tracks fetched from the library
	TrackCount int                    // Tracks added to the playlist
}

// MixEngine defines mood playlist operations.
type MixEngine interface {
	// Generate runs the full pipeline: valid token, library seeds, composed
	// filters, recommendations, Spotify playlist, local record.
	Generate(ctx context.Context, progress chan<- ProgressUpdate, sess *auth.Session, opts GenerateOpts) (*GenerateResult, error)

	// Export writes previously generated playlists to files on disk.
	Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error)
}

// PlaylistEngine implements MixEngine.
type PlaylistEngine struct {
	tokens      TokenSource
	music       services.MusicService
	recommender services.Recommender
	playlists   PlaylistStore
	logger      *log.Logger
}

// NewPlaylistEngine creates a PlaylistEngine with the provided dependencies.
// The playlist store may be nil, in which case generated mixes are not
// recorded locally.
func NewPlaylistEngine(tokens TokenSource, music services.MusicService, recommender services.Recommender, playlists PlaylistStore, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{
		tokens:      tokens,
		music:       music,
		recommender: recommender,
		playlists:   playlists,
		logger:      logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Generate runs the full mood mix pipeline against the user's Spotify library.
func (e *PlaylistEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate, sess *auth.Session, opts GenerateOpts) (*GenerateResult, error) {
	if e.music == nil || e.recommender == nil || e.tokens == nil {
		return nil, fmt.Errorf("%w: engine not fully initialized", shared.ErrServiceUnavailable)
	}
	if len(opts.Moods) == 0 {
		return nil, fmt.Errorf("%w: at least one mood is required", shared.ErrInvalidArgument)
	}
	if opts.SeedLimit <= 0 {
		opts.SeedLimit = DefaultSeedLimit
	}
	if opts.Name == "" {
		opts.Name = mixName(opts.Moods)
	}
	if opts.Description == "" {
		opts.Description = fmt.Sprintf("Generated from moods: %s", strings.Join(opts.Moods, ", "))
	}

	token, err := e.tokens.GetValidAccessToken(ctx, sess)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, composeFiltersUpdate(opts.Moods))
	filters := moods.Compose(opts.Moods)

	result := &GenerateResult{Filters: filters}

	e.sendProgress(progress, fetchSeedsUpdate(opts.SeedLimit))
	seeds, err := e.music.SeedTrackIDs(ctx, token, opts.SeedLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch seed tracks: %v", shared.ErrAPIRequest, err)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: no saved tracks to seed recommendations", shared.ErrInvalidArgument)
	}
	result.SeedCount = len(seeds)

	e.sendProgress(progress, recommendUpdate(len(seeds)))
	trackIDs, err := e.recommender.Recommend(ctx, seeds, filters)
	if err != nil {
		return nil, err
	}
	if len(trackIDs) == 0 {
		return result, fmt.Errorf("recommender returned no tracks for moods %s", strings.Join(opts.Moods, ", "))
	}

	userID := sess.UserID()
	if userID == "" {
		profile, err := e.music.Profile(ctx, token)
		if err != nil {
			return result, fmt.Errorf("%w: failed to resolve user profile: %v", shared.ErrAPIRequest, err)
		}
		userID = profile.ID
	}

	e.sendProgress(progress, createPlaylistUpdate(opts.Name))
	playlist, err := e.music.CreatePlaylist(ctx, token, userID, opts.Name, opts.Description)
	if err != nil {
		return result, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}
	result.Playlist = playlist
	e.sendProgress(progress, playlistCreatedUpdate(playlist))

	e.sendProgress(progress, addTracksUpdate(len(trackIDs)))
	if err := e.music.AddTracks(ctx, token, playlist.ID, trackIDs); err != nil {
		return result, fmt.Errorf("%w: failed to add tracks: %v", shared.ErrAPIRequest, err)
	}
	result.TrackCount = len(trackIDs)

	if e.playlists != nil {
		e.sendProgress(progress, persistUpdate(opts.Name))
		record := models.NewPlaylistRecord(0, userID, opts.Name, normalizedMoods(opts.Moods), trackIDs)
		record.SetSpotify(playlist.ID, playlist.URI, playlist.ExternalURL)

		// The Spotify playlist already exists; a failed local write costs
		// only history, not the mix.
		if err := e.playlists.Create(record); err != nil {
			e.logger.Warn("failed to persist playlist record", "playlist", playlist.ID, "error", err)
		} else {
			result.Record = record
		}
	}

	return result, nil
}

// mixName derives a playlist name like "Happy + Party Mix" from mood names.
func mixName(names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(name[:1])+strings.ToLower(name[1:]))
	}
	if len(parts) == 0 {
		return "Moodify Mix"
	}
	return strings.Join(parts, " + ") + " Mix"
}

// normalizedMoods lowercases and dedupes mood names for the stored record,
// matching how the compositor reads them.
func normalizedMoods(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
