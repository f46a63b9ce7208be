package tasks

import (
	"fmt"

	"github.com/desertthunder/moodify/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or web layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced consumers
}

// Operation phase enumeration
type Phase int

const (
	ComposeFilters Phase = iota
	FetchSeeds
	Recommend
	CreatePlaylist
	AddTracks
	Persist
	ExportPlaylists
)

func (p Phase) String() string {
	switch p {
	case ComposeFilters:
		return "compose_filters"
	case FetchSeeds:
		return "fetch_seeds"
	case Recommend:
		return "recommend"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case Persist:
		return "persist"
	case ExportPlaylists:
		return "export_playlists"
	default:
		return ""
	}
}

func composeFiltersUpdate(moodNames []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComposeFilters,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Composing filters for %d mood(s)...", len(moodNames)),
		Data:    moodNames,
	}
}

func fetchSeedsUpdate(limit int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSeeds,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching up to %d seed tracks from your library...", limit),
	}
}

func recommendUpdate(seedCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Recommend,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Requesting recommendations for %d seeds...", seedCount),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q on Spotify...", name),
	}
}

func playlistCreatedUpdate(pl *services.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func addTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks...", count),
	}
}

func persistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Persist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %q to the local library...", name),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
