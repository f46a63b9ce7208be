package models

import (
	"fmt"
	"time"
)

// PlaylistRecord is a locally persisted record of one generated playlist.
type PlaylistRecord struct {
	id          string
	sequence    int
	userID      string
	name        string
	spotifyID   string
	uri         string
	externalURL string
	moods       []string
	trackIDs    []string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewPlaylistRecord creates a playlist record for the given owner and mood selection.
func NewPlaylistRecord(sequence int, userID, name string, moods, trackIDs []string) *PlaylistRecord {
	now := time.Now()
	return &PlaylistRecord{
		sequence:  sequence,
		userID:    userID,
		name:      name,
		moods:     moods,
		trackIDs:  trackIDs,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PlaylistRecord) ID() string            { return p.id }
func (p *PlaylistRecord) Sequence() int         { return p.sequence }
func (p *PlaylistRecord) UserID() string        { return p.userID }
func (p *PlaylistRecord) Name() string          { return p.name }
func (p *PlaylistRecord) SpotifyID() string     { return p.spotifyID }
func (p *PlaylistRecord) URI() string           { return p.uri }
func (p *PlaylistRecord) ExternalURL() string   { return p.externalURL }
func (p *PlaylistRecord) Moods() []string       { return p.moods }
func (p *PlaylistRecord) TrackIDs() []string    { return p.trackIDs }
func (p *PlaylistRecord) TrackCount() int       { return len(p.trackIDs) }
func (p *PlaylistRecord) CreatedAt() time.Time  { return p.createdAt }
func (p *PlaylistRecord) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PlaylistRecord) DeletedAt() *time.Time { return p.deletedAt }

func (p *PlaylistRecord) SetID(id string) { p.id = id }
func (p *PlaylistRecord) SetSequence(seq int) { p.sequence = seq }
func (p *PlaylistRecord) SetUpdatedAt(t time.Time) { p.updatedAt = t }
func (p *PlaylistRecord) SetCreatedAt(t time.Time) { p.createdAt = t }
func (p *PlaylistRecord) SetDeletedAt(t *time.Time) { p.deletedAt = t }
func (p *PlaylistRecord) SetTrackIDs(ids []string) { p.trackIDs = ids }
func (p *PlaylistRecord) SetMoods(moods []string) { p.moods = moods }

// SetSpotify records the identifiers returned by Spotify once the playlist is materialized.
func (p *PlaylistRecord) SetSpotify(spotifyID, uri, externalURL string) {
	p.spotifyID = spotifyID
	p.uri = uri
	p.externalURL = externalURL
}

// Validate checks required playlist fields.
func (p *PlaylistRecord) Validate() error {
	if p.userID == "" {
		return fmt.Errorf("playlist record missing user id")
	}
	if p.name == "" {
		return fmt.Errorf("playlist record missing name")
	}
	return nil
}
