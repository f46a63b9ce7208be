// Package models defines domain entities and persistence interfaces for the Moodify service.
//
// The package contains two categories of types:
//
// 1. Credential state: [CredentialRecord] is the durable per-user standing
// with Spotify (access token, refresh token, absolute expiry), keyed by the
// Spotify-assigned user id.
//
// 2. Persistent entities: [PlaylistRecord] is a generated playlist with its
// mood selection, seed metadata, and Spotify identifiers, implementing the
// [Model] interface for ID generation, timestamps, validation, and soft
// delete support.
//
// The [Repository] interface defines standard CRUD operations for database access.
package models
