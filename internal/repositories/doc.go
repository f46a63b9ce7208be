// Package repositories implements SQLite persistence for all domain entities.
//
// Key implementations:
//   - [CredentialRepository] : durable credential records keyed by the Spotify user id,
//     with whole-record set and partial refresh updates, atomic per document
//   - [PlaylistRepository] : generated playlist history with soft deletes and
//     sequence numbers for stable, human-readable ordering
//
// The [NextSequence] function atomically increments per-table sequence
// counters in dedicated sequence tables.
package repositories
