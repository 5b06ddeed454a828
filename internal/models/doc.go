// Package models defines domain entities for the rewind listening-report service.
//
// The package contains two categories of types:
//
// 1. Upstream snapshots: immutable views of SoundCloud data decoded at the API boundary
//   - [Track] : track metadata with play/like/repost counters and genre tags
//   - [User] : user profile with follower counters
//   - [Playlist] : playlist metadata
//
// Snapshots live only for the duration of a report computation and are never persisted.
//
// 2. Persistent entities: database-backed records with full lifecycle management
//   - [Activity] : append-only first-party play/like/repost/share events
//
// [Activity] implements the [Model] interface providing ID generation, timestamps, and validation.
// Reports ([Report] and its sections) are derived values recomputed from scratch on every request.
package models
