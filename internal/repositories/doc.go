// Package repositories implements SQLite persistence for the rewind service.
//
// Two stores back the report engine:
//   - [CredentialRepository] : the single stored token pair, replaced wholesale on refresh
//   - [ActivityRepository] : the append-only first-party activity log and its aggregate queries
//
// The activity log is the only source of truth for in-app listening statistics,
// since the upstream API exposes no listening history. Activity rows carry
// atomic sequence numbers (see [NextSequence]) for stable human-readable
// ordering independent of UUIDs and timestamps.
package repositories
