// Package store provides SQLite-backed durable storage for campaigns.
//
// A campaign is persisted as:
//   - Snapshots: compressed canonical documents with their digest and
//     dice state
//   - Commands: an append-only journal of accepted commands
//
// # Ordering
//
// Snapshots and commands share one logical clock per campaign: the journal
// seq. Snapshot N reflects the first N commands. All queries order by seq,
// never by wall time, so reading a campaign back is deterministic.
//
// # Encoding
//
// Documents are rendered as canonical JSON (state.MarshalCanonical),
// compressed with zstd, and verified against the stored SHA-256 digest on
// every load.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
