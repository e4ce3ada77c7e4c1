// Package store provides SQLite-backed durable storage for game
// journals.
//
// The journal is an append-only log: one row per accepted action, keyed
// by (game_id, seq). Every row carries the fingerprint of the state the
// action produced, so a journal can be replayed against the engine and
// verified step by step.
//
// All ordering uses seq (a logical clock), never timestamps, so replay
// is deterministic regardless of wall time.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
