// Package database provides the SQLite-backed media catalog for medialist.
//
// It handles storage and retrieval of:
//   - Library items, one row per canonical file path
//   - Per-root scan state (last scan time, files found, error count)
//
// Inserts are idempotent: UpsertIfAbsent leaves an existing row untouched
// and reports whether a new row was written, so rescanning a library never
// duplicates entries. Every write is its own statement; a scan interrupted
// part way leaves a valid, partially populated catalog.
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package database
