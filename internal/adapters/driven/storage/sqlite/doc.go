// Package sqlite exports pipeline runs to a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Each run is written in a single transaction across three tables:
//
//   - runs: when the run happened and which embedder and seed it used
//   - papers: the metadata snapshot the run embedded
//   - coordinates: raw and normalised positions per algorithm
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// Reruns append; nothing is overwritten.
package sqlite
