// Package sqlite persists the embedding index in a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements driven.IndexStore:
//
//   - Build writes every record to a temporary file, then renames it over the
//     previous index, so readers never observe a partial build.
//   - Load reads the records back, in insertion order, into an in-memory
//     cosine index.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the index is stored at data/index/index.db relative to the
// working directory.
package sqlite
