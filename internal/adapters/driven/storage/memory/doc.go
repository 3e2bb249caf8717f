// Package memory provides in-memory implementations of driven ports:
// a brute-force cosine VectorIndex that serves every query, and a
// ConfigStore for tests and ephemeral sessions.
package memory
