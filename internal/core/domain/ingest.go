package domain

import "time"

// IngestReport summarises a completed ingestion run.
type IngestReport struct {
	// Documents is the number of PDF files loaded.
	Documents int

	// Pages is the total number of pages with extracted text.
	Pages int

	// Chunks is the number of chunks embedded and indexed.
	Chunks int

	// Index describes the index that was written.
	Index IndexInfo

	// Duration is the wall time of the run.
	Duration time.Duration
}

// DefaultWatchDebounce is how long a burst of paper changes must settle
// before the index is rebuilt.
const DefaultWatchDebounce = 2 * time.Second

// ChangeType classifies a change to the papers directory.
type ChangeType string

// Change types reported by a paper watcher.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// PaperChange is a single file event under the papers directory.
// Path is a PDF or a metadata sidecar.
type PaperChange struct {
	Path string
	Type ChangeType
}
