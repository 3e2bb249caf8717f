// Package services implements the driving port interfaces.
// Services hold the question-answering logic (retrieval, synthesis,
// citations and conversation memory) and the ingestion workflow, and
// orchestrate calls to driven ports (adapters).
package services
