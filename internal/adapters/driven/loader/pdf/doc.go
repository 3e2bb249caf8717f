// Package pdf loads a directory of PDF papers into domain documents.
//
// Text is extracted page by page with github.com/ledongthuc/pdf. Extraction
// quality depends on the PDF; scanned papers without a text layer yield
// empty pages, which the chunker skips.
//
// # Sidecar Metadata
//
// Bibliographic details can be supplied next to a paper in a file with the
// same stem: uhde-2018.pdf may be accompanied by uhde-2018.toml,
// uhde-2018.yaml or uhde-2018.yml with any of the keys title, authors,
// journal, year, volume, pages and doi.
package pdf
