// Package mcp provides an MCP (Model Context Protocol) server adapter for paperchat.
// It lets AI assistants ask questions about the indexed papers.
package mcp

import "errors"

// ErrMissingPipeline is returned when the pipeline is not provided.
var ErrMissingPipeline = errors.New("mcp: pipeline is required")
