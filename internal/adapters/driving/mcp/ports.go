package mcp

import (
	"net/http"

	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
)

// Ports aggregates what the MCP server depends on.
type Ports struct {
	// Pipeline answers questions. The MCP session shares one conversation.
	Pipeline driving.Pipeline

	// Metrics, when set, is served on /metrics in HTTP mode.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
