// Package tui provides an interactive terminal chat over the indexed papers.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Pipeline answers questions and holds the conversation.
	Pipeline driving.Pipeline
}

// NewPorts creates a new Ports aggregate.
func NewPorts(pipeline driving.Pipeline) *Ports {
	return &Ports{Pipeline: pipeline}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
