package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for paperchat resources.
	uriScheme = "paperchat://"

	indexURI      = uriScheme + "index"
	transcriptURI = uriScheme + "transcript"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         indexURI,
		Name:        "index",
		Description: "Metadata of the loaded paper index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	s.server.AddResource(&mcp.Resource{
		URI:         transcriptURI,
		Name:        "transcript",
		Description: "Questions and answers of the current conversation",
		MIMEType:    "application/json",
	}, s.handleTranscriptResource)
}

// indexInfo is the JSON shape of the index resource.
type indexInfo struct {
	Path           string `json:"path"`
	EmbeddingModel string `json:"embedding_model"`
	Dimensions     int    `json:"dimensions"`
	Records        int    `json:"records"`
	Documents      int    `json:"documents"`
	Fingerprint    string `json:"fingerprint,omitempty"`
	BuiltAt        string `json:"built_at,omitempty"`
}

// handleIndexResource describes the loaded index.
func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := s.ports.Pipeline.Info()

	out := indexInfo{
		Path:           info.Path,
		EmbeddingModel: info.EmbeddingModel,
		Dimensions:     info.Dimensions,
		Records:        info.Records,
		Documents:      info.Documents,
		Fingerprint:    info.Fingerprint,
	}
	if !info.BuiltAt.IsZero() {
		out.BuiltAt = info.BuiltAt.UTC().Format(time.RFC3339)
	}

	return jsonResource(req.Params.URI, out)
}

// handleTranscriptResource returns the conversation so far.
func (s *Server) handleTranscriptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	transcript := s.ports.Pipeline.Transcript()
	if transcript == nil {
		transcript = []domain.Message{}
	}
	return jsonResource(req.Params.URI, transcript)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
