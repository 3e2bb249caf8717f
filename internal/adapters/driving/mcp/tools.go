package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// defaultRetrieveK is used when the retrieve tool is called without k.
const defaultRetrieveK = domain.DefaultTopK

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed papers"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
	Degraded  bool     `json:"degraded,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to match against indexed passages"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is a single retrieved passage.
type PassageOutput struct {
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
	Page    int     `json:"page,omitempty"`
	Title   string  `json:"title,omitempty"`
	Content string  `json:"content"`
}

// ResetInput is the input schema for the reset tool.
type ResetInput struct{}

// ResetOutput is the output schema for the reset tool.
type ResetOutput struct {
	Forgotten int `json:"forgotten_turns"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed research papers, with citations. Follow-up questions share the conversation.",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the passages most similar to a query without generating an answer",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset",
		Description: "Forget the conversation so the next question starts fresh",
	}, s.handleReset)
}

// handleAsk handles the ask tool invocation.
// Failures are reported in the answer text, never as a tool error.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result := s.ports.Pipeline.Ask(ctx, input.Question)
	return nil, AskOutput{
		Answer:    result.Answer,
		Citations: result.Citations,
		Degraded:  result.Degraded(),
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = defaultRetrieveK
	}

	set, err := s.ports.Pipeline.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Passages: make([]PassageOutput, len(set)),
		Count:    len(set),
	}
	for i, rc := range set {
		md := rc.Chunk.Metadata
		output.Passages[i] = PassageOutput{
			Rank:    rc.Rank,
			Score:   rc.Score,
			Source:  md.Source,
			Page:    md.Page,
			Title:   md.PaperTitle,
			Content: rc.Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleReset handles the reset tool invocation.
func (s *Server) handleReset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ResetInput,
) (*mcp.CallToolResult, ResetOutput, error) {
	forgotten := len(s.ports.Pipeline.History())
	s.ports.Pipeline.Reset()
	return nil, ResetOutput{Forgotten: forgotten}, nil
}
