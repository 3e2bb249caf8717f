package driven

import (
	"context"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// DocumentLoader reads source documents from a corpus location.
type DocumentLoader interface {
	// Load returns every document found under dir, in a stable order.
	// A missing dir is reported as an error wrapping fs.ErrNotExist.
	Load(ctx context.Context, dir string) ([]domain.Document, error)
}
