package driven

import (
	"context"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// PaperWatcher reports changes to the papers directory.
type PaperWatcher interface {
	// Watch starts watching dir and its subdirectories.
	// The returned channel is closed when ctx is cancelled or the watcher is closed.
	Watch(ctx context.Context, dir string) (<-chan domain.PaperChange, error)

	// Close stops every active watch. Safe to call more than once.
	Close() error
}
