package chat

import "errors"

// ErrNoPipeline indicates that no pipeline was provided.
var ErrNoPipeline = errors.New("pipeline is required")
