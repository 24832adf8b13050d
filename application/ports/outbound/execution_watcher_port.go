package outbound

import "context"

// ExecutionWatcherPort observes the backend's event stream for one handle.
// WaitForCompletion blocks until the backend signals that execution for the
// prompt finished, or returns an error when the stream cannot be read; the
// caller falls back to polling in that case.
type ExecutionWatcherPort interface {
	WaitForCompletion(ctx context.Context, promptID string) error
}
