package outbound

import (
	"context"

	"github.com/zullum/comfyui-wan/domain"
)

// HistoryEntry is the backend's execution-history record for one prompt.
// Found is false while the backend has not yet registered the handle.
// Completed marks terminal success even when the execution produced no
// retrievable files; Outputs lists the files when there are any. Failed
// plus Messages report an explicit execution error.
type HistoryEntry struct {
	Found     bool
	Completed bool
	Outputs   map[string][]domain.OutputFile
	Failed    bool
	Messages  []string
}

type RenderBackendPort interface {
	// SubmitPrompt queues an execution graph and returns the backend's
	// prompt id. A rejected payload surfaces as *domain.SubmissionRejectedError.
	SubmitPrompt(ctx context.Context, graph domain.ExecutionGraph, clientID string) (string, error)
	GetHistory(ctx context.Context, promptID string) (*HistoryEntry, error)
	FetchOutput(ctx context.Context, file domain.OutputFile) ([]byte, error)
	Ping(ctx context.Context) error
}
