package inbound

import (
	"context"

	"github.com/zullum/comfyui-wan/domain"
)

// ResultPayload carries a completed job's video, either as a hosted URL
// (bucket storage configured) or as an inline base64 payload.
type ResultPayload struct {
	JobID       string
	Filename    string
	URL         string
	VideoBase64 string
}

type VideoGeneratorPort interface {
	StartGeneration(ctx context.Context, params domain.GenerationParams, templateName string) (domain.Job, error)
	GetJob(id string) (domain.Job, bool)
	ListJobs() []domain.Job
	FetchResult(ctx context.Context, jobID string) (*ResultPayload, error)
}
