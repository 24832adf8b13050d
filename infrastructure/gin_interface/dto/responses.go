package dto

import (
	"time"

	"github.com/zullum/comfyui-wan/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type GenerateResponse struct {
	JobID    string `json:"job_id"`
	PromptID string `json:"prompt_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type JobStatusResponse struct {
	JobID       string                         `json:"job_id"`
	PromptID    string                         `json:"prompt_id"`
	Status      string                         `json:"status"`
	CreatedAt   time.Time                      `json:"created_at"`
	CompletedAt *time.Time                     `json:"completed_at,omitempty"`
	Outputs     map[string][]domain.OutputFile `json:"outputs,omitempty"`
	Error       string                         `json:"error,omitempty"`
}

type JobListResponse struct {
	Jobs  []JobStatusResponse `json:"jobs"`
	Total int                 `json:"total"`
}

type VideoMetadata struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	NumFrames int     `json:"num_frames"`
	FrameRate int     `json:"frame_rate"`
	Duration  float64 `json:"duration"`
}

type DownloadResponse struct {
	JobID       string         `json:"job_id"`
	Filename    string         `json:"filename"`
	VideoURL    string         `json:"video_url,omitempty"`
	VideoBase64 string         `json:"video_base64,omitempty"`
	Metadata    *VideoMetadata `json:"metadata,omitempty"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	ComfyUIStatus   string `json:"comfyui_status"`
	WorkflowsLoaded int    `json:"workflows_loaded"`
	JobsCount       int    `json:"jobs_count"`
}

type WorkflowListResponse struct {
	Workflows []string `json:"workflows"`
	Count     int      `json:"count"`
}

type WorkflowNodeInfo struct {
	Type          string              `json:"type"`
	Title         string              `json:"title"`
	WidgetsValues domain.WidgetValues `json:"widgets_values"`
	Inputs        []string            `json:"inputs"`
	Outputs       []string            `json:"outputs"`
}

type WorkflowInfoResponse struct {
	WorkflowName string                      `json:"workflow_name"`
	TotalNodes   int                         `json:"total_nodes"`
	Nodes        map[string]WorkflowNodeInfo `json:"nodes"`
}

func NewJobStatusResponse(job domain.Job) JobStatusResponse {
	return JobStatusResponse{
		JobID:       job.ID,
		PromptID:    job.BackendHandle,
		Status:      string(job.State),
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
		Outputs:     job.Outputs,
		Error:       job.Error,
	}
}

func NewVideoMetadata(params domain.GenerationParams) *VideoMetadata {
	metadata := &VideoMetadata{
		Width:     params.Width,
		Height:    params.Height,
		NumFrames: params.NumFrames,
		FrameRate: params.FinalFrameRate,
	}
	if params.FinalFrameRate > 0 {
		metadata.Duration = float64(params.NumFrames) / float64(params.FinalFrameRate)
	}
	return metadata
}
