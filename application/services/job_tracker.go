package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/domain"
)

// JobTracker submits execution graphs to the render backend and drives each
// resulting job to a terminal state on its own worker-pool task, so new
// submissions are never blocked by an in-flight job's polling loop.
type JobTracker interface {
	Track(ctx context.Context, graph domain.ExecutionGraph, params domain.GenerationParams, templateName string) (domain.Job, error)
}

type jobTracker struct {
	logger          outbound.LoggerPort
	workerPool      outbound.TaskDispatcher
	backend         outbound.RenderBackendPort
	watcher         outbound.ExecutionWatcherPort
	archiver        outbound.JobArchiverPort
	registry        JobRegistry
	clientID        string
	pollInterval    time.Duration
	requestTimeout  time.Duration
	jobTimeout      time.Duration
	maxPollFailures int
}

// NewJobTracker wires the tracker. watcher and archiver may be nil; without
// a watcher the tracker relies on history polling alone, and without an
// archiver terminal records stay process-local. clientID identifies this
// process to the backend and must match the id the watcher listens under,
// or per-prompt events are routed to nobody.
func NewJobTracker(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher, backend outbound.RenderBackendPort,
	watcher outbound.ExecutionWatcherPort, archiver outbound.JobArchiverPort, registry JobRegistry,
	comfyConfig *config.ComfyConfig, clientID string) JobTracker {
	return &jobTracker{
		logger:          logger,
		workerPool:      workerPool,
		backend:         backend,
		watcher:         watcher,
		archiver:        archiver,
		registry:        registry,
		clientID:        clientID,
		pollInterval:    comfyConfig.PollInterval,
		requestTimeout:  comfyConfig.RequestTimeout,
		jobTimeout:      comfyConfig.JobTimeout,
		maxPollFailures: comfyConfig.MaxPollFailures,
	}
}

func (t *jobTracker) Track(ctx context.Context, graph domain.ExecutionGraph, params domain.GenerationParams, templateName string) (domain.Job, error) {
	submitCtx, cancel := context.WithTimeout(ctx, t.requestTimeout)
	defer cancel()

	promptID, err := t.backend.SubmitPrompt(submitCtx, graph, t.clientID)
	if err != nil {
		t.logger.Error(err, "Failed to submit workflow to the render backend")
		return domain.Job{}, err
	}

	job := &domain.Job{
		ID:            uuid.NewString(),
		BackendHandle: promptID,
		State:         domain.JobQueued,
		TemplateName:  templateName,
		Params:        params,
		CreatedAt:     time.Now(),
	}
	t.registry.Insert(job)

	t.logger.InfoWithFields("Job submitted", map[string]interface{}{
		"job_id":    job.ID,
		"prompt_id": promptID,
	})

	jobID := job.ID
	deadline := job.CreatedAt.Add(t.jobTimeout)
	if err := t.workerPool.Submit(func() {
		t.monitor(jobID, promptID, deadline)
	}); err != nil {
		t.logger.Error(err, "Failed to submit monitor task to worker pool")
		t.fail(jobID, fmt.Sprintf("failed to start job monitor: %v", err))
	}

	snapshot, _ := t.registry.Get(jobID)
	return snapshot, nil
}

func (t *jobTracker) monitor(jobID, promptID string, deadline time.Time) {
	if t.watcher != nil {
		watchCtx, cancel := context.WithDeadline(context.Background(), deadline)
		err := t.watcher.WaitForCompletion(watchCtx, promptID)
		cancel()
		switch {
		case err == nil:
			// The stream reported completion; the history poll below
			// resolves outputs or the failure record.
			t.markRunning(jobID)
		case watchCtx.Err() != nil:
			t.resolveAfterDeadline(jobID, promptID)
			return
		default:
			t.logger.WarnWithFields("Event stream unavailable, falling back to polling", map[string]interface{}{
				"job_id": jobID,
				"reason": err.Error(),
			})
		}
	}

	t.pollUntilTerminal(jobID, promptID, deadline)
}

func (t *jobTracker) pollUntilTerminal(jobID, promptID string, deadline time.Time) {
	failures := 0
	for {
		if time.Now().After(deadline) {
			t.timeOut(jobID)
			return
		}

		time.Sleep(t.pollInterval)

		historyCtx, cancel := context.WithTimeout(context.Background(), t.requestTimeout)
		entry, err := t.backend.GetHistory(historyCtx, promptID)
		cancel()
		if err != nil {
			failures++
			if failures >= t.maxPollFailures {
				t.fail(jobID, fmt.Sprintf("lost contact with render backend: %v", err))
				return
			}
			t.logger.WarnWithFields("History poll failed, will retry", map[string]interface{}{
				"job_id":   jobID,
				"failures": failures,
			})
			continue
		}
		failures = 0

		if !entry.Found {
			continue
		}

		if entry.Completed || len(entry.Outputs) > 0 {
			t.complete(jobID, entry.Outputs)
			return
		}
		if entry.Failed {
			t.fail(jobID, strings.Join(entry.Messages, "; "))
			return
		}

		// Present in history without outputs or an error: execution has
		// started.
		t.markRunning(jobID)
	}
}

// resolveAfterDeadline runs one last history check before declaring a
// timeout; the completion event may simply have been missed on the stream.
func (t *jobTracker) resolveAfterDeadline(jobID, promptID string) {
	historyCtx, cancel := context.WithTimeout(context.Background(), t.requestTimeout)
	entry, err := t.backend.GetHistory(historyCtx, promptID)
	cancel()
	if err == nil && entry.Found {
		if entry.Completed || len(entry.Outputs) > 0 {
			t.complete(jobID, entry.Outputs)
			return
		}
		if entry.Failed {
			t.fail(jobID, strings.Join(entry.Messages, "; "))
			return
		}
	}
	t.timeOut(jobID)
}

func (t *jobTracker) markRunning(jobID string) {
	t.registry.Update(jobID, func(job *domain.Job) {
		if job.State == domain.JobQueued {
			job.State = domain.JobRunning
		}
	})
}

func (t *jobTracker) complete(jobID string, outputs map[string][]domain.OutputFile) {
	t.finish(jobID, func(job *domain.Job) {
		job.State = domain.JobCompleted
		job.Outputs = outputs
	})
	t.logger.InfoWithFields("Job completed", map[string]interface{}{"job_id": jobID})
}

func (t *jobTracker) fail(jobID, message string) {
	t.finish(jobID, func(job *domain.Job) {
		job.State = domain.JobFailed
		job.Error = message
	})
	t.logger.ErrorWithFields(errors.New(message), "Job failed", map[string]interface{}{
		"job_id": jobID,
	})
}

func (t *jobTracker) timeOut(jobID string) {
	message := fmt.Sprintf("job timed out after %s", t.jobTimeout)
	t.finish(jobID, func(job *domain.Job) {
		job.State = domain.JobTimedOut
		job.Error = message
	})
	t.logger.WarnWithFields("Job timed out", map[string]interface{}{"job_id": jobID})
}

func (t *jobTracker) finish(jobID string, mutate func(*domain.Job)) {
	t.registry.Update(jobID, func(job *domain.Job) {
		if job.State.Terminal() {
			return
		}
		mutate(job)
		now := time.Now()
		job.CompletedAt = &now
	})
	t.archive(jobID)
}

func (t *jobTracker) archive(jobID string) {
	if t.archiver == nil {
		return
	}
	snapshot, ok := t.registry.Get(jobID)
	if !ok {
		return
	}
	err := t.workerPool.Submit(func() {
		archiveCtx, cancel := context.WithTimeout(context.Background(), t.requestTimeout)
		defer cancel()
		if err := t.archiver.Archive(archiveCtx, snapshot); err != nil {
			t.logger.ErrorWithFields(err, "Failed to archive job record", map[string]interface{}{
				"job_id": jobID,
			})
		}
	})
	if err != nil {
		t.logger.Error(err, "Failed to submit archive task to worker pool")
	}
}
