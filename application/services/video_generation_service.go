package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/zullum/comfyui-wan/application/ports/inbound"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/domain"
)

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrJobNotCompleted = errors.New("job not completed")
	ErrNoOutputs       = errors.New("no video outputs found")
)

type videoGenerationService struct {
	logger          outbound.LoggerPort
	templates       outbound.TemplateStorePort
	imageSource     outbound.ImageSourcePort
	patcher         ParameterPatcher
	converter       GraphConverter
	tracker         JobTracker
	backend         outbound.RenderBackendPort
	publisher       outbound.VideoPublisherPort
	registry        JobRegistry
	defaultTemplate string
}

// NewVideoGenerationService builds the request-facing pipeline: resolve the
// image, clone and patch the template, convert it and hand the result to
// the tracker. publisher may be nil, in which case results are relayed as
// inline base64 payloads.
func NewVideoGenerationService(logger outbound.LoggerPort, templates outbound.TemplateStorePort,
	imageSource outbound.ImageSourcePort, patcher ParameterPatcher, converter GraphConverter,
	tracker JobTracker, backend outbound.RenderBackendPort, publisher outbound.VideoPublisherPort,
	registry JobRegistry, defaultTemplate string) inbound.VideoGeneratorPort {
	return &videoGenerationService{
		logger:          logger,
		templates:       templates,
		imageSource:     imageSource,
		patcher:         patcher,
		converter:       converter,
		tracker:         tracker,
		backend:         backend,
		publisher:       publisher,
		registry:        registry,
		defaultTemplate: defaultTemplate,
	}
}

func (s *videoGenerationService) StartGeneration(ctx context.Context, params domain.GenerationParams, templateName string) (domain.Job, error) {
	if err := params.Validate(); err != nil {
		return domain.Job{}, err
	}

	if templateName == "" {
		templateName = s.defaultTemplate
	}

	filename, err := s.imageSource.Resolve(ctx, params.Image, uuid.NewString())
	if err != nil {
		return domain.Job{}, err
	}
	params.ImageFilename = filename

	doc, err := s.templates.Get(templateName)
	if err != nil {
		return domain.Job{}, err
	}

	patched := s.patcher.Apply(doc, params)

	graph, err := s.converter.Convert(patched)
	if err != nil {
		return domain.Job{}, err
	}

	return s.tracker.Track(ctx, graph, params, templateName)
}

func (s *videoGenerationService) GetJob(id string) (domain.Job, bool) {
	return s.registry.Get(id)
}

func (s *videoGenerationService) ListJobs() []domain.Job {
	return s.registry.List()
}

func (s *videoGenerationService) FetchResult(ctx context.Context, jobID string) (*inbound.ResultPayload, error) {
	job, ok := s.registry.Get(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.State != domain.JobCompleted {
		return nil, fmt.Errorf("%w: state is %s", ErrJobNotCompleted, job.State)
	}

	file, ok := firstOutput(job.Outputs)
	if !ok {
		return nil, ErrNoOutputs
	}

	data, err := s.backend.FetchOutput(ctx, file)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to fetch output from backend", map[string]interface{}{
			"job_id":   jobID,
			"filename": file.Filename,
		})
		return nil, err
	}

	if s.publisher != nil {
		published, err := s.publisher.Publish(ctx, outbound.PublishVideoRequest{
			JobID:    jobID,
			Filename: file.Filename,
			Data:     data,
		})
		if err != nil {
			return nil, err
		}
		return &inbound.ResultPayload{
			JobID:    jobID,
			Filename: file.Filename,
			URL:      published.URL,
		}, nil
	}

	return &inbound.ResultPayload{
		JobID:       jobID,
		Filename:    file.Filename,
		VideoBase64: "data:video/mp4;base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// firstOutput picks the first file in node-id order so repeated downloads
// of the same job return the same artifact.
func firstOutput(outputs map[string][]domain.OutputFile) (domain.OutputFile, bool) {
	nodeIDs := make([]string, 0, len(outputs))
	for nodeID := range outputs {
		nodeIDs = append(nodeIDs, nodeID)
	}
	sort.Strings(nodeIDs)
	for _, nodeID := range nodeIDs {
		if files := outputs[nodeID]; len(files) > 0 {
			return files[0], true
		}
	}
	return domain.OutputFile{}, false
}
