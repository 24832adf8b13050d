package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zullum/comfyui-wan/application/ports/inbound"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/application/services"
	"github.com/zullum/comfyui-wan/domain"
	"github.com/zullum/comfyui-wan/infrastructure/gin_interface/dto"
)

type GenerationController interface {
	GenerateVideo(c *gin.Context)
	GetStatus(c *gin.Context)
	ListJobs(c *gin.Context)
	DownloadResult(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type generationController struct {
	logger         outbound.LoggerPort
	videoGenerator inbound.VideoGeneratorPort
}

func NewGenerationController(logger outbound.LoggerPort, videoGenerator inbound.VideoGeneratorPort) GenerationController {
	return &generationController{
		logger:         logger,
		videoGenerator: videoGenerator,
	}
}

func (g *generationController) GenerateVideo(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation",
			Message: err.Error(),
		})
		return
	}

	job, err := g.videoGenerator.StartGeneration(c.Request.Context(), req.ToParams(), req.Workflow)
	if err != nil {
		g.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateResponse{
		JobID:    job.ID,
		PromptID: job.BackendHandle,
		Status:   string(job.State),
		Message:  "Video generation started",
	})
}

func (g *generationController) GetStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	job, ok := g.videoGenerator.GetJob(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "job not found",
		})
		return
	}

	c.JSON(http.StatusOK, dto.NewJobStatusResponse(job))
}

func (g *generationController) ListJobs(c *gin.Context) {
	jobs := g.videoGenerator.ListJobs()

	statuses := make([]dto.JobStatusResponse, 0, len(jobs))
	for _, job := range jobs {
		statuses = append(statuses, dto.NewJobStatusResponse(job))
	}

	c.JSON(http.StatusOK, dto.JobListResponse{
		Jobs:  statuses,
		Total: len(statuses),
	})
}

func (g *generationController) DownloadResult(c *gin.Context) {
	jobID := c.Param("job_id")

	result, err := g.videoGenerator.FetchResult(c.Request.Context(), jobID)
	if err != nil {
		g.respondError(c, err)
		return
	}

	response := dto.DownloadResponse{
		JobID:       result.JobID,
		Filename:    result.Filename,
		VideoURL:    result.URL,
		VideoBase64: result.VideoBase64,
	}
	if job, ok := g.videoGenerator.GetJob(jobID); ok {
		response.Metadata = dto.NewVideoMetadata(job.Params)
	}

	c.JSON(http.StatusOK, response)
}

func (g *generationController) RegisterRoutes(router *gin.Engine) {
	router.POST("/generate", g.GenerateVideo)
	router.GET("/status/:job_id", g.GetStatus)
	router.GET("/jobs", g.ListJobs)
	router.GET("/download/:job_id", g.DownloadResult)
}

func (g *generationController) respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var rejectedErr *domain.SubmissionRejectedError
	var templateErr *domain.MalformedTemplateError
	var linkErr *domain.UnresolvedLinkError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation", Message: validationErr.Message})
	case errors.As(err, &rejectedErr):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "submission_rejected", Message: rejectedErr.Error()})
	case errors.As(err, &templateErr), errors.As(err, &linkErr):
		g.logger.Error(err, "Workflow template is structurally broken")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "malformed_template", Message: err.Error()})
	case errors.Is(err, services.ErrJobNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, services.ErrJobNotCompleted):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "not_completed", Message: err.Error()})
	case errors.Is(err, services.ErrNoOutputs):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no_outputs", Message: err.Error()})
	default:
		g.logger.Error(err, "Request failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal", Message: err.Error()})
	}
}
