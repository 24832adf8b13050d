package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zullum/comfyui-wan/application/ports/inbound"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/domain"
	"github.com/zullum/comfyui-wan/infrastructure/gin_interface/dto"
)

var knownModels = []string{
	"wan2.1_i2v_720p_14B_bf16.safetensors",
	"wan2.1_i2v_480p_14B_bf16.safetensors",
	"wan2.1_t2v_14B_bf16.safetensors",
	"wan2.1_t2v_1.3B_bf16.safetensors",
}

type WorkflowController interface {
	Root(c *gin.Context)
	Health(c *gin.Context)
	ListWorkflows(c *gin.Context)
	GetWorkflowInfo(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type workflowController struct {
	logger         outbound.LoggerPort
	templates      outbound.TemplateStorePort
	backend        outbound.RenderBackendPort
	videoGenerator inbound.VideoGeneratorPort
}

func NewWorkflowController(logger outbound.LoggerPort, templates outbound.TemplateStorePort,
	backend outbound.RenderBackendPort, videoGenerator inbound.VideoGeneratorPort) WorkflowController {
	return &workflowController{
		logger:         logger,
		templates:      templates,
		backend:        backend,
		videoGenerator: videoGenerator,
	}
}

func (w *workflowController) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "ComfyUI Wan Video Generation API",
		"endpoints": gin.H{
			"POST /generate":          "Generate video from image",
			"GET /status/:job_id":     "Get job status",
			"GET /download/:job_id":   "Download result video",
			"GET /jobs":               "List all jobs",
			"GET /workflows":          "List available workflows",
			"GET /workflows/:name":    "Inspect workflow nodes",
			"GET /health":             "Health check",
		},
		"available_workflows": w.templates.List(),
		"available_models":    knownModels,
	})
}

func (w *workflowController) Health(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comfyStatus := "up"
	if err := w.backend.Ping(pingCtx); err != nil {
		comfyStatus = "unreachable"
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:          "healthy",
		ComfyUIStatus:   comfyStatus,
		WorkflowsLoaded: len(w.templates.List()),
		JobsCount:       len(w.videoGenerator.ListJobs()),
	})
}

func (w *workflowController) ListWorkflows(c *gin.Context) {
	names := w.templates.List()
	c.JSON(http.StatusOK, dto.WorkflowListResponse{
		Workflows: names,
		Count:     len(names),
	})
}

func (w *workflowController) GetWorkflowInfo(c *gin.Context) {
	name := c.Param("name")

	doc, err := w.templates.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
		return
	}

	nodes := make(map[string]dto.WorkflowNodeInfo)
	for _, node := range doc.Nodes {
		if domain.IsPassThroughType(node.Type) {
			continue
		}
		info := dto.WorkflowNodeInfo{
			Type:          node.Type,
			Title:         node.Title,
			WidgetsValues: node.WidgetsValues,
			Inputs:        make([]string, 0, len(node.Inputs)),
			Outputs:       make([]string, 0, len(node.Outputs)),
		}
		for _, input := range node.Inputs {
			info.Inputs = append(info.Inputs, input.Name)
		}
		for _, output := range node.Outputs {
			info.Outputs = append(info.Outputs, output.Name)
		}
		nodes[string(node.ID)] = info
	}

	c.JSON(http.StatusOK, dto.WorkflowInfoResponse{
		WorkflowName: name,
		TotalNodes:   len(nodes),
		Nodes:        nodes,
	})
}

func (w *workflowController) RegisterRoutes(router *gin.Engine) {
	router.GET("/", w.Root)
	router.GET("/health", w.Health)
	router.GET("/workflows", w.ListWorkflows)
	router.GET("/workflows/:name", w.GetWorkflowInfo)
}
