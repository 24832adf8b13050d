package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/domain"
)

type workflowTemplateStore struct {
	logger    outbound.LoggerPort
	templates map[string]*domain.GraphDocument
}

// NewWorkflowTemplateStore parses every *.json template under the
// configured directory once at startup. Malformed templates are logged
// loudly and skipped; they indicate an authoring bug, not a transient
// condition. Get hands out clones so the cached baselines stay pristine.
func NewWorkflowTemplateStore(logger outbound.LoggerPort, workflowConfig *config.WorkflowConfig) (outbound.TemplateStorePort, error) {
	entries, err := filepath.Glob(filepath.Join(workflowConfig.TemplatesDir, "*.json"))
	if err != nil {
		return nil, err
	}

	store := &workflowTemplateStore{
		logger:    logger,
		templates: make(map[string]*domain.GraphDocument),
	}

	for _, path := range entries {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.ErrorWithFields(err, "Failed to read workflow template", map[string]interface{}{
				"path": path,
			})
			continue
		}

		name := strings.TrimSuffix(filepath.Base(path), ".json")
		doc, err := domain.LoadGraphDocument(data)
		if err != nil {
			logger.ErrorWithFields(err, "Skipping malformed workflow template", map[string]interface{}{
				"path": path,
			})
			continue
		}

		store.templates[name] = doc
		logger.InfoWithFields("Loaded workflow template", map[string]interface{}{
			"name":  name,
			"nodes": len(doc.Nodes),
		})
	}

	return store, nil
}

func (s *workflowTemplateStore) Get(name string) (*domain.GraphDocument, error) {
	doc, ok := s.templates[name]
	if !ok {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("workflow %q not found", name)}
	}
	return doc.Clone(), nil
}

func (s *workflowTemplateStore) List() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
