package config

import "os"

// WorkflowConfig carries the template locations plus the node ids that tell
// the two VHS_VideoCombine stages apart. The id-based disambiguation is the
// only signal those nodes offer; re-authored templates must update these
// values in one place.
type WorkflowConfig struct {
	TemplatesDir           string
	DefaultTemplate        string
	FirstPassCombineNodeID string
	FinalCombineNodeID     string
}

func GetWorkflowConfig() (*WorkflowConfig, error) {
	templatesDir := os.Getenv("WORKFLOWS_DIR")
	if templatesDir == "" {
		templatesDir = "workflows"
	}

	defaultTemplate := os.Getenv("DEFAULT_WORKFLOW")
	if defaultTemplate == "" {
		defaultTemplate = "Wrapper-SelfForcing-ImageToVideo-60FPS"
	}

	firstPassID := os.Getenv("FIRST_PASS_COMBINE_NODE_ID")
	if firstPassID == "" {
		firstPassID = "80"
	}

	finalID := os.Getenv("FINAL_COMBINE_NODE_ID")
	if finalID == "" {
		finalID = "94"
	}

	return &WorkflowConfig{
		TemplatesDir:           templatesDir,
		DefaultTemplate:        defaultTemplate,
		FirstPassCombineNodeID: firstPassID,
		FinalCombineNodeID:     finalID,
	}, nil
}
