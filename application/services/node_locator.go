package services

import (
	"fmt"
	"strings"

	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/domain"
)

// Semantic field names resolvable through the locator.
const (
	FieldPositivePrompt          = "positive_prompt"
	FieldNegativePrompt          = "negative_prompt"
	FieldImage                   = "image"
	FieldHeight                  = "height"
	FieldWidth                   = "width"
	FieldNumFrames               = "num_frames"
	FieldSteps                   = "steps"
	FieldCfgScale                = "cfg_scale"
	FieldCfgImg                  = "cfg_img"
	FieldSeed                    = "seed"
	FieldSeedMode                = "seed_mode"
	FieldLoraStrength            = "lora_strength"
	FieldFrameRateFirstPass      = "frame_rate@firstPass"
	FieldInterpolationMultiplier = "interpolation_multiplier"
	FieldFrameRateFinal          = "frame_rate@final"
	FieldModelName               = "model_name"
)

const (
	textPromptNodeType  = "Text Prompt (JPS)"
	loadImageNodeType   = "LoadImage"
	clipEncodeNodeType  = "WanVideoImageClipEncode"
	samplerNodeType     = "WanVideoSampler"
	loraSelectNodeType  = "WanVideoLoraSelect"
	videoCombineType    = "VHS_VideoCombine"
	interpolateNodeType = "RIFE VFI"
	modelLoaderNodeType = "WanVideoModelLoader"

	negativePromptTitle = "Negative Prompt"
	inputImageTitle     = "Input Image"
	selfForcingMarker   = "Self Forcing"
)

// negativePromptMarker recognizes the negative-prompt text node by content.
// Known fragility: the check runs over the node's whole widget list, so any
// unrelated widget value containing this substring makes the node pass as
// the negative-prompt node.
const negativePromptMarker = "色调艳丽"

// ArgTarget names one widget position on one node. Key addresses the value
// on nodes authored with the object widget form; it is set only for fields
// whose nodes are known to carry that form.
type ArgTarget struct {
	Node     *domain.Node
	ArgIndex int
	Key      string
}

// NodeLocator maps a semantic field name to the node widget positions that
// encode it inside a document. A field with no match anywhere in the
// document resolves to an empty target list, never an error; optional
// fields legitimately do not exist in every template variant.
type NodeLocator interface {
	Locate(doc *domain.GraphDocument, field string) []ArgTarget
}

// locatorRule claims nodes via its predicate and exposes one or more fields
// at fixed widget positions on the claimed nodes. keys carries the object
// form addresses for node types that use it.
type locatorRule struct {
	matches   func(*domain.Node) bool
	positions map[string]int
	keys      map[string]string
}

type nodeLocator struct {
	logger outbound.LoggerPort
	rules  []locatorRule
}

// NewNodeLocator builds the ordered rule table. Rules are evaluated per
// node in priority order and the first match claims the node, so a
// text-prompt node whose title is not the reserved negative title is always
// the positive prompt even when its content carries the negative marker.
func NewNodeLocator(logger outbound.LoggerPort, workflowConfig *config.WorkflowConfig) NodeLocator {
	firstPassID := domain.NodeID(workflowConfig.FirstPassCombineNodeID)
	finalID := domain.NodeID(workflowConfig.FinalCombineNodeID)

	rules := []locatorRule{
		{
			matches: func(n *domain.Node) bool {
				return n.Type == textPromptNodeType && n.Title != negativePromptTitle
			},
			positions: map[string]int{FieldPositivePrompt: 0},
		},
		{
			matches: func(n *domain.Node) bool {
				return n.Type == textPromptNodeType && strings.Contains(fmt.Sprint(n.WidgetsValues), negativePromptMarker)
			},
			positions: map[string]int{FieldNegativePrompt: 0},
		},
		{
			matches: func(n *domain.Node) bool {
				return n.Type == loadImageNodeType && n.Title == inputImageTitle
			},
			positions: map[string]int{FieldImage: 0},
		},
		{
			matches: func(n *domain.Node) bool { return n.Type == clipEncodeNodeType },
			positions: map[string]int{
				FieldHeight:    0,
				FieldWidth:     1,
				FieldNumFrames: 2,
			},
		},
		{
			matches: func(n *domain.Node) bool { return n.Type == samplerNodeType },
			positions: map[string]int{
				FieldSteps:    0,
				FieldCfgScale: 1,
				FieldCfgImg:   2,
				FieldSeed:     3,
				FieldSeedMode: 4,
			},
		},
		{
			matches: func(n *domain.Node) bool {
				return n.Type == loraSelectNodeType && strings.Contains(n.Title, selfForcingMarker)
			},
			positions: map[string]int{FieldLoraStrength: 1},
		},
		{
			matches: func(n *domain.Node) bool {
				return n.Type == videoCombineType && n.ID == firstPassID
			},
			positions: map[string]int{FieldFrameRateFirstPass: 0},
			keys:      map[string]string{FieldFrameRateFirstPass: "frame_rate"},
		},
		{
			matches:   func(n *domain.Node) bool { return n.Type == interpolateNodeType },
			positions: map[string]int{FieldInterpolationMultiplier: 1},
		},
		{
			matches: func(n *domain.Node) bool {
				return n.Type == videoCombineType && n.ID == finalID
			},
			positions: map[string]int{FieldFrameRateFinal: 0},
			keys:      map[string]string{FieldFrameRateFinal: "frame_rate"},
		},
		{
			matches:   func(n *domain.Node) bool { return n.Type == modelLoaderNodeType },
			positions: map[string]int{FieldModelName: 0},
		},
	}

	return &nodeLocator{
		logger: logger,
		rules:  rules,
	}
}

func (l *nodeLocator) Locate(doc *domain.GraphDocument, field string) []ArgTarget {
	var targets []ArgTarget
	for _, node := range doc.Nodes {
		rule, claimed := l.claimingRule(node)
		if !claimed {
			continue
		}
		argIndex, ok := rule.positions[field]
		if !ok {
			continue
		}
		targets = append(targets, ArgTarget{Node: node, ArgIndex: argIndex, Key: rule.keys[field]})
	}
	if targets == nil {
		l.logger.DebugWithFields("No node matched field", map[string]interface{}{
			"field": field,
		})
	}
	return targets
}

func (l *nodeLocator) claimingRule(node *domain.Node) (*locatorRule, bool) {
	for i := range l.rules {
		if l.rules[i].matches(node) {
			return &l.rules[i], true
		}
	}
	return nil, false
}
