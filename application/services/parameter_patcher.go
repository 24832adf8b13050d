package services

import (
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/domain"
)

const fixedSeedMode = "fixed"

// widgetSeeds are the baseline widget lists installed when a template node
// carries fewer arguments than the patcher needs to address. Lists are only
// ever extended, never truncated.
var widgetSeeds = map[string][]interface{}{
	clipEncodeNodeType:  {1280, 720, 81},
	samplerNodeType:     {5, 1.0, 8.0, nil, "randomize"},
	loraSelectNodeType:  {"", 0.7},
	modelLoaderNodeType: {"wan2.1_i2v_720p_14B_bf16.safetensors", "bf16", "fp8_e5m2"},
}

// ParameterPatcher overwrites the widget values that encode a generation
// request inside a cloned document. Non-targeted nodes and all link wiring
// stay untouched.
type ParameterPatcher interface {
	Apply(doc *domain.GraphDocument, params domain.GenerationParams) *domain.GraphDocument
}

type parameterPatcher struct {
	logger  outbound.LoggerPort
	locator NodeLocator
}

func NewParameterPatcher(logger outbound.LoggerPort, locator NodeLocator) ParameterPatcher {
	return &parameterPatcher{
		logger:  logger,
		locator: locator,
	}
}

// Apply mutates and returns the given document. It expects params to be
// validated already; dimension and frame-count rules are enforced upstream.
func (p *parameterPatcher) Apply(doc *domain.GraphDocument, params domain.GenerationParams) *domain.GraphDocument {
	p.set(doc, FieldPositivePrompt, params.PositivePrompt)
	p.set(doc, FieldNegativePrompt, params.NegativePrompt)

	for _, target := range p.locator.Locate(doc, FieldImage) {
		setWidget(target, params.ImageFilename)
		setWidget(ArgTarget{Node: target.Node, ArgIndex: target.ArgIndex + 1}, "image")
	}

	p.set(doc, FieldHeight, params.Height)
	p.set(doc, FieldWidth, params.Width)
	p.set(doc, FieldNumFrames, params.NumFrames)

	p.set(doc, FieldSteps, params.Steps)
	p.set(doc, FieldCfgScale, params.CfgScale)
	p.set(doc, FieldCfgImg, params.CfgImg)

	// An explicit seed pins the sampler's seed mode too; without one the
	// template's own mode (commonly "randomize") stays as authored.
	if params.Seed != nil {
		p.set(doc, FieldSeed, *params.Seed)
		p.set(doc, FieldSeedMode, fixedSeedMode)
	}

	p.set(doc, FieldLoraStrength, params.LoraStrength)
	p.set(doc, FieldFrameRateFirstPass, params.FrameRate)
	p.set(doc, FieldInterpolationMultiplier, params.InterpolationMultiplier)
	p.set(doc, FieldFrameRateFinal, params.FinalFrameRate)

	if params.ModelName != "" {
		p.set(doc, FieldModelName, params.ModelName)
	}

	return doc
}

func (p *parameterPatcher) set(doc *domain.GraphDocument, field string, value interface{}) {
	targets := p.locator.Locate(doc, field)
	for _, target := range targets {
		setWidget(target, value)
	}
}

// setWidget writes through either widget form. An object-form node is only
// writable when the locator supplied a key for the field; a keyless target
// on such a node is left untouched rather than guessed at.
func setWidget(target ArgTarget, value interface{}) {
	node := target.Node
	if node.WidgetsValues.Fields != nil {
		if target.Key != "" {
			node.WidgetsValues.Fields[target.Key] = value
		}
		return
	}
	if node.WidgetsValues.Len() <= target.ArgIndex {
		node.WidgetsValues.Values = extendWidgets(node, target.ArgIndex)
	}
	node.WidgetsValues.Values[target.ArgIndex] = value
}

func extendWidgets(node *domain.Node, index int) []interface{} {
	widgets := node.WidgetsValues.Values
	seed := widgetSeeds[node.Type]
	for len(widgets) <= index {
		if len(widgets) < len(seed) {
			widgets = append(widgets, seed[len(widgets)])
		} else {
			widgets = append(widgets, nil)
		}
	}
	return widgets
}
