package services

import (
	"fmt"

	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/domain"
)

// widgetInputNames maps a node type's positional widget values onto the
// named inputs the backend expects. Types absent from this table get
// synthetic input_N names so nothing is silently dropped.
var widgetInputNames = map[string][]string{
	loadImageNodeType:   {"image", "upload"},
	textPromptNodeType:  {"text"},
	modelLoaderNodeType: {"model_name", "precision", "dtype", "device", "attention_mode"},
	samplerNodeType: {
		"steps", "cfg", "cfg_img", "seed", "seed_control", "denoise",
		"sampler_name", "sampler_idx", "scheduler_idx", "custom_sigmas", "scheduler",
	},
	"WanVideoTextEncode": {"positive_prompt", "negative_prompt", "enable_text_encoder_offload"},
	clipEncodeNodeType: {
		"width", "height", "num_frames", "enable_tiling", "tile_overlap_factor",
		"tile_frames_factor", "tile_batch_factor", "enable_vae_offload",
	},
}

// GraphConverter flattens a node/link document into the backend's execution
// format.
type GraphConverter interface {
	Convert(doc *domain.GraphDocument) (domain.ExecutionGraph, error)
}

type graphConverter struct {
	logger outbound.LoggerPort
}

func NewGraphConverter(logger outbound.LoggerPort) GraphConverter {
	return &graphConverter{logger: logger}
}

func (g *graphConverter) Convert(doc *domain.GraphDocument) (domain.ExecutionGraph, error) {
	graph := make(domain.ExecutionGraph, len(doc.Nodes))

	for _, node := range doc.Nodes {
		if domain.IsPassThroughType(node.Type) {
			continue
		}

		inputs := widgetInputs(node)

		// Link-sourced bindings always win over widget-derived literals
		// for the same input name.
		for _, input := range node.Inputs {
			if input.Link == nil {
				continue
			}
			producer, slotIndex, found := doc.FindProducer(*input.Link)
			if !found {
				err := &domain.UnresolvedLinkError{
					NodeID:    node.ID,
					InputName: input.Name,
					LinkID:    *input.Link,
				}
				g.logger.ErrorWithFields(err, "Workflow link graph is corrupted", map[string]interface{}{
					"node_id": string(node.ID),
					"input":   input.Name,
				})
				return nil, err
			}
			inputs[input.Name] = domain.NodeRef(producer.ID, slotIndex)
		}

		graph[string(node.ID)] = domain.ExecutionNode{
			ClassType: node.Type,
			Inputs:    inputs,
		}
	}

	return graph, nil
}

func widgetInputs(node *domain.Node) map[string]interface{} {
	// Object-form widget values are already named; hand them over as-is.
	if node.WidgetsValues.Fields != nil {
		inputs := make(map[string]interface{}, len(node.WidgetsValues.Fields))
		for name, value := range node.WidgetsValues.Fields {
			inputs[name] = value
		}
		return inputs
	}

	inputs := make(map[string]interface{}, node.WidgetsValues.Len())
	names, known := widgetInputNames[node.Type]
	for i, value := range node.WidgetsValues.Values {
		if known {
			if i < len(names) {
				inputs[names[i]] = value
			}
			continue
		}
		inputs[fmt.Sprintf("input_%d", i)] = value
	}
	return inputs
}
