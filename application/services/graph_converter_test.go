package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zullum/comfyui-wan/domain"
	"github.com/zullum/comfyui-wan/infrastructure/adapters"
)

func TestConvertSkipsPassThroughNodes(t *testing.T) {
	converter := NewGraphConverter(adapters.NewZerologWrapper())
	doc := loadTwoStageTemplate(t)

	graph, err := converter.Convert(doc)
	if err != nil {
		t.Fatal("Failed to convert:", err)
	}

	if len(graph) != 10 {
		t.Fatalf("Expected 10 execution nodes, got %d", len(graph))
	}
	if _, ok := graph["99"]; ok {
		t.Fatal("Expected note node to be dropped from the execution graph")
	}
}

func TestConvertNamesKnownWidgetPositions(t *testing.T) {
	converter := NewGraphConverter(adapters.NewZerologWrapper())
	doc := loadTwoStageTemplate(t)

	graph, err := converter.Convert(doc)
	if err != nil {
		t.Fatal("Failed to convert:", err)
	}

	sampler := graph["40"]
	if sampler.ClassType != "WanVideoSampler" {
		t.Fatalf("Expected class_type WanVideoSampler, got %s", sampler.ClassType)
	}
	if sampler.Inputs["steps"] != float64(5) {
		t.Fatalf("Expected steps from widget position 0, got %v", sampler.Inputs["steps"])
	}
	if sampler.Inputs["seed_control"] != "randomize" {
		t.Fatalf("Expected seed_control from widget position 4, got %v", sampler.Inputs["seed_control"])
	}

	encode := graph["30"]
	if encode.Inputs["width"] != float64(1280) || encode.Inputs["height"] != float64(720) {
		t.Fatalf("Expected positional width/height naming, got %v", encode.Inputs)
	}
	if encode.Inputs["num_frames"] != float64(81) {
		t.Fatalf("Expected num_frames from widget position 2, got %v", encode.Inputs["num_frames"])
	}
}

func TestConvertResolvesLinksToNodeRefs(t *testing.T) {
	converter := NewGraphConverter(adapters.NewZerologWrapper())
	doc := loadTwoStageTemplate(t)

	graph, err := converter.Convert(doc)
	if err != nil {
		t.Fatal("Failed to convert:", err)
	}

	sampler := graph["40"]
	ref, ok := sampler.Inputs["image_embeds"].([]interface{})
	if !ok {
		t.Fatalf("Expected a node reference for image_embeds, got %v", sampler.Inputs["image_embeds"])
	}
	if !reflect.DeepEqual(ref, []interface{}{"30", 0}) {
		t.Fatalf("Expected reference [30 0], got %v", ref)
	}
}

// A named input carried by a link must shadow the widget literal of the same
// name.
func TestConvertLinkWinsOverWidgetLiteral(t *testing.T) {
	converter := NewGraphConverter(adapters.NewZerologWrapper())
	link := int64(1)
	doc := &domain.GraphDocument{Nodes: []*domain.Node{
		{
			ID:      "1",
			Type:    "Text Prompt (JPS)",
			Outputs: []domain.OutputSlot{{Name: "STRING", Links: []int64{1}}},
		},
		{
			ID:            "2",
			Type:          "WanVideoTextEncode",
			WidgetsValues: widgetList("inline positive", "inline negative"),
			Inputs:        []domain.InputSlot{{Name: "positive_prompt", Link: &link}},
		},
	}}

	graph, err := converter.Convert(doc)
	if err != nil {
		t.Fatal("Failed to convert:", err)
	}

	encode := graph["2"]
	if !reflect.DeepEqual(encode.Inputs["positive_prompt"], []interface{}{"1", 0}) {
		t.Fatalf("Expected link binding to win, got %v", encode.Inputs["positive_prompt"])
	}
	if encode.Inputs["negative_prompt"] != "inline negative" {
		t.Fatalf("Expected unlinked widget literal preserved, got %v", encode.Inputs["negative_prompt"])
	}
}

func TestConvertUnknownTypeGetsNumberedInputs(t *testing.T) {
	converter := NewGraphConverter(adapters.NewZerologWrapper())
	doc := loadTwoStageTemplate(t)

	graph, err := converter.Convert(doc)
	if err != nil {
		t.Fatal("Failed to convert:", err)
	}

	combine := graph["80"]
	if combine.Inputs["input_0"] != float64(16) {
		t.Fatalf("Expected numbered fallback input, got %v", combine.Inputs)
	}
}

// Object-shaped widget values already carry input names, so they map straight
// into the execution inputs without the positional name table.
func TestConvertObjectWidgetsBecomeNamedInputs(t *testing.T) {
	converter := NewGraphConverter(adapters.NewZerologWrapper())
	doc := &domain.GraphDocument{Nodes: []*domain.Node{
		{
			ID:   "94",
			Type: "VHS_VideoCombine",
			WidgetsValues: domain.WidgetValues{Fields: map[string]interface{}{
				"frame_rate": float64(60),
				"pingpong":   false,
			}},
		},
	}}

	graph, err := converter.Convert(doc)
	if err != nil {
		t.Fatal("Failed to convert:", err)
	}

	combine := graph["94"]
	if combine.Inputs["frame_rate"] != float64(60) {
		t.Fatalf("Expected frame_rate carried by name, got %v", combine.Inputs)
	}
	if combine.Inputs["pingpong"] != false {
		t.Fatalf("Expected pingpong carried by name, got %v", combine.Inputs)
	}
	if _, ok := combine.Inputs["input_0"]; ok {
		t.Fatal("Expected no numbered fallback for object widgets")
	}
}

func TestConvertKnownTypeDropsExcessWidgets(t *testing.T) {
	converter := NewGraphConverter(adapters.NewZerologWrapper())
	doc := &domain.GraphDocument{Nodes: []*domain.Node{
		{
			ID:            "1",
			Type:          "LoadImage",
			WidgetsValues: widgetList("input.png", "image", "stray"),
		},
	}}

	graph, err := converter.Convert(doc)
	if err != nil {
		t.Fatal("Failed to convert:", err)
	}

	load := graph["1"]
	if len(load.Inputs) != 2 {
		t.Fatalf("Expected widgets beyond the name table to be dropped, got %v", load.Inputs)
	}
	if _, ok := load.Inputs["input_2"]; ok {
		t.Fatal("Expected no numbered fallback for a known type")
	}
}

func TestConvertAbortsOnUnresolvedLink(t *testing.T) {
	converter := NewGraphConverter(adapters.NewZerologWrapper())
	danglingLink := int64(77)
	doc := &domain.GraphDocument{Nodes: []*domain.Node{
		{
			ID:     "2",
			Type:   "WanVideoSampler",
			Inputs: []domain.InputSlot{{Name: "image_embeds", Link: &danglingLink}},
		},
	}}

	graph, err := converter.Convert(doc)
	if graph != nil {
		t.Fatal("Expected no partial graph on unresolved links")
	}

	var linkErr *domain.UnresolvedLinkError
	if !errors.As(err, &linkErr) {
		t.Fatal("Expected UnresolvedLinkError, got:", err)
	}
	if linkErr.NodeID != "2" || linkErr.InputName != "image_embeds" || linkErr.LinkID != 77 {
		t.Fatalf("Unexpected error detail: %+v", linkErr)
	}
}
