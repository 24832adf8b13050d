package domain

import (
	"encoding/json"
	"fmt"
)

// NodeID is the identifier of a node inside a workflow template. Templates
// authored in the graph editor use integer ids while the backend's execution
// format keys nodes by string, so both JSON forms are accepted.
type NodeID string

func (id *NodeID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = NodeID(n.String())
	return nil
}

// passThroughTypes are annotation and rerouting nodes with no execution
// semantics; they are omitted from the backend-facing format.
var passThroughTypes = map[string]bool{
	"Note":    true,
	"Reroute": true,
}

// IsPassThroughType reports whether nodes of the given type are structural
// no-ops.
func IsPassThroughType(nodeType string) bool {
	return passThroughTypes[nodeType]
}

// WidgetValues holds a node's configuration values. Most node types carry
// the positional list form; a few (the video muxer nodes among them) are
// authored with an object form addressed by key instead. Exactly one of the
// two fields is set, and serialization round-trips whichever form the
// template used.
type WidgetValues struct {
	Values []interface{}
	Fields map[string]interface{}
}

func (w *WidgetValues) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		return json.Unmarshal(data, &w.Fields)
	}
	return json.Unmarshal(data, &w.Values)
}

func (w WidgetValues) MarshalJSON() ([]byte, error) {
	if w.Fields != nil {
		return json.Marshal(w.Fields)
	}
	return json.Marshal(w.Values)
}

// Len is the positional length; zero for the object form.
func (w WidgetValues) Len() int {
	return len(w.Values)
}

func (w WidgetValues) Clone() WidgetValues {
	cloned := WidgetValues{Values: cloneValues(w.Values)}
	if w.Fields != nil {
		cloned.Fields = make(map[string]interface{}, len(w.Fields))
		for key, value := range w.Fields {
			cloned.Fields[key] = cloneValue(value)
		}
	}
	return cloned
}

// InputSlot is a named input declaration. A nil Link means the input is fed
// by a literal widget value rather than by another node.
type InputSlot struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Link *int64 `json:"link"`
}

// OutputSlot is a named output declaration exposing the link ids consumed
// by other nodes' input slots.
type OutputSlot struct {
	Name  string  `json:"name"`
	Type  string  `json:"type,omitempty"`
	Links []int64 `json:"links"`
}

// Node is one operation in a workflow graph. The list form of WidgetsValues
// is positionally significant per Type; there is no shared schema across
// types.
type Node struct {
	ID            NodeID       `json:"id"`
	Type          string       `json:"type"`
	Title         string       `json:"title,omitempty"`
	WidgetsValues WidgetValues `json:"widgets_values"`
	Inputs        []InputSlot  `json:"inputs,omitempty"`
	Outputs       []OutputSlot `json:"outputs,omitempty"`
}

// GraphDocument is an in-memory workflow graph parsed from a template file.
// Parsed templates are shared read-only baselines; callers must Clone before
// mutating.
type GraphDocument struct {
	Nodes []*Node `json:"nodes"`
}

// LoadGraphDocument parses a serialized workflow template and validates its
// structure: every node needs an id and a type, ids must be unique and every
// bound input link must have a producing output somewhere in the document.
func LoadGraphDocument(data []byte) (*GraphDocument, error) {
	var doc GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedTemplateError{Reason: err.Error()}
	}

	seen := make(map[NodeID]bool, len(doc.Nodes))
	produced := make(map[int64]bool)
	for _, node := range doc.Nodes {
		if node.ID == "" {
			return nil, &MalformedTemplateError{Reason: "node without id"}
		}
		if node.Type == "" {
			return nil, &MalformedTemplateError{Reason: fmt.Sprintf("node %s has no type", node.ID)}
		}
		if seen[node.ID] {
			return nil, &MalformedTemplateError{Reason: fmt.Sprintf("duplicate node id %s", node.ID)}
		}
		seen[node.ID] = true
		for _, output := range node.Outputs {
			for _, linkID := range output.Links {
				produced[linkID] = true
			}
		}
	}

	for _, node := range doc.Nodes {
		for _, input := range node.Inputs {
			if input.Link != nil && !produced[*input.Link] {
				return nil, &MalformedTemplateError{
					Reason: fmt.Sprintf("node %s input %q references dangling link %d", node.ID, input.Name, *input.Link),
				}
			}
		}
	}

	return &doc, nil
}

// Clone returns a deep, independently mutable copy of the document.
func (d *GraphDocument) Clone() *GraphDocument {
	clone := &GraphDocument{Nodes: make([]*Node, 0, len(d.Nodes))}
	for _, node := range d.Nodes {
		copied := &Node{
			ID:            node.ID,
			Type:          node.Type,
			Title:         node.Title,
			WidgetsValues: node.WidgetsValues.Clone(),
			Inputs:        make([]InputSlot, len(node.Inputs)),
			Outputs:       make([]OutputSlot, len(node.Outputs)),
		}
		for i, input := range node.Inputs {
			copied.Inputs[i] = input
			if input.Link != nil {
				link := *input.Link
				copied.Inputs[i].Link = &link
			}
		}
		for i, output := range node.Outputs {
			copied.Outputs[i] = output
			copied.Outputs[i].Links = append([]int64(nil), output.Links...)
		}
		clone.Nodes = append(clone.Nodes, copied)
	}
	return clone
}

// FindNodes returns every node satisfying the predicate, in document order.
func (d *GraphDocument) FindNodes(predicate func(*Node) bool) []*Node {
	var matched []*Node
	for _, node := range d.Nodes {
		if predicate(node) {
			matched = append(matched, node)
		}
	}
	return matched
}

// FindProducer resolves a link id to the node and output slot index that
// produce it.
func (d *GraphDocument) FindProducer(linkID int64) (*Node, int, bool) {
	for _, node := range d.Nodes {
		for slotIndex, output := range node.Outputs {
			for _, id := range output.Links {
				if id == linkID {
					return node, slotIndex, true
				}
			}
		}
	}
	return nil, 0, false
}

func cloneValues(values []interface{}) []interface{} {
	if values == nil {
		return nil
	}
	cloned := make([]interface{}, len(values))
	for i, value := range values {
		cloned[i] = cloneValue(value)
	}
	return cloned
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []interface{}:
		return cloneValues(v)
	case map[string]interface{}:
		copied := make(map[string]interface{}, len(v))
		for key, nested := range v {
			copied[key] = cloneValue(nested)
		}
		return copied
	default:
		return v
	}
}
