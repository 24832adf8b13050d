package domain

// ExecutionNode is one entry of the backend-facing execution format: the
// node's operation type plus a named-input map where cross-references are
// explicit [producerNodeID, outputSlotIndex] pairs.
type ExecutionNode struct {
	ClassType string                 `json:"class_type"`
	Inputs    map[string]interface{} `json:"inputs"`
}

// ExecutionGraph is the flattened, backend-facing representation of a
// workflow, keyed by node id.
type ExecutionGraph map[string]ExecutionNode

// NodeRef builds the two-element producer reference used for link-sourced
// inputs.
func NodeRef(producerID NodeID, outputSlot int) []interface{} {
	return []interface{}{string(producerID), outputSlot}
}
