package domain

import "fmt"

// ValidationError reports a malformed or missing request field. It is
// surfaced to the caller before any backend interaction happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MalformedTemplateError reports a structural defect in a workflow template
// (missing node id or type, duplicate id, dangling link). A broken template
// cannot self-heal, so this is never retried.
type MalformedTemplateError struct {
	Template string
	Reason   string
}

func (e *MalformedTemplateError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("malformed template: %s", e.Reason)
	}
	return fmt.Sprintf("malformed template %q: %s", e.Template, e.Reason)
}

// UnresolvedLinkError reports an input slot bound to a link id that no node
// in the document produces. It aborts the whole conversion.
type UnresolvedLinkError struct {
	NodeID    NodeID
	InputName string
	LinkID    int64
}

func (e *UnresolvedLinkError) Error() string {
	return fmt.Sprintf("node %s input %q references link %d with no producer", e.NodeID, e.InputName, e.LinkID)
}

// SubmissionRejectedError reports that the render backend refused an
// execution payload. The payload is presumed deterministically malformed,
// so the submission is never retried.
type SubmissionRejectedError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("backend rejected submission with status %d: %s", e.StatusCode, e.Message)
}
