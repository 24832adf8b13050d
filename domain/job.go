package domain

import "time"

type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
	JobTimedOut  JobState = "timed_out"
)

// Terminal reports whether the state is final. Terminal states are sticky:
// once a job reaches one, no further transition is attempted.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobTimedOut
}

// OutputFile describes one file produced by the backend, retrievable
// through its view endpoint.
type OutputFile struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Kind      string `json:"kind"`
}

// Job is the local tracking record for one submitted execution.
// BackendHandle is the backend's own prompt identifier, obtained at
// submission time.
type Job struct {
	ID            string
	BackendHandle string
	State         JobState
	Outputs       map[string][]OutputFile
	Error         string
	TemplateName  string
	Params        GenerationParams
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// Snapshot returns a point-in-time copy safe to hand to callers while the
// tracker keeps mutating the original.
func (j *Job) Snapshot() Job {
	copied := *j
	if j.Outputs != nil {
		copied.Outputs = make(map[string][]OutputFile, len(j.Outputs))
		for nodeID, files := range j.Outputs {
			copied.Outputs[nodeID] = append([]OutputFile(nil), files...)
		}
	}
	if j.CompletedAt != nil {
		completedAt := *j.CompletedAt
		copied.CompletedAt = &completedAt
	}
	return copied
}
