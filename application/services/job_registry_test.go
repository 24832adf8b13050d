package services

import (
	"testing"

	"github.com/zullum/comfyui-wan/domain"
)

func TestRegistryGetReturnsSnapshot(t *testing.T) {
	registry := NewJobRegistry()
	registry.Insert(&domain.Job{
		ID:      "job-1",
		State:   domain.JobQueued,
		Outputs: map[string][]domain.OutputFile{"94": {{Filename: "out.mp4"}}},
	})

	snapshot, ok := registry.Get("job-1")
	if !ok {
		t.Fatal("Expected job to be found")
	}

	snapshot.State = domain.JobFailed
	snapshot.Outputs["94"][0].Filename = "mutated.mp4"

	stored, _ := registry.Get("job-1")
	if stored.State != domain.JobQueued {
		t.Fatal("Snapshot mutation leaked into the registry")
	}
	if stored.Outputs["94"][0].Filename != "out.mp4" {
		t.Fatal("Snapshot output mutation leaked into the registry")
	}
}

func TestRegistryUpdateMutatesStoredJob(t *testing.T) {
	registry := NewJobRegistry()
	registry.Insert(&domain.Job{ID: "job-1", State: domain.JobQueued})

	registry.Update("job-1", func(job *domain.Job) {
		job.State = domain.JobRunning
	})

	stored, _ := registry.Get("job-1")
	if stored.State != domain.JobRunning {
		t.Fatalf("Expected running, got %s", stored.State)
	}
}

func TestRegistryUnknownJob(t *testing.T) {
	registry := NewJobRegistry()

	if _, ok := registry.Get("missing"); ok {
		t.Fatal("Expected missing job to report not found")
	}

	// Update on an unknown id is a silent no-op.
	registry.Update("missing", func(job *domain.Job) {
		t.Fatal("Mutator must not run for unknown jobs")
	})
}

func TestRegistryList(t *testing.T) {
	registry := NewJobRegistry()
	registry.Insert(&domain.Job{ID: "job-1"})
	registry.Insert(&domain.Job{ID: "job-2"})

	if jobs := registry.List(); len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
}
