package services

import (
	"sync"

	"github.com/zullum/comfyui-wan/domain"
)

// JobRegistry is the single owned id-to-job map shared by the tracker and
// the request handlers. A job id is assigned once at submission and only
// that job's tracker mutates the record afterwards, so the registry only
// needs to guard concurrent insert-by-new-id and read-by-id.
type JobRegistry interface {
	Insert(job *domain.Job)
	Get(id string) (domain.Job, bool)
	List() []domain.Job
	Update(id string, mutate func(*domain.Job))
}

type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

func NewJobRegistry() JobRegistry {
	return &jobRegistry{
		jobs: make(map[string]*domain.Job),
	}
}

func (r *jobRegistry) Insert(job *domain.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

func (r *jobRegistry) Get(id string) (domain.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, false
	}
	return job.Snapshot(), true
}

func (r *jobRegistry) List() []domain.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := make([]domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job.Snapshot())
	}
	return jobs
}

func (r *jobRegistry) Update(id string, mutate func(*domain.Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		mutate(job)
	}
}
