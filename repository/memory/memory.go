// Package memory holds job records in process memory. Records do not
// survive a restart; orphaned files on disk are re-adopted by id lookup.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/models"
	"github.com/clydeeshun94/vinogram-motherhen/repository"
)

type Repository struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewRepository() *Repository {
	return &Repository{
		jobs: make(map[string]*models.Job),
	}
}

var _ repository.JobRepository = (*Repository)(nil)

func (r *Repository) Save(ctx context.Context, job *models.Job) error {
	const op = "memory.Save"
	if job.ID == "" {
		return errors.InvalidInput(op, nil, "job id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *Repository) Find(ctx context.Context, id string) (*models.Job, error) {
	const op = "memory.Find"

	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.NotFound(op, nil, "job not found")
	}
	return job.Clone(), nil
}

// FindAll returns every job, newest first.
func (r *Repository) FindAll(ctx context.Context) ([]*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*models.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// Update applies fn to the stored record under the write lock. Returns
// NotFound when the job has been deleted, which lets a late worker treat
// its finalization as a no-op.
func (r *Repository) Update(ctx context.Context, id string, fn func(*models.Job)) error {
	const op = "memory.Update"

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return errors.NotFound(op, nil, "job not found")
	}
	fn(job)
	job.UpdatedAt = time.Now()
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	const op = "memory.Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return errors.NotFound(op, nil, "job not found")
	}
	delete(r.jobs, id)
	return nil
}
