package repository

import (
	"context"

	"github.com/clydeeshun94/vinogram-motherhen/models"
)

// JobRepository stores job records. Find and FindAll return copies; callers
// never observe in-place mutation. Update is the only way to change a stored
// record, which keeps each job's writes serialized inside the store.
type JobRepository interface {
	Save(ctx context.Context, job *models.Job) error
	Find(ctx context.Context, id string) (*models.Job, error)
	FindAll(ctx context.Context) ([]*models.Job, error)
	Update(ctx context.Context, id string, fn func(*models.Job)) error
	Delete(ctx context.Context, id string) error
}
