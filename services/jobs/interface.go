package jobs

import (
	"context"

	"github.com/clydeeshun94/vinogram-motherhen/models"
)

type Service interface {
	// CreateDownload validates the request, registers a pending job and
	// starts the download in the background.
	CreateDownload(ctx context.Context, req DownloadRequest) (*models.Job, error)

	// Compress runs a compression synchronously and returns the finished
	// (or failed) job record.
	Compress(ctx context.Context, req CompressRequest) (*models.Job, error)

	// Get retrieves a job by ID for status polling.
	Get(ctx context.Context, id string) (*models.Job, error)

	// List returns every known job, newest first.
	List(ctx context.Context) ([]*models.Job, error)

	// Delete removes the job record and any artifacts it produced.
	Delete(ctx context.Context, id string) error

	// Artifact returns the output file path of a completed job.
	Artifact(ctx context.Context, id string) (string, *models.Job, error)
}

type DownloadRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

type CompressRequest struct {
	InputPath    string // staged upload on local disk
	InputName    string // original filename, for the response
	Level        string // low | medium | high
	TargetSizeMB int    // 0 means no size target
}
