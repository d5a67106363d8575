package models

import (
	"time"
)

type JobKind string

const (
	KindDownload JobKind = "download"
	KindCompress JobKind = "compress"
)

type JobStatus string

const (
	StatusPending     JobStatus = "pending"
	StatusDownloading JobStatus = "downloading"
	StatusProcessing  JobStatus = "processing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// IsTerminal reports whether no further status transition is allowed.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one tracked download or compression. Request parameters are set at
// creation and never change; result fields are filled exactly once by the
// job's own worker when it finalizes.
type Job struct {
	ID       string    `json:"id"`
	Kind     JobKind   `json:"kind"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`

	// Request parameters.
	URL          string `json:"url,omitempty"`
	InputName    string `json:"inputName,omitempty"`
	Format       string `json:"format,omitempty"`
	Quality      string `json:"quality,omitempty"`
	TargetSizeMB int    `json:"targetSizeMb,omitempty"`

	// Download results.
	Title    string  `json:"title,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	FileSize int64   `json:"fileSize,omitempty"`
	FileExt  string  `json:"fileExtension,omitempty"`

	// Compression results.
	OriginalSizeMB   float64 `json:"original_size_mb,omitempty"`
	CompressedSizeMB float64 `json:"compressed_size_mb,omitempty"`
	CompressionRatio float64 `json:"compression_ratio,omitempty"`

	Error string `json:"errorMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (j *Job) IsPending() bool   { return j.Status == StatusPending }
func (j *Job) IsCompleted() bool { return j.Status == StatusCompleted }
func (j *Job) IsFailed() bool    { return j.Status == StatusFailed }

// Clone returns a copy so store snapshots never alias the writer's record.
func (j *Job) Clone() *Job {
	c := *j
	return &c
}
