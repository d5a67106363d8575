package models

// JobResponse is the wire shape for job records. Download jobs expose a
// downloadUrl once completed; compression jobs expose the size metrics the
// compressor endpoint returns synchronously.
type JobResponse struct {
	ID       string    `json:"id"`
	Kind     JobKind   `json:"kind"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`

	URL     string `json:"url,omitempty"`
	Format  string `json:"format,omitempty"`
	Quality string `json:"quality,omitempty"`

	Title       string  `json:"title,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	FileSize    int64   `json:"fileSize,omitempty"`
	FileExt     string  `json:"fileExtension,omitempty"`
	DownloadURL string  `json:"downloadUrl,omitempty"`

	FileID           string  `json:"file_id,omitempty"`
	OriginalName     string  `json:"original_filename,omitempty"`
	OriginalSizeMB   float64 `json:"original_size_mb,omitempty"`
	CompressedSizeMB float64 `json:"compressed_size_mb,omitempty"`
	CompressionRatio float64 `json:"compression_ratio,omitempty"`

	Error     string `json:"errorMessage,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// NewJobResponse builds the API view of a job record.
func NewJobResponse(j *Job) *JobResponse {
	resp := &JobResponse{
		ID:        j.ID,
		Kind:      j.Kind,
		Status:    j.Status,
		Progress:  j.Progress,
		URL:       j.URL,
		Format:    j.Format,
		Quality:   j.Quality,
		Title:     j.Title,
		Duration:  j.Duration,
		FileSize:  j.FileSize,
		FileExt:   j.FileExt,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	switch j.Kind {
	case KindDownload:
		if j.IsCompleted() {
			resp.DownloadURL = "/download/" + j.ID
		}
	case KindCompress:
		resp.FileID = j.ID
		resp.OriginalName = j.InputName
		resp.OriginalSizeMB = j.OriginalSizeMB
		resp.CompressedSizeMB = j.CompressedSizeMB
		resp.CompressionRatio = j.CompressionRatio
		if j.IsCompleted() {
			resp.DownloadURL = "/api/compressor/download/" + j.ID
		}
	}

	return resp
}
