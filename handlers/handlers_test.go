package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clydeeshun94/vinogram-motherhen/config"
	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/models"
	"github.com/clydeeshun94/vinogram-motherhen/services/jobs"
)

type fakeService struct {
	downloadReq jobs.DownloadRequest
	compressReq jobs.CompressRequest

	job          *models.Job
	list         []*models.Job
	artifactPath string
	err          error
}

func (f *fakeService) CreateDownload(ctx context.Context, req jobs.DownloadRequest) (*models.Job, error) {
	f.downloadReq = req
	return f.job, f.err
}

func (f *fakeService) Compress(ctx context.Context, req jobs.CompressRequest) (*models.Job, error) {
	f.compressReq = req
	return f.job, f.err
}

func (f *fakeService) Get(ctx context.Context, id string) (*models.Job, error) {
	return f.job, f.err
}

func (f *fakeService) List(ctx context.Context) ([]*models.Job, error) {
	return f.list, f.err
}

func (f *fakeService) Delete(ctx context.Context, id string) error {
	return f.err
}

func (f *fakeService) Artifact(ctx context.Context, id string) (string, *models.Job, error) {
	return f.artifactPath, f.job, f.err
}

func testJob(kind models.JobKind, status models.JobStatus) *models.Job {
	return &models.Job{
		ID:        "job-1",
		Kind:      kind,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func newTestApp(svc jobs.Service, cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	downloads := NewDownloadHandler(svc)
	compressor := NewCompressorHandler(svc, cfg)
	health := NewHealthHandler(cfg)

	app.Post("/api/downloads", downloads.Create)
	app.Get("/api/downloads", downloads.List)
	app.Get("/api/downloads/:id", downloads.Get)
	app.Delete("/api/downloads/:id", downloads.Delete)
	app.Get("/download/:id", downloads.ServeFile)
	app.Post("/api/compressor/compress", compressor.Compress)
	app.Get("/api/compressor/download/:id", compressor.ServeFile)
	app.Get("/health", health.Check)

	return app
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		UploadTmpDir: t.TempDir(),
		Version:      "test",
	}
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestCreateDownload(t *testing.T) {
	svc := &fakeService{job: testJob(models.KindDownload, models.StatusPending)}
	app := newTestApp(svc, testConfig(t))

	body := strings.NewReader(`{"url": "https://example.com/v", "format": "webm", "quality": "high"}`)
	req := httptest.NewRequest("POST", "/api/downloads", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusAccepted {
		t.Errorf("expected 202, got %d", resp.StatusCode)
	}
	if svc.downloadReq.Format != "webm" || svc.downloadReq.Quality != "high" {
		t.Errorf("request not forwarded: %+v", svc.downloadReq)
	}

	payload := decodeBody(t, resp.Body)
	if payload["success"] != true {
		t.Errorf("expected success response, got %v", payload)
	}
}

func TestCreateDownloadDefaults(t *testing.T) {
	svc := &fakeService{job: testJob(models.KindDownload, models.StatusPending)}
	app := newTestApp(svc, testConfig(t))

	req := httptest.NewRequest("POST", "/api/downloads", strings.NewReader(`{"url": "https://example.com/v"}`))
	req.Header.Set("Content-Type", "application/json")

	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}
	if svc.downloadReq.Format != "mp4" {
		t.Errorf("expected default format mp4, got %q", svc.downloadReq.Format)
	}
	if svc.downloadReq.Quality != "medium" {
		t.Errorf("expected default quality medium, got %q", svc.downloadReq.Quality)
	}
}

func TestCreateDownloadMissingURL(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc, testConfig(t))

	req := httptest.NewRequest("POST", "/api/downloads", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	payload := decodeBody(t, resp.Body)
	if payload["success"] != false {
		t.Errorf("error responses carry success=false, got %v", payload)
	}
}

func TestGetDownloadNotFound(t *testing.T) {
	svc := &fakeService{err: errors.NotFound("test", nil, "job not found")}
	app := newTestApp(svc, testConfig(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/downloads/nope", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListDownloads(t *testing.T) {
	svc := &fakeService{list: []*models.Job{
		testJob(models.KindDownload, models.StatusCompleted),
		testJob(models.KindCompress, models.StatusFailed),
	}}
	app := newTestApp(svc, testConfig(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/downloads", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	payload := decodeBody(t, resp.Body)
	data, ok := payload["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Errorf("expected 2 jobs, got %v", payload["data"])
	}
}

func TestDeleteJob(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc, testConfig(t))

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/downloads/job-1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestDeleteJobNotFound(t *testing.T) {
	svc := &fakeService{err: errors.NotFound("test", nil, "job not found")}
	app := newTestApp(svc, testConfig(t))

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/downloads/nope", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestServeDownloadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job-1.mp4")
	if err := os.WriteFile(path, []byte("video data"), 0644); err != nil {
		t.Fatal(err)
	}

	job := testJob(models.KindDownload, models.StatusCompleted)
	job.Title = "My Video: Part 1"
	job.FileExt = "mp4"
	svc := &fakeService{job: job, artifactPath: path}
	app := newTestApp(svc, testConfig(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/download/job-1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	disposition := resp.Header.Get(fiber.HeaderContentDisposition)
	if !strings.Contains(disposition, "My Video_ Part 1.mp4") {
		t.Errorf("unexpected disposition %q", disposition)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "video data" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestServeDownloadFileNotCompleted(t *testing.T) {
	svc := &fakeService{err: errors.InvalidInput("test", nil, "job is downloading, not completed")}
	app := newTestApp(svc, testConfig(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/download/job-1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func multipartUpload(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if filename != "" {
		part, err := writer.CreateFormFile("video", filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("fake video content"))
	}
	for key, value := range fields {
		writer.WriteField(key, value)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestCompress(t *testing.T) {
	job := testJob(models.KindCompress, models.StatusCompleted)
	job.InputName = "holiday.mp4"
	job.OriginalSizeMB = 10
	job.CompressedSizeMB = 4
	job.CompressionRatio = 60
	svc := &fakeService{job: job}
	cfg := testConfig(t)
	app := newTestApp(svc, cfg)

	body, contentType := multipartUpload(t, map[string]string{
		"compression_level": "high",
		"target_size":       "8",
	}, "holiday.mp4")

	req := httptest.NewRequest("POST", "/api/compressor/compress", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, int(10*time.Second/time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if svc.compressReq.Level != "high" || svc.compressReq.TargetSizeMB != 8 {
		t.Errorf("request not forwarded: %+v", svc.compressReq)
	}
	if svc.compressReq.InputName != "holiday.mp4" {
		t.Errorf("original filename lost: %q", svc.compressReq.InputName)
	}

	// The staging directory must be cleaned up after the request.
	entries, err := os.ReadDir(cfg.UploadTmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging dir should be empty, found %d entries", len(entries))
	}
}

func TestCompressMissingFile(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc, testConfig(t))

	body, contentType := multipartUpload(t, map[string]string{"compression_level": "low"}, "")
	req := httptest.NewRequest("POST", "/api/compressor/compress", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCompressBadTargetSize(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc, testConfig(t))

	body, contentType := multipartUpload(t, map[string]string{"target_size": "ten"}, "in.mp4")
	req := httptest.NewRequest("POST", "/api/compressor/compress", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&fakeService{}, testConfig(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	payload := decodeBody(t, resp.Body)
	if payload["status"] != "ok" {
		t.Errorf("expected ok status, got %v", payload["status"])
	}
	if payload["version"] != "test" {
		t.Errorf("expected version test, got %v", payload["version"])
	}
}
