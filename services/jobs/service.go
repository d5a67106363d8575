// Package jobs runs the download and compression state machines. Each job
// has exactly one worker writing to it; all writes go through the
// repository's Update so a deleted record turns late writes into no-ops.
package jobs

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clydeeshun94/vinogram-motherhen/artifacts"
	"github.com/clydeeshun94/vinogram-motherhen/config"
	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/models"
	"github.com/clydeeshun94/vinogram-motherhen/options"
	"github.com/clydeeshun94/vinogram-motherhen/repository"
	"github.com/clydeeshun94/vinogram-motherhen/tools"
)

type service struct {
	repo       repository.JobRepository
	downloader tools.Downloader
	prober     tools.Prober
	encoder    tools.Encoder
	cfg        *config.Config
	logger     *logrus.Logger
}

func NewService(
	repo repository.JobRepository,
	downloader tools.Downloader,
	prober tools.Prober,
	encoder tools.Encoder,
	cfg *config.Config,
) Service {
	return &service{
		repo:       repo,
		downloader: downloader,
		prober:     prober,
		encoder:    encoder,
		cfg:        cfg,
		logger:     logrus.StandardLogger(),
	}
}

func (s *service) CreateDownload(ctx context.Context, req DownloadRequest) (*models.Job, error) {
	const op = "JobService.CreateDownload"

	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.InvalidInput(op, nil, "url is required")
	}

	// Resolve before inserting anything so bad options fail the request
	// instead of producing a doomed job.
	plan, err := options.Resolve(options.Request{
		Kind:    models.KindDownload,
		URL:     req.URL,
		Format:  req.Format,
		Quality: req.Quality,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &models.Job{
		ID:        uuid.New().String(),
		Kind:      models.KindDownload,
		Status:    models.StatusPending,
		URL:       req.URL,
		Format:    req.Format,
		Quality:   req.Quality,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, errors.Internal(op, err, "failed to create job")
	}

	s.logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"url":    req.URL,
		"format": req.Format,
	}).Info("download job created")

	go s.runDownload(job.ID, req.URL, plan)

	return job, nil
}

// runDownload is the job's single writer. It owns every status transition
// after pending; handler reads only see store snapshots.
func (s *service) runDownload(id, url string, plan options.Plan) {
	logger := s.logger.WithField("job_id", id)
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Tools.ProcessTimeout)
	defer cancel()

	if err := s.transition(id, models.StatusDownloading); err != nil {
		logger.WithError(err).Warn("job vanished before download started")
		return
	}

	template := filepath.Join(s.cfg.DownloadDir, id+".%(ext)s")
	result, err := s.downloader.Download(ctx, url, template, plan, s.newProgressSink(id))
	if err != nil {
		logger.WithError(err).Error("download failed")
		artifacts.Remove(s.cfg.DownloadDir, id)
		s.finalizeFailed(id, err)
		return
	}

	path, err := artifacts.Locate(s.cfg.DownloadDir, id)
	if err != nil {
		logger.WithError(err).Error("download finished but produced no artifact")
		s.finalizeFailed(id, errors.Internal("JobService.runDownload", err, "download produced no output file"))
		return
	}

	var size int64
	if stat, statErr := os.Stat(path); statErr == nil {
		size = stat.Size()
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	err = s.repo.Update(ctx, id, func(j *models.Job) {
		if j.Status.IsTerminal() {
			return
		}
		j.Status = models.StatusCompleted
		j.Progress = 100
		j.Title = result.Title
		j.Duration = result.Duration
		j.FileSize = size
		j.FileExt = ext
	})
	if errors.IsNotFound(err) {
		// Deleted while downloading; the file has no owner anymore.
		logger.Info("job deleted mid-download, discarding artifact")
		artifacts.Remove(s.cfg.DownloadDir, id)
		return
	}

	logger.WithFields(logrus.Fields{
		"title": result.Title,
		"size":  size,
	}).Info("download completed")
}

func (s *service) Compress(ctx context.Context, req CompressRequest) (*models.Job, error) {
	const op = "JobService.Compress"

	plan, err := options.Resolve(options.Request{
		Kind:         models.KindCompress,
		Level:        req.Level,
		TargetSizeMB: req.TargetSizeMB,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &models.Job{
		ID:           uuid.New().String(),
		Kind:         models.KindCompress,
		Status:       models.StatusPending,
		InputName:    req.InputName,
		Quality:      req.Level,
		TargetSizeMB: req.TargetSizeMB,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, errors.Internal(op, err, "failed to create job")
	}

	logger := s.logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"level":  req.Level,
	})

	info, err := s.prober.Probe(ctx, req.InputPath)
	if err != nil {
		logger.WithError(err).Error("probe failed")
		s.finalizeFailed(job.ID, err)
		return nil, err
	}

	if req.TargetSizeMB > 0 {
		kbps, err := options.PlanBitrate(info.Duration, req.TargetSizeMB)
		if err != nil {
			s.finalizeFailed(job.ID, err)
			return nil, err
		}
		plan.TargetVideoKbps = kbps
	}

	// Synchronous path: the poller never sees an intermediate status, the
	// record jumps straight from pending to its terminal state.
	outputPath := filepath.Join(s.cfg.CompressedDir, job.ID+".mp4")
	if err := s.encoder.Encode(ctx, req.InputPath, outputPath, plan); err != nil {
		logger.WithError(err).Error("encode failed")
		s.finalizeFailed(job.ID, err)
		return nil, err
	}

	stat, err := os.Stat(outputPath)
	if err != nil {
		s.finalizeFailed(job.ID, err)
		return nil, errors.Internal(op, err, "encode produced no output file")
	}

	originalMB := roundMB(info.Size)
	compressedMB := roundMB(stat.Size())
	ratio := 0.0
	if info.Size > 0 {
		ratio = round2((1 - float64(stat.Size())/float64(info.Size)) * 100)
	}

	err = s.repo.Update(ctx, job.ID, func(j *models.Job) {
		if j.Status.IsTerminal() {
			return
		}
		j.Status = models.StatusCompleted
		j.Progress = 100
		j.Duration = info.Duration
		j.OriginalSizeMB = originalMB
		j.CompressedSizeMB = compressedMB
		j.CompressionRatio = ratio
	})
	if errors.IsNotFound(err) {
		artifacts.Remove(s.cfg.CompressedDir, job.ID)
		return nil, errors.NotFound(op, err, "job was deleted")
	}

	logger.WithFields(logrus.Fields{
		"original_mb":   originalMB,
		"compressed_mb": compressedMB,
		"ratio":         ratio,
	}).Info("compression completed")

	return s.repo.Find(ctx, job.ID)
}

func (s *service) Get(ctx context.Context, id string) (*models.Job, error) {
	const op = "JobService.Get"
	if id == "" {
		return nil, errors.InvalidInput(op, nil, "id is required")
	}
	return s.repo.Find(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*models.Job, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) Delete(ctx context.Context, id string) error {
	job, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	artifacts.Remove(s.artifactDir(job.Kind), id)

	s.logger.WithField("job_id", id).Info("job deleted")
	return nil
}

func (s *service) Artifact(ctx context.Context, id string) (string, *models.Job, error) {
	const op = "JobService.Artifact"

	job, err := s.repo.Find(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if !job.IsCompleted() {
		return "", nil, errors.InvalidInput(op, nil,
			fmt.Sprintf("job is %s, not completed", job.Status))
	}

	path, err := artifacts.Locate(s.artifactDir(job.Kind), id)
	if err != nil {
		return "", nil, err
	}
	return path, job, nil
}

func (s *service) artifactDir(kind models.JobKind) string {
	if kind == models.KindCompress {
		return s.cfg.CompressedDir
	}
	return s.cfg.DownloadDir
}

// transition moves a non-terminal job to the given status.
func (s *service) transition(id string, status models.JobStatus) error {
	return s.repo.Update(context.Background(), id, func(j *models.Job) {
		if j.Status.IsTerminal() {
			return
		}
		j.Status = status
	})
}

// finalizeFailed records the failure unless the job is already terminal or
// deleted. The stored message is the client-safe one, not the wrapped chain.
func (s *service) finalizeFailed(id string, cause error) {
	msg := clientMessage(cause)
	err := s.repo.Update(context.Background(), id, func(j *models.Job) {
		if j.Status.IsTerminal() {
			return
		}
		j.Status = models.StatusFailed
		j.Error = msg
	})
	if err != nil && !errors.IsNotFound(err) {
		s.logger.WithError(err).WithField("job_id", id).Error("failed to record job failure")
	}
}

func clientMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	msg := err.Error()
	if len(msg) > 400 {
		msg = msg[:400]
	}
	return msg
}

// progressSink maps byte-level transfer events onto the job's integer
// percentage. Progress never moves backwards even if the tool restarts a
// fragment, and only the finalizer may write 100.
type progressSink struct {
	svc  *service
	id   string
	mu   sync.Mutex
	last int
}

func (s *service) newProgressSink(id string) *progressSink {
	return &progressSink{svc: s, id: id}
}

func (p *progressSink) Progress(downloaded, total int64) {
	if total <= 0 {
		return
	}
	pct := int(float64(downloaded) / float64(total) * 100)
	if pct > 99 {
		pct = 99
	}

	p.mu.Lock()
	if pct <= p.last {
		p.mu.Unlock()
		return
	}
	p.last = pct
	p.mu.Unlock()

	p.svc.repo.Update(context.Background(), p.id, func(j *models.Job) {
		if j.Status != models.StatusDownloading {
			return
		}
		if pct > j.Progress {
			j.Progress = pct
		}
	})
}

func (p *progressSink) PostProcessing() {
	p.svc.transition(p.id, models.StatusProcessing)
}

func roundMB(bytes int64) float64 {
	return round2(float64(bytes) / 1024 / 1024)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
